// Package taxid normaliza los documentos con que se identifica un cliente en caja:
// cédula (solo dígitos) o NIT con dígito de verificación ("900.123.456-8").
package taxid

import (
	"errors"
	"fmt"
	"strings"
)

const (
	minDigits = 5
	maxDigits = 15
)

// pesos DIAN del módulo 11, aplicados de derecha a izquierda sobre la base del NIT.
var nitWeights = [maxDigits]int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

// ErrMalformed documento con caracteres, longitud o dígito de verificación inválidos.
var ErrMalformed = errors.New("taxid: documento mal formado")

// Normalize quita puntos y espacios y valida el documento.
// Con guion el último bloque es el dígito de verificación del NIT y debe coincidir;
// el resultado queda como "NNNNNNNNN-D". Sin guion se devuelve solo la base numérica.
func Normalize(s string) (string, error) {
	s = strings.NewReplacer(".", "", " ", "", ",", "").Replace(strings.TrimSpace(s))
	base, dv, hasDV := strings.Cut(s, "-")
	if err := checkDigits(base); err != nil {
		return "", err
	}
	if !hasDV {
		return base, nil
	}
	if len(dv) != 1 || dv[0] < '0' || dv[0] > '9' {
		return "", fmt.Errorf("%w: dígito de verificación %q", ErrMalformed, dv)
	}
	expected, err := VerificationDigit(base)
	if err != nil {
		return "", err
	}
	if dv[0] != expected {
		return "", fmt.Errorf("%w: dígito de verificación inválido, esperado %c, recibido %c", ErrMalformed, expected, dv[0])
	}
	return base + "-" + dv, nil
}

// VerificationDigit calcula el dígito de verificación DIAN para la base del NIT.
func VerificationDigit(base string) (byte, error) {
	if err := checkDigits(base); err != nil {
		return 0, err
	}
	var sum int
	for i := 0; i < len(base); i++ {
		sum += int(base[len(base)-1-i]-'0') * nitWeights[i]
	}
	remainder := sum % 11
	if remainder == 0 || remainder == 1 {
		return byte('0' + remainder), nil
	}
	return byte('0' + (11 - remainder)), nil
}

func checkDigits(s string) error {
	if len(s) < minDigits || len(s) > maxDigits {
		return fmt.Errorf("%w: se esperaban entre %d y %d dígitos, se recibieron %d", ErrMalformed, minDigits, maxDigits, len(s))
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: carácter %q", ErrMalformed, r)
		}
	}
	return nil
}
