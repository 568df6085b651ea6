// Package catalogfile lee el catálogo de productos exportado por el sistema de inventario
// (CSV separado por ';', ISO-8859-1 o UTF-8).
//
// Columnas: sku;nombre;precio;existencias;activo
package catalogfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/farmacia-pos/internal/application/pos"
)

const peekSize = 4096

// Product fila del catálogo.
type Product struct {
	SKU    string
	Name   string
	Price  decimal.Decimal
	Stock  int
	Active bool
}

// Info datos que la caja necesita para vender el producto.
func (p Product) Info() pos.ProductInfo {
	return pos.ProductInfo{Ref: p.SKU, Name: p.Name, UnitPrice: p.Price, Available: p.Active && p.Stock > 0}
}

// LoadFile abre y parsea el archivo.
func LoadFile(path string) ([]Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse lee el CSV. Si el contenido no es UTF-8 válido se decodifica como ISO-8859-1.
// La primera fila se omite si es el encabezado.
func Parse(r io.Reader) ([]Product, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(peekSize)
	var src io.Reader = br
	if !looksUTF8(head, len(head) == peekSize) {
		src = transform.NewReader(br, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var out []Product
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		p, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func parseRecord(rec []string) (Product, error) {
	if len(rec) < 3 {
		return Product{}, fmt.Errorf("se esperaban al menos 3 columnas, hay %d", len(rec))
	}
	p := Product{
		SKU:    strings.TrimSpace(rec[0]),
		Name:   strings.TrimSpace(rec[1]),
		Stock:  1,
		Active: true,
	}
	if p.SKU == "" || p.Name == "" {
		return Product{}, errors.New("sku y nombre son obligatorios")
	}
	price, err := decimal.NewFromString(normalizeNumber(rec[2]))
	if err != nil || price.IsNegative() {
		return Product{}, fmt.Errorf("precio inválido %q", rec[2])
	}
	p.Price = price
	if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
		if p.Stock, err = strconv.Atoi(strings.TrimSpace(rec[3])); err != nil {
			return Product{}, fmt.Errorf("existencias inválidas %q", rec[3])
		}
	}
	if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
		switch strings.ToLower(strings.TrimSpace(rec[4])) {
		case "1", "si", "sí", "s", "true":
			p.Active = true
		case "0", "no", "n", "false":
			p.Active = false
		default:
			return Product{}, fmt.Errorf("activo inválido %q", rec[4])
		}
	}
	return p, nil
}

// normalizeNumber acepta "2.500", "2500,50" y "2500.50".
func normalizeNumber(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	}
	if strings.Count(s, ".") > 1 || (strings.Count(s, ".") == 1 && len(s)-strings.Index(s, ".") == 4) {
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// looksUTF8 valida el prefijo leído; si Peek cortó un rune al final, se ignoran esos bytes.
func looksUTF8(head []byte, truncated bool) bool {
	for i := 0; truncated && i < utf8.UTFMax-1 && len(head) > 0 && !utf8.Valid(head); i++ {
		if head[len(head)-1] < utf8.RuneSelf {
			break
		}
		head = head[:len(head)-1]
	}
	return utf8.Valid(head)
}
