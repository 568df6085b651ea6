package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por el punto de venta.
const (
	RoleCajero     = "cajero"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// Claims incluye los claims estándar JWT más la identidad del cajero y su terminal.
// El rol viaja en el token para que el middleware RBAC no consulte la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	TerminalID string `json:"terminal_id"`
	Role       string `json:"role"` // "cajero" | "supervisor" | "admin"
}

// Identity datos de la sesión autenticada.
type Identity struct {
	UserID     string
	TerminalID string
	Role       string
}

// Generate genera un token firmado para un usuario operando un terminal.
func Generate(secret string, id Identity, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	if id.UserID == "" || id.TerminalID == "" {
		return "", fmt.Errorf("jwt: user_id y terminal_id son obligatorios")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:     id.UserID,
		TerminalID: id.TerminalID,
		Role:       id.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad.
// Retorna error si el token es inválido, expirado, tiene firma incorrecta o no trae terminal.
func Parse(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("claims inválidos")
	}
	if claims.TerminalID == "" {
		return Identity{}, errors.New("token sin terminal_id")
	}
	return Identity{UserID: claims.UserID, TerminalID: claims.TerminalID, Role: claims.Role}, nil
}
