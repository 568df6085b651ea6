package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/jhoicas/farmacia-pos/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateParse_RoundTrip(t *testing.T) {
	id := jwt.Identity{UserID: "u-1", TerminalID: "caja1", Role: jwt.RoleSupervisor}
	token, err := jwt.Generate(secret, id, "farmacia-pos", 60)
	require.NoError(t, err)

	got, err := jwt.Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_Rechazos(t *testing.T) {
	token, err := jwt.Generate(secret, jwt.Identity{UserID: "u-1", TerminalID: "caja1", Role: jwt.RoleCajero}, "farmacia-pos", 60)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secret", token)
	assert.Error(t, err, "firma incorrecta")

	expired, err := jwt.Generate(secret, jwt.Identity{UserID: "u-1", TerminalID: "caja1"}, "farmacia-pos", -5)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, expired)
	assert.Error(t, err, "token expirado")

	noTerminal := gojwt.NewWithClaims(gojwt.SigningMethodHS256, jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u-1",
	})
	signed, err := noTerminal.SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = jwt.Parse(secret, signed)
	assert.Error(t, err, "token sin terminal")
}

func TestGenerate_Validaciones(t *testing.T) {
	_, err := jwt.Generate("", jwt.Identity{UserID: "u", TerminalID: "t"}, "", 60)
	assert.Error(t, err)
	_, err = jwt.Generate(secret, jwt.Identity{UserID: "u"}, "", 60)
	assert.Error(t, err)
}
