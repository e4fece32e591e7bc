package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	tok, err := Generate(secret, "u-1", RoleOperator, "warehouse-ledger-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, role, err := Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, RoleOperator, role)
}

func TestParse_Errores(t *testing.T) {
	expired, err := Generate(secret, "u-1", RoleAdmin, "x", -1)
	require.NoError(t, err)
	_, _, err = Parse(secret, expired)
	assert.Error(t, err, "token expirado debe retornar error")

	tok, err := Generate(secret, "u-1", RoleAdmin, "x", 60)
	require.NoError(t, err)
	_, _, err = Parse("otro-secret", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")

	_, _, err = Parse("", tok)
	assert.Error(t, err)

	_, err = Generate("", "u-1", RoleAdmin, "x", 60)
	assert.Error(t, err)
}
