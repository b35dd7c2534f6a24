package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	require.NoError(t, SetJWTSecret("test-secret"))

	token, err := GenerateAccessToken("owner@example.com", "manager", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, "manager", claims.Role)
}

func TestValidateToken_Rejects(t *testing.T) {
	require.NoError(t, SetJWTSecret("first-secret"))
	token, err := GenerateAccessToken("a@example.com", "", time.Minute)
	require.NoError(t, err)

	require.NoError(t, SetJWTSecret("second-secret"))
	_, err = ValidateToken(token)
	assert.Error(t, err)

	defaulted, err := GenerateAccessToken("a@example.com", "", 0)
	require.NoError(t, err)
	_, err = ValidateToken(defaulted)
	assert.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email: "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte("second-secret"))
	require.NoError(t, err)
	_, err = ValidateToken(signed)
	assert.Error(t, err)

	noEmail, err := GenerateAccessToken("", "", time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(noEmail)
	assert.Error(t, err)

	_, err = ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestSetJWTSecret_Empty(t *testing.T) {
	assert.ErrorIs(t, SetJWTSecret(""), ErrEmptyJWTSecret)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"ifood", "balcao"}, SplitCSV(" ifood, ,balcao,"))
	assert.Nil(t, SplitCSV("  "))
}

func TestStrToPositiveInt(t *testing.T) {
	n, err := StrToPositiveInt("", 5, 50)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = StrToPositiveInt(" 10 ", 5, 50)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = StrToPositiveInt("51", 5, 50)
	assert.Error(t, err)
	_, err = StrToPositiveInt("x", 5, 50)
	assert.Error(t, err)
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("TEST_GETENV_INT", "42")
	assert.Equal(t, 42, GetenvInt("TEST_GETENV_INT", 1))

	t.Setenv("TEST_GETENV_INT", "forty")
	assert.Equal(t, 1, GetenvInt("TEST_GETENV_INT", 1))

	t.Setenv("TEST_GETENV_LIST", "a, b")
	assert.Equal(t, []string{"a", "b"}, GetenvList("TEST_GETENV_LIST", nil))
}
