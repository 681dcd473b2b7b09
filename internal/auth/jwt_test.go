package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("s3cret")

	token, err := m.Issue("ops@wampin", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@wampin", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("one").Issue("x", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = NewJWTManager("two").Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("s3cret")
	m.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	token, err := m.Issue("x", RoleAdmin, time.Minute)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC) }
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "x",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("s3cret").Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_WrongIssuer(t *testing.T) {
	claims := &Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "x",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = NewJWTManager("s3cret").Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}
