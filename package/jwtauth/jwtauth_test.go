package jwtauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTService(t *testing.T) {
	service := NewJWTService("secret", "issuer")

	assert.Equal(t, []byte("secret"), service.secretKey)
	assert.Equal(t, "issuer", service.issuer)
}

func TestCreateAccessToken(t *testing.T) {
	service := NewJWTService("secret", "issuer")

	token, expiresAt, err := service.CreateAccessToken("phone", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := service.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "phone", claims.Device)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, "issuer", claims.Issuer)
}

func TestDeviceFromToken(t *testing.T) {
	service := NewJWTService("secret", "issuer")

	token, _, err := service.CreateAccessToken("watch", time.Minute)
	require.NoError(t, err)

	device, err := service.DeviceFromToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "watch", device)
}

func TestParseToken_InvalidToken(t *testing.T) {
	service := NewJWTService("secret", "issuer")

	claims, err := service.ParseToken("invalid.token.string")

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestParseToken_Expired(t *testing.T) {
	service := NewJWTService("secret", "issuer")
	service.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := service.CreateAccessToken("phone", time.Hour)
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _, err := NewJWTService("secret", "issuer").CreateAccessToken("phone", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService("other", "issuer").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_InvalidIssuer(t *testing.T) {
	service := NewJWTService("secret", "issuer")

	claims := Claims{
		Type:   TokenTypeAccess,
		Device: "phone",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "invalid_issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	invalidToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	parsed, err := service.ParseToken(invalidToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, parsed)
}

func TestParseToken_WrongType(t *testing.T) {
	service := NewJWTService("secret", "issuer")

	claims := Claims{
		Type: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = service.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
