package token_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-portal/token"
	"github.com/stretchr/testify/require"
)

func TestHMACSignerRoundTrip(t *testing.T) {
	signer := token.NewHMACSigner([]byte("0123456789abcdef0123456789abcdef"))
	raw, err := signer.Sign(jwt.MapClaims{
		"oid": "abc-123",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	claims, err := token.Parse(signer, raw)
	require.NoError(t, err)
	require.Equal(t, "abc-123", claims["oid"])
}

func TestParseRejectsWrongKeyAndExpiry(t *testing.T) {
	signer := token.NewHMACSigner([]byte("0123456789abcdef0123456789abcdef"))
	other := token.NewHMACSigner([]byte("fedcba9876543210fedcba9876543210"))

	raw, err := other.Sign(jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)
	_, err = token.Parse(signer, raw)
	require.Error(t, err)

	expired, err := signer.Sign(jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, err)
	_, err = token.Parse(signer, expired)
	require.Error(t, err)

	noExpiry, err := signer.Sign(jwt.MapClaims{"oid": "abc-123"})
	require.NoError(t, err)
	_, err = token.Parse(signer, noExpiry)
	require.Error(t, err)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(key)
	require.NoError(t, err)

	_, err = token.Parse(token.NewHMACSigner([]byte("0123456789abcdef0123456789abcdef")), raw)
	require.Error(t, err)
}
