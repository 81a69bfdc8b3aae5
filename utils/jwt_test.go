package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAudience = "foodorder-api"
	testIssuer   = "https://tenant.example.com/"
)

func newTestVerifier(t *testing.T) (*TokenVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	kf := func(*jwt.Token) (any, error) { return &key.PublicKey, nil }
	return NewTokenVerifier(kf, testAudience, testIssuer), key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "auth0|123",
		Audience:  jwt.ClaimStrings{testAudience},
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestVerify(t *testing.T) {
	v, key := newTestVerifier(t)

	claims, err := v.Verify(sign(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "auth0|123", claims.Subject)

	cases := map[string]func(c *jwt.RegisteredClaims){
		"wrong audience": func(c *jwt.RegisteredClaims) { c.Audience = jwt.ClaimStrings{"other"} },
		"wrong issuer":   func(c *jwt.RegisteredClaims) { c.Issuer = "https://evil.example.com/" },
		"expired":        func(c *jwt.RegisteredClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour)) },
		"no expiry":      func(c *jwt.RegisteredClaims) { c.ExpiresAt = nil },
		"no subject":     func(c *jwt.RegisteredClaims) { c.Subject = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validClaims()
			mutate(&c)
			_, err := v.Verify(sign(t, key, c))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_RejectsOtherKeysAndHMAC(t *testing.T) {
	v, _ := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	_, err = v.Verify(sign(t, other, validClaims()))
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.Verify(hs)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	for _, h := range []string{"", "Basic abc", "Bearer ", "bearer abc"} {
		_, err := BearerToken(h)
		assert.ErrorIs(t, err, ErrMissingToken, h)
	}
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "22.99", FormatMinor(2299))
	assert.Equal(t, "0.05", FormatMinor(5))
	assert.Equal(t, "10.00", FormatMinor(1000))
}
