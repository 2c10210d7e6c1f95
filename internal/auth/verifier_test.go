package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://auth.example.com/"
	testAudience = "tonr-api"
	testSecret   = "test-signing-secret"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":   testIssuer,
		"aud":   testAudience,
		"sub":   "idp|user-123",
		"email": "speaker@example.com",
		"name":  "Test Speaker",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

func TestNewVerifier_Validation(t *testing.T) {
	tests := []struct {
		name     string
		issuer   string
		audience string
		secret   string
		wantErr  bool
	}{
		{"valid", testIssuer, testAudience, testSecret, false},
		{"missing issuer", "", testAudience, testSecret, true},
		{"missing audience", testIssuer, "", testSecret, true},
		{"missing secret", testIssuer, testAudience, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVerifier(tt.issuer, tt.audience, tt.secret)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifier_Verify(t *testing.T) {
	v, err := NewVerifier(testIssuer, testAudience, testSecret)
	require.NoError(t, err)

	t.Run("accepts a valid token", func(t *testing.T) {
		claims, err := v.Verify(signToken(t, testSecret, validClaims()))
		require.NoError(t, err)
		assert.Equal(t, "idp|user-123", claims.Subject)
		assert.Equal(t, "speaker@example.com", claims.Email)
		assert.Equal(t, "Test Speaker", claims.Name)
	})

	t.Run("rejects a token signed with the wrong secret", func(t *testing.T) {
		_, err := v.Verify(signToken(t, "some-other-secret", validClaims()))
		assert.Error(t, err)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		c := validClaims()
		c["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err := v.Verify(signToken(t, testSecret, c))
		assert.Error(t, err)
	})

	t.Run("rejects a token without an expiry", func(t *testing.T) {
		c := validClaims()
		delete(c, "exp")
		_, err := v.Verify(signToken(t, testSecret, c))
		assert.Error(t, err)
	})

	t.Run("rejects the wrong issuer", func(t *testing.T) {
		c := validClaims()
		c["iss"] = "https://evil.example.com/"
		_, err := v.Verify(signToken(t, testSecret, c))
		assert.Error(t, err)
	})

	t.Run("rejects the wrong audience", func(t *testing.T) {
		c := validClaims()
		c["aud"] = "some-other-api"
		_, err := v.Verify(signToken(t, testSecret, c))
		assert.Error(t, err)
	})

	t.Run("rejects a token without a subject", func(t *testing.T) {
		c := validClaims()
		delete(c, "sub")
		_, err := v.Verify(signToken(t, testSecret, c))
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := v.Verify("not.a.token")
		assert.Error(t, err)
	})
}

func TestNormalizeIssuer(t *testing.T) {
	assert.Equal(t, "https://auth.example.com/", normalizeIssuer("https://auth.example.com"))
	assert.Equal(t, "https://auth.example.com/", normalizeIssuer("  https://auth.example.com/  "))
	assert.Equal(t, "", normalizeIssuer("   "))
}
