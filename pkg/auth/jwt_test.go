// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestAuthenticator(t *testing.T, cfg JWTConfig) *JWTAuthenticator {
	t.Helper()
	if cfg.Key == nil {
		cfg.Key = []byte(testSecret)
	}
	a, err := NewJWTAuthenticator(cfg)
	require.NoError(t, err)
	return a
}

func TestAuthenticateValidToken(t *testing.T) {
	t.Parallel()

	a := newTestAuthenticator(t, JWTConfig{})
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "u1",
		"roles": []any{"admin"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	identity := a.Authenticate(map[string]string{"authorization": "Bearer " + token})
	require.NotNil(t, identity)
	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, "user", identity.Kind)
	assert.Equal(t, []string{"admin"}, identity.Roles)
	assert.True(t, identity.HasRole("admin"))
}

func TestAuthenticateMalformedCredentialsNeverError(t *testing.T) {
	t.Parallel()

	a := newTestAuthenticator(t, JWTConfig{})
	valid := signToken(t, testSecret, jwt.MapClaims{"sub": "u1"})
	wrongKey := signToken(t, "other-secret", jwt.MapClaims{"sub": "u1"})
	expired := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no headers", map[string]string{}},
		{"empty authorization", map[string]string{"authorization": ""}},
		{"wrong scheme", map[string]string{"authorization": "Basic dXNlcjpwYXNz"}},
		{"bearer no token", map[string]string{"authorization": "Bearer "}},
		{"bearer garbage", map[string]string{"authorization": "Bearer not.a.jwt"}},
		{"wrong signing key", map[string]string{"authorization": "Bearer " + wrongKey}},
		{"expired token", map[string]string{"authorization": "Bearer " + expired}},
		{"token in wrong header", map[string]string{"x-token": valid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Nil(t, a.Authenticate(tt.headers))
		})
	}
}

func TestAuthenticateBearerSchemeCaseInsensitive(t *testing.T) {
	t.Parallel()

	a := newTestAuthenticator(t, JWTConfig{})
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "u1"})

	for _, scheme := range []string{"bearer", "Bearer", "BEARER", "BeArEr"} {
		identity := a.Authenticate(map[string]string{"authorization": scheme + " " + token})
		require.NotNil(t, identity, "scheme %q", scheme)
		assert.Equal(t, "u1", identity.ID)
	}
}

func TestAuthenticateAudienceAndIssuer(t *testing.T) {
	t.Parallel()

	a := newTestAuthenticator(t, JWTConfig{Audience: "mcp", Issuer: "https://issuer.example"})

	good := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1", "aud": "mcp", "iss": "https://issuer.example",
	})
	require.NotNil(t, a.Authenticate(map[string]string{"authorization": "Bearer " + good}))

	badAud := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1", "aud": "other", "iss": "https://issuer.example",
	})
	assert.Nil(t, a.Authenticate(map[string]string{"authorization": "Bearer " + badAud}))

	badIss := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1", "aud": "mcp", "iss": "https://evil.example",
	})
	assert.Nil(t, a.Authenticate(map[string]string{"authorization": "Bearer " + badIss}))
}

func TestAuthenticateRequiredClaims(t *testing.T) {
	t.Parallel()

	a := newTestAuthenticator(t, JWTConfig{RequireClaims: []string{"sub", "org"}})

	missing := signToken(t, testSecret, jwt.MapClaims{"sub": "u1"})
	assert.Nil(t, a.Authenticate(map[string]string{"authorization": "Bearer " + missing}))

	complete := signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "org": "acme"})
	assert.NotNil(t, a.Authenticate(map[string]string{"authorization": "Bearer " + complete}))
}

func TestAuthenticateClaimMapping(t *testing.T) {
	t.Parallel()

	a := newTestAuthenticator(t, JWTConfig{
		ClaimMapping: ClaimMapping{
			IDClaim:     "email",
			KindClaim:   "account_type",
			RolesClaim:  "permissions",
			AttrsClaims: []string{"org", "tier"},
		},
		RequireClaims: []string{"email"},
	})

	token := signToken(t, testSecret, jwt.MapClaims{
		"email":        "u1@example.com",
		"account_type": "service",
		"permissions":  []any{"read", "write"},
		"org":          "acme",
	})

	identity := a.Authenticate(map[string]string{"authorization": "Bearer " + token})
	require.NotNil(t, identity)
	assert.Equal(t, "u1@example.com", identity.ID)
	assert.Equal(t, "service", identity.Kind)
	assert.Equal(t, []string{"read", "write"}, identity.Roles)
	assert.Equal(t, "acme", identity.Attrs["org"])
	_, hasTier := identity.Attrs["tier"]
	assert.False(t, hasTier)
}

func TestAuthenticateRolesWrongShapeYieldsEmptySet(t *testing.T) {
	t.Parallel()

	a := newTestAuthenticator(t, JWTConfig{})
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "roles": "admin"})

	identity := a.Authenticate(map[string]string{"authorization": "Bearer " + token})
	require.NotNil(t, identity)
	assert.Empty(t, identity.Roles)
}

func TestLoadKey(t *testing.T) {
	t.Parallel()

	key, err := LoadKey("HS256", "s3cret", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), key)

	_, err = LoadKey("HS256", "", "")
	assert.Error(t, err)

	_, err = LoadKey("RS256", "s3cret", "")
	assert.Error(t, err)
}
