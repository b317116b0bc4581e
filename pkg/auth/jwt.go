// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stacklok/modmcp/pkg/logger"
)

// Authenticator validates a bearer credential carried in request headers and
// produces an Identity, or nil when the credential is missing or invalid.
// Implementations must never return an error for malformed input.
type Authenticator interface {
	Authenticate(headers map[string]string) *Identity
}

// ClaimMapping maps token claims to Identity fields.
type ClaimMapping struct {
	// IDClaim supplies Identity.ID. Default "sub".
	IDClaim string

	// KindClaim supplies Identity.Kind. Default "type"; when the claim is
	// absent the kind defaults to "user".
	KindClaim string

	// RolesClaim supplies Identity.Roles and must hold a list. Any other
	// shape yields an empty role set, not an error. Default "roles".
	RolesClaim string

	// AttrsClaims are extra claims copied verbatim into Identity.Attrs.
	AttrsClaims []string
}

// DefaultClaimMapping returns the standard claim mapping.
func DefaultClaimMapping() ClaimMapping {
	return ClaimMapping{IDClaim: "sub", KindClaim: "type", RolesClaim: "roles"}
}

// defaultKind is the Identity.Kind used when the kind claim is absent.
const defaultKind = "user"

// JWTConfig configures a JWTAuthenticator.
type JWTConfig struct {
	// Key is the verification key: []byte for HMAC algorithms, or a public
	// key (e.g. *rsa.PublicKey) for asymmetric ones.
	Key any

	// Algorithms are the accepted signing algorithms. Default ["HS256"].
	Algorithms []string

	// Audience, when set, must match the token's aud claim.
	Audience string

	// Issuer, when set, must match the token's iss claim.
	Issuer string

	// ClaimMapping maps claims to Identity fields. Zero value means defaults.
	ClaimMapping ClaimMapping

	// RequireClaims are claims that must be present in the token.
	// Nil means ["sub"]; an explicit empty slice requires nothing.
	RequireClaims []string
}

// JWTAuthenticator validates JWT bearer tokens against a local key.
// It is a pure function over its inputs: authentication failures yield nil,
// never an error, and the authenticator itself logs nothing above debug.
type JWTAuthenticator struct {
	key           any
	parser        *jwt.Parser
	mapping       ClaimMapping
	requireClaims []string
}

// NewJWTAuthenticator creates a JWT authenticator from config.
func NewJWTAuthenticator(cfg JWTConfig) (*JWTAuthenticator, error) {
	if cfg.Key == nil {
		return nil, fmt.Errorf("jwt authenticator requires a verification key")
	}

	algorithms := cfg.Algorithms
	if len(algorithms) == 0 {
		algorithms = []string{"HS256"}
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods(algorithms)}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	mapping := cfg.ClaimMapping
	if mapping.IDClaim == "" {
		mapping.IDClaim = "sub"
	}
	if mapping.KindClaim == "" {
		mapping.KindClaim = "type"
	}
	if mapping.RolesClaim == "" {
		mapping.RolesClaim = "roles"
	}

	requireClaims := cfg.RequireClaims
	if requireClaims == nil {
		requireClaims = []string{"sub"}
	}

	return &JWTAuthenticator{
		key:           cfg.Key,
		parser:        jwt.NewParser(opts...),
		mapping:       mapping,
		requireClaims: requireClaims,
	}, nil
}

// Authenticate extracts a Bearer token from the headers (lower-cased names),
// verifies it, and maps its claims to an Identity. Any failure along the way
// yields nil.
func (a *JWTAuthenticator) Authenticate(headers map[string]string) *Identity {
	token := extractBearerToken(headers)
	if token == "" {
		return nil
	}

	claims := a.decode(token)
	if claims == nil {
		return nil
	}

	return a.claimsToIdentity(claims)
}

// extractBearerToken pulls the token out of a case-insensitive
// "Bearer <token>" Authorization header. Returns "" when the header is
// absent, uses another scheme, or carries an empty token.
func extractBearerToken(headers map[string]string) string {
	authHeader := headers["authorization"]
	if len(authHeader) < len("bearer ") || !strings.EqualFold(authHeader[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("bearer "):])
}

func (a *JWTAuthenticator) decode(tokenString string) jwt.MapClaims {
	token, err := a.parser.Parse(tokenString, func(*jwt.Token) (any, error) {
		return a.key, nil
	})
	if err != nil || !token.Valid {
		logger.Debugf("JWT validation failed: %v", err)
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	for _, required := range a.requireClaims {
		if _, present := claims[required]; !present {
			logger.Debugf("JWT missing required claim: %s", required)
			return nil
		}
	}

	return claims
}

func (a *JWTAuthenticator) claimsToIdentity(claims jwt.MapClaims) *Identity {
	rawID, ok := claims[a.mapping.IDClaim]
	if !ok || rawID == nil {
		return nil
	}

	kind := defaultKind
	if rawKind, ok := claims[a.mapping.KindClaim]; ok && rawKind != nil {
		kind = fmt.Sprintf("%v", rawKind)
	}

	var roles []string
	if rawRoles, ok := claims[a.mapping.RolesClaim].([]any); ok {
		roles = make([]string, 0, len(rawRoles))
		for _, r := range rawRoles {
			roles = append(roles, fmt.Sprintf("%v", r))
		}
	}

	attrs := make(map[string]any)
	for _, claim := range a.mapping.AttrsClaims {
		if value, present := claims[claim]; present {
			attrs[claim] = value
		}
	}

	return &Identity{
		ID:    fmt.Sprintf("%v", rawID),
		Kind:  kind,
		Roles: roles,
		Attrs: attrs,
	}
}

// LoadKey resolves a verification key from either an inline HMAC secret or a
// PEM key file, depending on the algorithm family.
func LoadKey(algorithm, secret, keyFile string) (any, error) {
	if keyFile != "" {
		pemBytes, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file: %w", err)
		}
		switch {
		case strings.HasPrefix(algorithm, "RS"), strings.HasPrefix(algorithm, "PS"):
			key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
			}
			return key, nil
		case strings.HasPrefix(algorithm, "ES"):
			key, err := jwt.ParseECPublicKeyFromPEM(pemBytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse EC public key: %w", err)
			}
			return key, nil
		default:
			return nil, fmt.Errorf("key file provided but algorithm %s is not asymmetric", algorithm)
		}
	}

	if secret == "" {
		return nil, fmt.Errorf("no JWT secret or key file provided")
	}
	if !strings.HasPrefix(algorithm, "HS") {
		return nil, fmt.Errorf("inline secret requires an HMAC algorithm, got %s", algorithm)
	}
	return []byte(secret), nil
}
