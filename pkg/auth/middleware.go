// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stacklok/modmcp/pkg/logger"
)

// Middleware is the auth gate applied to HTTP-served transports. For each
// request it decides whether authentication is required, extracts the
// Identity, and makes it available to downstream handlers via the request
// context.
//
// Only HTTP requests pass through this gate. The stdio transport carries no
// credentials and deliberately bypasses it; see pkg/transport.
type Middleware struct {
	authenticator  Authenticator
	exemptPaths    map[string]struct{}
	exemptPrefixes []string
	requireAuth    bool
}

// MiddlewareOption configures the auth gate.
type MiddlewareOption func(*Middleware)

// WithExemptPaths replaces the exact-match exempt path set.
func WithExemptPaths(paths ...string) MiddlewareOption {
	return func(m *Middleware) {
		m.exemptPaths = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			m.exemptPaths[p] = struct{}{}
		}
	}
}

// WithExemptPrefixes sets path prefixes that bypass authentication.
func WithExemptPrefixes(prefixes ...string) MiddlewareOption {
	return func(m *Middleware) {
		m.exemptPrefixes = append([]string(nil), prefixes...)
	}
}

// WithRequireAuth toggles between strict mode (401 on missing identity,
// the default) and permissive mode (proceed without identity).
func WithRequireAuth(require bool) MiddlewareOption {
	return func(m *Middleware) {
		m.requireAuth = require
	}
}

// NewMiddleware creates an auth gate around the given authenticator.
// By default /health and /metrics are exempt and authentication is required.
func NewMiddleware(authenticator Authenticator, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		authenticator: authenticator,
		exemptPaths:   map[string]struct{}{"/health": {}, "/metrics": {}},
		requireAuth:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler wraps next with the auth gate.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		identity := m.authenticator.Authenticate(headersFromRequest(r))
		if identity == nil {
			if m.requireAuth {
				// Audit line carries only the path, never the credential.
				logger.Warnf("Authentication failed for %s", r.URL.Path)
				writeUnauthorized(w)
				return
			}
			// Permissive mode: proceed with no identity and no warning.
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (m *Middleware) isExempt(path string) bool {
	if _, ok := m.exemptPaths[path]; ok {
		return true
	}
	for _, prefix := range m.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// headersFromRequest flattens request headers into a lower-cased-key map,
// keeping the first value of each header.
func headersFromRequest(r *http.Request) map[string]string {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[strings.ToLower(name)] = values[0]
		}
	}
	return headers
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  "Unauthorized",
		"detail": "Missing or invalid Bearer token",
	})
}
