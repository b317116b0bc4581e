// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stacklok/modmcp/pkg/logger"
)

// staticAuthenticator returns a fixed identity for one exact token.
type staticAuthenticator struct {
	token    string
	identity *Identity
}

func (s *staticAuthenticator) Authenticate(headers map[string]string) *Identity {
	if headers["authorization"] == "Bearer "+s.token {
		return s.identity
	}
	return nil
}

func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	old := logger.Get()
	logger.Set(zap.New(core).Sugar())
	t.Cleanup(func() { logger.Set(old) })
	return logs
}

func newGate(opts ...MiddlewareOption) *Middleware {
	return NewMiddleware(&staticAuthenticator{
		token:    "good-token",
		identity: &Identity{ID: "u1", Kind: "user"},
	}, opts...)
}

func identityEchoHandler(invoked *bool, got **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*invoked = true
		if identity, ok := IdentityFromContext(r.Context()); ok {
			*got = identity
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareRejectsMissingCredential(t *testing.T) { //nolint:paralleltest // swaps logger
	logs := captureLogs(t)

	var invoked bool
	var got *Identity
	handler := newGate().Handler(identityEchoHandler(&invoked, &got))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/call", nil))

	assert.False(t, invoked, "downstream must not run on rejection")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body["error"])
	assert.Equal(t, "Missing or invalid Bearer token", body["detail"])

	warnings := logs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "/call")
	assert.NotContains(t, warnings[0].Message, "Bearer ")
}

func TestMiddlewarePassesValidCredential(t *testing.T) { //nolint:paralleltest // swaps logger
	captureLogs(t)

	var invoked bool
	var got *Identity
	handler := newGate().Handler(identityEchoHandler(&invoked, &got))

	req := httptest.NewRequest(http.MethodPost, "/call", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, invoked)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
}

func TestMiddlewareExemptPathsAndPrefixes(t *testing.T) { //nolint:paralleltest // swaps logger
	logs := captureLogs(t)

	gate := newGate(WithExemptPrefixes("/public/"))

	for _, path := range []string{"/health", "/metrics", "/public/docs", "/public/"} {
		var invoked bool
		var got *Identity
		rec := httptest.NewRecorder()
		gate.Handler(identityEchoHandler(&invoked, &got)).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.True(t, invoked, "path %s should bypass auth", path)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, got, "exempt path %s should carry no identity", path)
	}

	assert.Empty(t, logs.FilterLevelExact(zap.WarnLevel).All())
}

func TestMiddlewarePermissiveMode(t *testing.T) { //nolint:paralleltest // swaps logger
	logs := captureLogs(t)

	var invoked bool
	var got *Identity
	handler := newGate(WithRequireAuth(false)).Handler(identityEchoHandler(&invoked, &got))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/call", nil))

	assert.True(t, invoked, "permissive mode proceeds without identity")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got)
	assert.Empty(t, logs.FilterLevelExact(zap.WarnLevel).All(), "permissive mode logs no warning")
}

func TestMiddlewareIdentityDoesNotLeakAcrossRequests(t *testing.T) { //nolint:paralleltest // swaps logger
	captureLogs(t)

	gate := newGate(WithRequireAuth(false))

	var first *Identity
	var invoked bool
	req := httptest.NewRequest(http.MethodPost, "/call", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	gate.Handler(identityEchoHandler(&invoked, &first)).ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, first)

	// A subsequent unauthenticated request must observe no identity.
	var second *Identity
	gate.Handler(identityEchoHandler(&invoked, &second)).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/call", nil))
	assert.Nil(t, second)
}
