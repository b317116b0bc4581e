// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/modmcp/pkg/auth"
)

// denyAll is an authenticator that never produces an identity.
type denyAll struct{}

func (denyAll) Authenticate(map[string]string) *auth.Identity { return nil }

func newTestManager(t *testing.T, cfg *Config) *Manager {
	t.Helper()
	mcpServer := server.NewMCPServer("test", "0.0.1")
	m, err := NewManager(cfg, mcpServer)
	require.NoError(t, err)
	return m
}

func TestNewManagerRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := NewManager(&Config{Mode: "carrier-pigeon"}, server.NewMCPServer("test", "0.0.1"))
	require.Error(t, err)
}

func TestNewManagerDefaultsEndpointPath(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, &Config{Mode: ModeStreamableHTTP})
	assert.Equal(t, "/mcp", m.config.EndpointPath)
}

func TestHealthEndpointBypassesMiddleware(t *testing.T) {
	t.Parallel()

	gate := auth.NewMiddleware(denyAll{})
	m := newTestManager(t, &Config{
		Mode:       ModeStreamableHTTP,
		Middleware: gate.Handler,
	})
	handler := m.httpHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpointBypassesMiddleware(t *testing.T) {
	t.Parallel()

	gate := auth.NewMiddleware(denyAll{})
	m := newTestManager(t, &Config{
		Mode:       ModeStreamableHTTP,
		Middleware: gate.Handler,
	})

	rec := httptest.NewRecorder()
	m.httpHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtocolEndpointIsGated(t *testing.T) {
	t.Parallel()

	gate := auth.NewMiddleware(denyAll{})
	m := newTestManager(t, &Config{
		Mode:       ModeStreamableHTTP,
		Middleware: gate.Handler,
	})

	rec := httptest.NewRecorder()
	m.httpHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestProtocolEndpointWithoutMiddleware(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, &Config{Mode: ModeStreamableHTTP})

	rec := httptest.NewRecorder()
	m.httpHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestSSEModeMountsProtocolAtRoot(t *testing.T) {
	t.Parallel()

	gate := auth.NewMiddleware(denyAll{})
	m := newTestManager(t, &Config{
		Mode:       ModeSSE,
		Middleware: gate.Handler,
	})

	rec := httptest.NewRecorder()
	m.httpHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sse", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStdioModeHasNoHTTPSurface(t *testing.T) {
	t.Parallel()

	// The stdio transport accepts middleware in config but never builds an
	// HTTP handler, so the gate cannot apply: local stdio clients are
	// trusted by construction.
	gate := auth.NewMiddleware(denyAll{})
	m := newTestManager(t, &Config{
		Mode:       ModeStdio,
		Middleware: gate.Handler,
	})
	assert.Equal(t, ModeStdio, m.config.Mode)
}
