// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package transport binds an MCP server to its client-facing transport:
// stdio for local single-client use, SSE or streamable HTTP for network use.
//
// The HTTP transports share one mux carrying the unauthenticated /health and
// /metrics endpoints next to the protocol endpoint, which is wrapped by the
// configured middleware chain. The stdio transport has no HTTP surface at
// all, so HTTP middleware never applies to it.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/modmcp/pkg/logger"
	"github.com/stacklok/modmcp/pkg/telemetry"
)

// Mode selects the client-facing transport.
type Mode string

// Supported transport modes.
const (
	ModeStdio          Mode = "stdio"
	ModeSSE            Mode = "sse"
	ModeStreamableHTTP Mode = "streamable-http"
)

const (
	defaultEndpointPath      = "/mcp"
	defaultReadHeaderTimeout = 10 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
)

// Config holds transport settings.
type Config struct {
	// Mode selects the transport; required.
	Mode Mode

	// Host and Port are the HTTP bind address; ignored for stdio.
	Host string
	Port int

	// EndpointPath is the streamable HTTP protocol endpoint. Default /mcp.
	EndpointPath string

	// Middleware wraps the protocol endpoint of the HTTP transports,
	// typically with the authentication gate. Health and metrics endpoints
	// are deliberately outside it. Nil means no wrapping.
	Middleware func(http.Handler) http.Handler
}

// Manager serves one MCP server over the configured transport.
type Manager struct {
	config    *Config
	mcpServer *server.MCPServer
}

// NewManager validates the configuration and creates a transport manager.
func NewManager(cfg *Config, mcpServer *server.MCPServer) (*Manager, error) {
	switch cfg.Mode {
	case ModeStdio, ModeSSE, ModeStreamableHTTP:
	default:
		return nil, fmt.Errorf("unsupported transport mode: %q", cfg.Mode)
	}
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = defaultEndpointPath
	}
	return &Manager{config: cfg, mcpServer: mcpServer}, nil
}

// Serve runs the transport until ctx is canceled or a fatal error occurs.
func (m *Manager) Serve(ctx context.Context) error {
	if m.config.Mode == ModeStdio {
		logger.Info("Starting MCP server on stdio")
		return server.ServeStdio(m.mcpServer)
	}

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           m.httpHandler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Starting MCP %s server on http://%s%s", m.config.Mode, addr, m.config.EndpointPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// httpHandler builds the shared HTTP mux: unauthenticated operational
// endpoints plus the middleware-wrapped protocol endpoint.
func (m *Manager) httpHandler() http.Handler {
	mux := chi.NewRouter()

	mux.Get("/health", handleHealth)
	mux.Handle("/metrics", telemetry.Handler())

	var protocol http.Handler
	switch m.config.Mode {
	case ModeSSE:
		protocol = server.NewSSEServer(m.mcpServer)
	default:
		protocol = server.NewStreamableHTTPServer(
			m.mcpServer,
			server.WithEndpointPath(m.config.EndpointPath),
		)
	}
	if m.config.Middleware != nil {
		protocol = m.config.Middleware(protocol)
	}

	// The protocol servers route their own sub-paths (SSE uses separate
	// event and message endpoints), so mount them at the root.
	mux.Handle("/*", protocol)

	return mux
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
