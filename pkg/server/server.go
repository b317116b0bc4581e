// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/stacklok/modmcp/pkg/modules"
	"github.com/stacklok/modmcp/pkg/router"
)

// Config holds the protocol-level server settings.
type Config struct {
	// Name is the server name advertised during initialization.
	Name string

	// Version is the server version advertised during initialization.
	Version string

	// ValidateInputs enables pre-execution argument validation when the
	// executor supports it.
	ValidateInputs bool
}

// Server couples an SDK MCP server with the registry listener that keeps its
// tool catalog current.
type Server struct {
	mcpServer *server.MCPServer
	listener  *RegistryListener
}

// New assembles the MCP server: an execution router around the executor, the
// SDK server instance, and a registry listener mirroring the module catalog
// into it. The listener is not started; call Start once transports are ready.
func New(cfg *Config, registry modules.Registry, executor any) (*Server, error) {
	if cfg.Name == "" {
		cfg.Name = "modmcp"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	rt, err := router.NewExecutionRouter(executor, router.WithInputValidation(cfg.ValidateInputs))
	if err != nil {
		return nil, fmt.Errorf("creating execution router: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	listener := NewRegistryListener(registry, mcpServer, rt, newSDKSession(mcpServer))

	return &Server{
		mcpServer: mcpServer,
		listener:  listener,
	}, nil
}

// Start begins mirroring the module registry into the tool catalog.
func (s *Server) Start() {
	s.listener.Start()
}

// Stop stops mirroring registry changes.
func (s *Server) Stop() {
	s.listener.Stop()
}

// MCPServer returns the underlying SDK server for transport binding.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Listener returns the registry listener, mainly for inspection in tests.
func (s *Server) Listener() *RegistryListener {
	return s.listener
}
