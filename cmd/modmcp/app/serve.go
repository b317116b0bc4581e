// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/stacklok/modmcp/pkg/auth"
	"github.com/stacklok/modmcp/pkg/logger"
	"github.com/stacklok/modmcp/pkg/modules"
	"github.com/stacklok/modmcp/pkg/server"
	"github.com/stacklok/modmcp/pkg/transport"
	"github.com/stacklok/modmcp/pkg/versions"
)

// DefaultPort is the default port for the HTTP transports.
// 6636 spells "MODM" on a phone keypad.
const DefaultPort = 6636

type serveFlags struct {
	transport      string
	host           string
	port           int
	jwtSecret      string
	jwtAlgorithm   string
	jwtAudience    string
	jwtIssuer      string
	jwtKeyFile     string
	requireAuth    bool
	exemptPaths    []string
	validateInputs bool
}

func newServeCmd() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the modmcp server",
		Long: `Start the modmcp server and expose the hosted modules as MCP tools.

The stdio transport serves a single local client and carries no credentials;
the SSE and streamable HTTP transports listen on --host:--port and can be
placed behind a JWT authentication gate with the --jwt-* flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.transport, "transport", string(transport.ModeStdio),
		"Transport to serve on (stdio, sse, streamable-http)")
	cmd.Flags().StringVar(&flags.host, "host", "127.0.0.1", "Host to listen on (HTTP transports)")
	cmd.Flags().IntVar(&flags.port, "port", DefaultPort, "Port to listen on (HTTP transports)")
	cmd.Flags().StringVar(&flags.jwtSecret, "jwt-secret", "", "Inline HMAC secret for JWT verification")
	cmd.Flags().StringVar(&flags.jwtAlgorithm, "jwt-algorithm", "HS256", "JWT signing algorithm to accept")
	cmd.Flags().StringVar(&flags.jwtAudience, "jwt-audience", "", "Required JWT audience claim")
	cmd.Flags().StringVar(&flags.jwtIssuer, "jwt-issuer", "", "Required JWT issuer claim")
	cmd.Flags().StringVar(&flags.jwtKeyFile, "jwt-key-file", "", "PEM file holding the JWT public key")
	cmd.Flags().BoolVar(&flags.requireAuth, "require-auth", true,
		"Reject unauthenticated requests (false proceeds without identity)")
	cmd.Flags().StringSliceVar(&flags.exemptPaths, "exempt-paths", nil,
		"Additional paths exempt from authentication")
	cmd.Flags().BoolVar(&flags.validateInputs, "validate-inputs", false,
		"Validate call arguments against the module input schema before execution")

	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	executor := modules.NewLocalExecutor(modules.NewInMemoryRegistry())
	registerBuiltinModules(executor)

	srv, err := server.New(&server.Config{
		Name:           "modmcp",
		Version:        versions.GetVersionInfo().Version,
		ValidateInputs: flags.validateInputs,
	}, executor.Registry(), executor)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	middleware, err := buildAuthMiddleware(flags)
	if err != nil {
		return err
	}

	manager, err := transport.NewManager(&transport.Config{
		Mode:       transport.Mode(flags.transport),
		Host:       flags.host,
		Port:       flags.port,
		Middleware: middleware,
	}, srv.MCPServer())
	if err != nil {
		return err
	}

	srv.Start()
	defer srv.Stop()

	return manager.Serve(cmd.Context())
}

// buildAuthMiddleware assembles the JWT gate for the HTTP transports, or nil
// when no verification key is configured.
func buildAuthMiddleware(flags *serveFlags) (func(http.Handler) http.Handler, error) {
	if flags.jwtSecret == "" && flags.jwtKeyFile == "" {
		if flags.requireAuth && flags.transport != string(transport.ModeStdio) {
			logger.Warn("No JWT key configured; serving HTTP transport without authentication")
		}
		return nil, nil
	}

	key, err := auth.LoadKey(flags.jwtAlgorithm, flags.jwtSecret, flags.jwtKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load JWT key: %w", err)
	}

	authenticator, err := auth.NewJWTAuthenticator(auth.JWTConfig{
		Key:        key,
		Algorithms: []string{flags.jwtAlgorithm},
		Audience:   flags.jwtAudience,
		Issuer:     flags.jwtIssuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT authenticator: %w", err)
	}

	opts := []auth.MiddlewareOption{auth.WithRequireAuth(flags.requireAuth)}
	if len(flags.exemptPaths) > 0 {
		exempt := append([]string{"/health", "/metrics"}, flags.exemptPaths...)
		opts = append(opts, auth.WithExemptPaths(exempt...))
	}

	return auth.NewMiddleware(authenticator, opts...).Handler, nil
}
