// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the modmcp command-line application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/modmcp/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:               "modmcp",
	DisableAutoGenTag: true,
	Short:             "Expose application modules as MCP tools",
	Long: `modmcp bridges a module registry to the Model Context Protocol (MCP).

Registered modules are published as MCP tools with converted input schemas,
behavior annotations, and documentation resources. Tool calls are routed
through an execution pipeline that validates arguments, forwards progress
notifications for streamed results, supports user elicitation, and sanitizes
failures before they reach the client.

The server speaks stdio for local clients, or SSE / streamable HTTP behind an
optional JWT authentication gate for network clients.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.Initialize()
	},
}

// NewRootCmd creates a new root command for the modmcp CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.SilenceUsage = true

	return rootCmd
}
