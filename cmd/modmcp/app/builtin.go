// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"time"

	"github.com/stacklok/modmcp/pkg/logger"
	"github.com/stacklok/modmcp/pkg/modules"
	"github.com/stacklok/modmcp/pkg/versions"
)

// registerBuiltinModules installs the modules every modmcp binary ships
// with. They keep the server usable stand-alone and double as a smoke test
// for the sync and streaming call paths.
func registerBuiltinModules(executor *modules.LocalExecutor) {
	readOnly := true

	builtins := []*modules.LocalModule{
		{
			Descriptor: &modules.Descriptor{
				ID:          "system.info",
				Description: "Report server version and build information",
				Annotations: &modules.Annotations{
					Title:    "Server info",
					ReadOnly: &readOnly,
				},
			},
			Handler: func(context.Context, map[string]any, *modules.ExecutionContext) (map[string]any, error) {
				info := versions.GetVersionInfo()
				return map[string]any{
					"version":    info.Version,
					"commit":     info.Commit,
					"build_date": info.BuildDate,
					"go_version": info.GoVersion,
					"platform":   info.Platform,
					"time":       time.Now().UTC().Format(time.RFC3339),
				}, nil
			},
		},
		{
			Descriptor: &modules.Descriptor{
				ID:          "system.echo",
				Description: "Echo the provided arguments back, one field per chunk when streamed",
				InputSchema: map[string]any{
					"type":                 "object",
					"additionalProperties": true,
				},
				Annotations: &modules.Annotations{
					Title:     "Echo",
					ReadOnly:  &readOnly,
					Streaming: true,
				},
			},
			Handler: func(_ context.Context, args map[string]any, _ *modules.ExecutionContext) (map[string]any, error) {
				out := make(map[string]any, len(args))
				for k, v := range args {
					out[k] = v
				}
				return out, nil
			},
			StreamHandler: func(_ context.Context, args map[string]any, _ *modules.ExecutionContext) (modules.ChunkStream, error) {
				chunks := make([]map[string]any, 0, len(args))
				for k, v := range args {
					chunks = append(chunks, map[string]any{k: v})
				}
				return modules.NewSliceStream(chunks...), nil
			},
		},
	}

	for _, m := range builtins {
		if err := executor.AddModule(m); err != nil {
			logger.Warnf("Failed to register builtin module %s: %v", m.Descriptor.ID, err)
		}
	}
}
