// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package converter renders module descriptors in third-party tool-calling
// catalog formats, for clients that speak those instead of MCP.
package converter

import (
	"fmt"

	"github.com/stacklok/modmcp/pkg/adapter"
	"github.com/stacklok/modmcp/pkg/modules"
)

// ToOpenAITool converts a module descriptor into the OpenAI function-calling
// tool format. The function name is the normalized module ID, and the
// description carries the same annotation summary block as the MCP catalog.
func ToOpenAITool(d *modules.Descriptor) (map[string]any, error) {
	name, err := adapter.NormalizeModuleID(d.ID)
	if err != nil {
		return nil, err
	}

	parameters, err := adapter.ConvertSchema(d.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("converting schema for %s: %w", d.ID, err)
	}

	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        name,
			"description": d.Description + adapter.DescriptionSuffix(d.Annotations),
			"parameters":  parameters,
		},
	}, nil
}

// ToOpenAITools converts every descriptor in the registry. Modules whose
// descriptors cannot be converted are skipped.
func ToOpenAITools(registry modules.Registry) []map[string]any {
	ids := registry.ListIDs()
	tools := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		d := registry.GetDefinition(id)
		if d == nil {
			continue
		}
		tool, err := ToOpenAITool(d)
		if err != nil {
			continue
		}
		tools = append(tools, tool)
	}
	return tools
}
