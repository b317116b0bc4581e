// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package server exposes registered modules as MCP tools. It builds the
// protocol-facing tool and resource definitions from module descriptors,
// keeps the tool catalog in sync with the module registry, and bridges tool
// invocations into the execution router.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/modmcp/pkg/adapter"
	"github.com/stacklok/modmcp/pkg/modules"
)

// docURIPrefix is the URI scheme under which module documentation resources
// are published.
const docURIPrefix = "docs://modules/"

// BuildTool converts a module descriptor into an MCP tool definition.
//
// The tool name is the normalized module ID; the description carries the
// annotation summary block for clients without native hint support. Behavior
// hints with no MCP-native field (approval, streaming) travel in _meta.
func BuildTool(d *modules.Descriptor) (mcp.Tool, error) {
	name, err := adapter.NormalizeModuleID(d.ID)
	if err != nil {
		return mcp.Tool{}, err
	}

	schema, err := adapter.ConvertSchema(d.InputSchema)
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("converting input schema for %s: %w", d.ID, err)
	}
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("marshaling input schema for %s: %w", d.ID, err)
	}

	annotations := adapter.ToMCPAnnotations(d.Annotations)
	if d.Annotations != nil {
		annotations.Title = d.Annotations.Title
	}

	tool := mcp.Tool{
		Name:           name,
		Description:    d.Description + adapter.DescriptionSuffix(d.Annotations),
		RawInputSchema: schemaJSON,
		Annotations:    annotations,
	}

	if adapter.RequiresApproval(d.Annotations) || adapter.IsStreaming(d.Annotations) {
		tool.Meta = &mcp.Meta{
			AdditionalFields: map[string]any{
				"requiresApproval": adapter.RequiresApproval(d.Annotations),
				"streaming":        adapter.IsStreaming(d.Annotations),
			},
		}
	}

	return tool, nil
}

// BuildDocResource builds the documentation resource published for a module.
// The resource body is the full descriptor, schemas included, as JSON.
func BuildDocResource(d *modules.Descriptor) (mcp.Resource, func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)) {
	uri := docURIPrefix + d.ID
	resource := mcp.Resource{
		URI:         uri,
		Name:        d.ID,
		Description: d.Description,
		MIMEType:    "application/json",
	}

	doc := map[string]any{
		"id":           d.ID,
		"description":  d.Description,
		"input_schema": d.InputSchema,
	}
	if d.OutputSchema != nil {
		doc["output_schema"] = d.OutputSchema
	}

	handler := func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		body, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshaling documentation for %s: %w", d.ID, err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(body),
			},
		}, nil
	}

	return resource, handler
}
