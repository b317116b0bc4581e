// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/modmcp/pkg/modules"
)

// Annotation defaults applied when a hint is not declared.
const (
	defaultReadOnly    = false
	defaultDestructive = false
	defaultIdempotent  = false
	defaultOpenWorld   = true
)

// ToMCPAnnotations maps module annotations to MCP tool annotation hints,
// applying defaults for undeclared values.
func ToMCPAnnotations(a *modules.Annotations) mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint:    boolPtr(annotationValue(a, func(a *modules.Annotations) *bool { return a.ReadOnly }, defaultReadOnly)),
		DestructiveHint: boolPtr(annotationValue(a, func(a *modules.Annotations) *bool { return a.Destructive }, defaultDestructive)),
		IdempotentHint:  boolPtr(annotationValue(a, func(a *modules.Annotations) *bool { return a.Idempotent }, defaultIdempotent)),
		OpenWorldHint:   boolPtr(annotationValue(a, func(a *modules.Annotations) *bool { return a.OpenWorld }, defaultOpenWorld)),
	}
}

// DescriptionSuffix renders the annotation hints as a human-readable block
// appended to catalog descriptions for clients without native hint support.
// Returns "" when no annotations are declared.
func DescriptionSuffix(a *modules.Annotations) string {
	if a == nil {
		return ""
	}
	parts := []string{
		fmt.Sprintf("readonly=%t", annotationValue(a, func(a *modules.Annotations) *bool { return a.ReadOnly }, defaultReadOnly)),
		fmt.Sprintf("destructive=%t", annotationValue(a, func(a *modules.Annotations) *bool { return a.Destructive }, defaultDestructive)),
		fmt.Sprintf("idempotent=%t", annotationValue(a, func(a *modules.Annotations) *bool { return a.Idempotent }, defaultIdempotent)),
		fmt.Sprintf("requires_approval=%t", a.RequiresApproval),
		fmt.Sprintf("open_world=%t", annotationValue(a, func(a *modules.Annotations) *bool { return a.OpenWorld }, defaultOpenWorld)),
	}
	return "\n\n[Annotations: " + strings.Join(parts, ", ") + "]"
}

// RequiresApproval reports whether the module demands human approval before
// execution.
func RequiresApproval(a *modules.Annotations) bool {
	return a != nil && a.RequiresApproval
}

// IsStreaming reports whether the module advertises streamed results.
func IsStreaming(a *modules.Annotations) bool {
	return a != nil && a.Streaming
}

func annotationValue(a *modules.Annotations, field func(*modules.Annotations) *bool, def bool) bool {
	if a == nil {
		return def
	}
	if v := field(a); v != nil {
		return *v
	}
	return def
}

func boolPtr(b bool) *bool {
	return &b
}
