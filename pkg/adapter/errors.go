// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package adapter converts between the module-host domain and the MCP
// protocol surface: error classification, schema conversion, module-ID
// normalization and annotation mapping.
package adapter

import (
	"fmt"
	"strings"

	"github.com/stacklok/modmcp/pkg/modules"
)

// ErrorEnvelope is the sanitized, protocol-neutral form of an execution
// failure. It is produced only by Classify; no other component constructs
// caller-visible error content.
type ErrorEnvelope struct {
	// Code identifies the failure class.
	Code string

	// Message is safe to show to a remote caller.
	Message string

	// Details carry structured, caller-actionable context. Nil whenever
	// Message is a generic placeholder: suppressed detail and an
	// explanatory structure never coexist.
	Details map[string]any
}

// Fixed caller-visible messages.
const (
	internalErrorMessage = "Internal error occurred"
	accessDeniedMessage  = "Access denied"
)

// internalOnlyCodes carry rich detail that encodes the module call graph
// (depth, cycles, frequency). That topology is sensitive, so these are
// reduced to the generic envelope even though they are recognized errors.
var internalOnlyCodes = map[string]struct{}{
	modules.CodeCallDepthExceeded:     {},
	modules.CodeCircularCall:          {},
	modules.CodeCallFrequencyExceeded: {},
}

// sanitizedCodes keep their code but have the message replaced: an ACL
// denial message may embed the caller's identifier.
var sanitizedCodes = map[string]struct{}{
	modules.CodeACLDenied: {},
}

// Classify converts any error raised by module execution into a sanitized
// ErrorEnvelope. It is a pure function and the single place in the system
// that decides what is safe to show a caller.
func Classify(err error) ErrorEnvelope {
	me, ok := modules.AsModuleError(err)
	if !ok {
		// Unrecognized error shape: nothing of the original may surface.
		return ErrorEnvelope{Code: modules.CodeInternal, Message: internalErrorMessage}
	}

	if _, internal := internalOnlyCodes[me.Code]; internal {
		return ErrorEnvelope{Code: me.Code, Message: internalErrorMessage}
	}

	if _, sanitize := sanitizedCodes[me.Code]; sanitize {
		return ErrorEnvelope{Code: me.Code, Message: accessDeniedMessage}
	}

	if me.Code == modules.CodeSchemaValidation {
		return ErrorEnvelope{
			Code:    me.Code,
			Message: formatValidationDetails(me),
			Details: me.Details,
		}
	}

	// Everything else is caller-actionable; pass through verbatim.
	return ErrorEnvelope{Code: me.Code, Message: me.Message, Details: me.Details}
}

// formatValidationDetails renders the structured field errors of a schema
// validation failure as "Schema validation failed: field: message; ...",
// preserving the order of the error list.
func formatValidationDetails(me *modules.ModuleError) string {
	rawErrors, _ := me.Details["errors"].([]map[string]any)
	if rawErrors == nil {
		// Details built from deserialized JSON arrive as []any.
		if anyErrors, ok := me.Details["errors"].([]any); ok {
			for _, raw := range anyErrors {
				if m, ok := raw.(map[string]any); ok {
					rawErrors = append(rawErrors, m)
				}
			}
		}
	}
	if len(rawErrors) == 0 {
		if me.Message != "" {
			return me.Message
		}
		return "Schema validation failed"
	}

	lines := make([]string, 0, len(rawErrors))
	for _, raw := range rawErrors {
		field, _ := raw["field"].(string)
		if field == "" {
			field = "unknown"
		}
		message, _ := raw["message"].(string)
		if message == "" {
			message = "invalid"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", field, message))
	}
	return "Schema validation failed: " + strings.Join(lines, "; ")
}

// FormatFieldErrors renders field errors as "field: message; field: message".
// Used by the router's pre-validation short-circuit.
func FormatFieldErrors(fieldErrors []modules.FieldError) string {
	lines := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := fe.Field
		if field == "" {
			field = "?"
		}
		message := fe.Message
		if message == "" {
			message = "invalid"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", field, message))
	}
	return strings.Join(lines, "; ")
}
