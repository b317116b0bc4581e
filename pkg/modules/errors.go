// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package modules

import (
	"errors"
	"fmt"
)

// Error codes raised by module execution. These form the taxonomy the error
// classifier in pkg/adapter keys its sanitization policy on.
const (
	// CodeInternal is the generic code for unexpected failures.
	CodeInternal = "INTERNAL_ERROR"

	// CodeModuleNotFound indicates the target module does not exist.
	CodeModuleNotFound = "MODULE_NOT_FOUND"

	// CodeSchemaValidation indicates the arguments failed schema validation.
	// Details carry an "errors" list of field/message pairs.
	CodeSchemaValidation = "SCHEMA_VALIDATION_ERROR"

	// CodeACLDenied indicates the caller is not permitted to invoke the module.
	// The message may embed a caller identifier.
	CodeACLDenied = "ACL_DENIED"

	// CodeCallDepthExceeded indicates nested module calls exceeded the depth limit.
	CodeCallDepthExceeded = "CALL_DEPTH_EXCEEDED"

	// CodeCircularCall indicates a cycle was detected in the module call chain.
	CodeCircularCall = "CIRCULAR_CALL"

	// CodeCallFrequencyExceeded indicates the per-module call rate limit was hit.
	CodeCallFrequencyExceeded = "CALL_FREQUENCY_EXCEEDED"

	// CodeTimeout indicates module execution exceeded its deadline.
	CodeTimeout = "TIMEOUT"
)

// ModuleError is the structured error raised by module execution.
// Code identifies the failure class, Message is the raw (possibly sensitive)
// description and Details carry structured context. Raw module errors must
// never reach a caller unclassified; see pkg/adapter.
type ModuleError struct {
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ModuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewModuleError creates a ModuleError with the given code and message.
func NewModuleError(code, message string, details map[string]any) *ModuleError {
	return &ModuleError{Code: code, Message: message, Details: details}
}

// NewValidationError builds a SCHEMA_VALIDATION_ERROR from field-level failures.
func NewValidationError(fieldErrors []FieldError) *ModuleError {
	errs := make([]map[string]any, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		errs = append(errs, map[string]any{"field": fe.Field, "message": fe.Message})
	}
	return &ModuleError{
		Code:    CodeSchemaValidation,
		Message: "schema validation failed",
		Details: map[string]any{"errors": errs},
	}
}

// AsModuleError unwraps err into a *ModuleError if it carries one.
func AsModuleError(err error) (*ModuleError, bool) {
	var me *ModuleError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
