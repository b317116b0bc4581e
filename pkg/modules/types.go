// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package modules defines the module-host collaborator surface of modmcp:
// descriptors for callable modules, the error taxonomy shared with the
// execution pipeline, the capability interfaces an executor may implement,
// and the per-call execution context handed to module code.
package modules

// Descriptor describes a callable module as published by a registry.
type Descriptor struct {
	// ID is the stable module identifier, e.g. "image.resize".
	ID string

	// Description is the human-readable summary shown in tool catalogs.
	Description string

	// InputSchema is the JSON Schema for the module's input, as a plain map.
	InputSchema map[string]any

	// OutputSchema is the JSON Schema for the module's output, if declared.
	OutputSchema map[string]any

	// Annotations carries optional behavior hints.
	Annotations *Annotations
}

// Annotations are optional behavior hints attached to a module descriptor.
// Nil pointer fields mean "not declared"; consumers apply their own defaults.
type Annotations struct {
	Title            string
	ReadOnly         *bool
	Destructive      *bool
	Idempotent       *bool
	OpenWorld        *bool
	RequiresApproval bool
	Streaming        bool
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating module arguments against the
// module's input schema.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// ElicitResult is the normalized outcome of an elicitation round-trip.
// Action is one of "accept", "decline" or "cancel"; Content carries the
// user-supplied values when the action is "accept".
type ElicitResult struct {
	Action  string
	Content map[string]any
}
