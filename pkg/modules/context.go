// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package modules

import (
	"context"

	"github.com/google/uuid"
)

// ProgressFunc forwards a progress report to the remote caller.
// total is nil when the module does not know the amount of work ahead.
type ProgressFunc func(ctx context.Context, progress float64, total *float64, message string) error

// ElicitFunc asks the remote caller for structured input mid-execution.
// It returns nil (and no error) when the caller declined to answer or the
// round-trip failed.
type ElicitFunc func(ctx context.Context, message string, requestedSchema map[string]any) (*ElicitResult, error)

// ExecutionContext is the per-call capability bag passed into executor
// invocation. It carries a unique trace ID plus optional progress and
// elicitation callbacks installed by the execution router.
//
// A context is created fresh for each call and discarded at call end; it is
// never shared across calls.
type ExecutionContext struct {
	// TraceID uniquely identifies one call. It is surfaced to the caller
	// alongside the result, successful or not.
	TraceID string

	// Identity is the authenticated principal for this call, if any.
	Identity any

	progress ProgressFunc
	elicit   ElicitFunc
}

// ExecutionContextOption configures a new ExecutionContext.
type ExecutionContextOption func(*ExecutionContext)

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) ExecutionContextOption {
	return func(ec *ExecutionContext) { ec.progress = fn }
}

// WithElicit installs an elicitation callback.
func WithElicit(fn ElicitFunc) ExecutionContextOption {
	return func(ec *ExecutionContext) { ec.elicit = fn }
}

// WithCallIdentity attaches the authenticated identity to the context.
func WithCallIdentity(identity any) ExecutionContextOption {
	return func(ec *ExecutionContext) { ec.Identity = identity }
}

// NewExecutionContext creates an ExecutionContext with a fresh trace ID.
func NewExecutionContext(opts ...ExecutionContextOption) *ExecutionContext {
	ec := &ExecutionContext{TraceID: uuid.NewString()}
	for _, opt := range opts {
		opt(ec)
	}
	return ec
}

// ReportProgress reports execution progress to the remote caller.
// It is a silent no-op when the call was not given streaming capabilities
// (no callback installed) or when the receiver is nil, so module code can
// call it unconditionally on every execution path.
func (ec *ExecutionContext) ReportProgress(ctx context.Context, progress float64, total *float64, message string) {
	if ec == nil || ec.progress == nil {
		return
	}
	// Callback failures are the sink's problem, never the module's.
	_ = ec.progress(ctx, progress, total, message)
}

// Elicit asks the remote caller for structured input via the elicitation
// protocol. Returns nil when the call has no session capability or the
// round-trip fails.
func (ec *ExecutionContext) Elicit(ctx context.Context, message string, requestedSchema map[string]any) (*ElicitResult, error) {
	if ec == nil || ec.elicit == nil {
		return nil, nil
	}
	return ec.elicit(ctx, message, requestedSchema)
}

// CanElicit reports whether an elicitation callback is installed.
func (ec *ExecutionContext) CanElicit() bool {
	return ec != nil && ec.elicit != nil
}
