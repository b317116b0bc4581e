// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package modules

import "context"

// Caller is the minimal executor capability: one-shot module invocation
// without an execution context. Legacy executors implement only this.
type Caller interface {
	// Call invokes the module and returns its result map.
	Call(ctx context.Context, moduleID string, args map[string]any) (map[string]any, error)
}

// ContextCaller is implemented by executors that accept a per-call
// ExecutionContext, enabling progress reporting and elicitation from module
// code. The router prefers this over Caller when both are present.
type ContextCaller interface {
	CallWithContext(ctx context.Context, moduleID string, args map[string]any, ec *ExecutionContext) (map[string]any, error)
}

// Streamer is implemented by executors that can produce a module's result
// incrementally as a lazy, finite sequence of partial-result maps.
type Streamer interface {
	// Stream starts a streamed invocation. The returned ChunkStream is not
	// restartable; callers consume it exactly once.
	Stream(ctx context.Context, moduleID string, args map[string]any, ec *ExecutionContext) (ChunkStream, error)
}

// Validator is implemented by executors that can validate arguments against
// the module's input schema without invoking it.
type Validator interface {
	Validate(ctx context.Context, moduleID string, args map[string]any) (*ValidationResult, error)
}

// ChunkStream is a lazy, finite, non-restartable sequence of partial-result
// maps produced by a streamed module invocation.
type ChunkStream interface {
	// Next returns the next chunk. It returns io.EOF when the stream is
	// exhausted, or any other error when the stream fails mid-sequence.
	Next(ctx context.Context) (map[string]any, error)
}
