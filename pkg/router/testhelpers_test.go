// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"context"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/modmcp/pkg/modules"
)

// fakeExecutor is a configurable executor double. Which capability
// interfaces it satisfies is controlled by wrapping it (see below).
type fakeExecutor struct {
	mu sync.Mutex

	callFn   func(ctx context.Context, moduleID string, args map[string]any, ec *modules.ExecutionContext) (map[string]any, error)
	streamFn func(ctx context.Context, moduleID string, args map[string]any, ec *modules.ExecutionContext) (modules.ChunkStream, error)
	validate func(ctx context.Context, moduleID string, args map[string]any) (*modules.ValidationResult, error)

	syncCalls    int
	ctxCalls     int
	streamCalls  int
	lastExecCtx  *modules.ExecutionContext
	lastCallArgs map[string]any
}

// contextExecutor exposes CallWithContext (+ optional Stream/Validate).
type contextExecutor struct{ *fakeExecutor }

func (e *contextExecutor) CallWithContext(
	ctx context.Context, moduleID string, args map[string]any, ec *modules.ExecutionContext,
) (map[string]any, error) {
	e.mu.Lock()
	e.ctxCalls++
	e.lastExecCtx = ec
	e.lastCallArgs = args
	e.mu.Unlock()
	return e.callFn(ctx, moduleID, args, ec)
}

// basicExecutor exposes only the legacy Call primitive.
type basicExecutor struct{ *fakeExecutor }

func (e *basicExecutor) Call(ctx context.Context, moduleID string, args map[string]any) (map[string]any, error) {
	e.mu.Lock()
	e.syncCalls++
	e.lastCallArgs = args
	e.mu.Unlock()
	return e.callFn(ctx, moduleID, args, nil)
}

// streamingExecutor exposes CallWithContext and Stream.
type streamingExecutor struct{ contextExecutor }

func (e *streamingExecutor) Stream(
	ctx context.Context, moduleID string, args map[string]any, ec *modules.ExecutionContext,
) (modules.ChunkStream, error) {
	e.mu.Lock()
	e.streamCalls++
	e.lastExecCtx = ec
	e.mu.Unlock()
	return e.streamFn(ctx, moduleID, args, ec)
}

// validatingExecutor exposes CallWithContext and Validate.
type validatingExecutor struct{ contextExecutor }

func (e *validatingExecutor) Validate(
	ctx context.Context, moduleID string, args map[string]any,
) (*modules.ValidationResult, error) {
	return e.validate(ctx, moduleID, args)
}

// fullExecutor exposes CallWithContext, Stream and Validate.
type fullExecutor struct{ streamingExecutor }

func (e *fullExecutor) Validate(
	ctx context.Context, moduleID string, args map[string]any,
) (*modules.ValidationResult, error) {
	return e.validate(ctx, moduleID, args)
}

// recordingSink captures every notification it receives, in order.
type recordingSink struct {
	mu      sync.Mutex
	failing bool
	methods []string
	params  []map[string]any
}

func (s *recordingSink) Send(_ context.Context, method string, params map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return context.DeadlineExceeded
	}
	s.methods = append(s.methods, method)
	s.params = append(s.params, params)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.params)
}

// fakeSession answers elicitation requests with a canned result or error.
type fakeSession struct {
	result *modules.ElicitResult
	err    error
}

func (s *fakeSession) ElicitForm(
	_ context.Context, _ string, _ map[string]any,
) (*modules.ElicitResult, error) {
	return s.result, s.err
}

func textOf(t *testing.T, block mcp.Content) string {
	t.Helper()
	tc, ok := block.(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", block)
	return tc.Text
}
