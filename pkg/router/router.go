// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package router implements the call execution pipeline between the MCP
// protocol surface and a module executor.
//
// The ExecutionRouter drives the executor, forwards progress and elicitation
// signals, accumulates streamed partial results, and converts every failure
// into a sanitized, protocol-neutral error. It holds no shared mutable state
// across calls: a shared instance is safe for unbounded concurrent invocation.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/modmcp/pkg/adapter"
	"github.com/stacklok/modmcp/pkg/auth"
	"github.com/stacklok/modmcp/pkg/logger"
	"github.com/stacklok/modmcp/pkg/modules"
	"github.com/stacklok/modmcp/pkg/telemetry"
)

// progressMethod is the notification method used for incremental updates.
const progressMethod = "notifications/progress"

// NotificationSink forwards a server-to-client notification.
// Implementations must be safe for concurrent use.
type NotificationSink interface {
	Send(ctx context.Context, method string, params map[string]any) error
}

// SessionHandle exposes the elicitation primitive of the caller's session.
type SessionHandle interface {
	ElicitForm(ctx context.Context, message string, requestedSchema map[string]any) (*modules.ElicitResult, error)
}

// CallExtra carries the optional per-call capabilities supplied by the
// protocol-facing layer. Streaming requires both ProgressToken and Sink;
// elicitation requires Session.
type CallExtra struct {
	ProgressToken any
	Sink          NotificationSink
	Session       SessionHandle
	Identity      *auth.Identity
}

// ExecutionRouter routes tool calls through the module executor pipeline.
//
// Executor capabilities are detected once at construction via type
// assertions, never per call: whether a call is dispatched synchronously or
// streamed, and whether the executor receives an ExecutionContext, is a
// property of the router instance, not of runtime failures.
type ExecutionRouter struct {
	caller    modules.Caller
	ctxCaller modules.ContextCaller
	streamer  modules.Streamer
	validator modules.Validator

	validateInputs bool
}

// Option configures an ExecutionRouter.
type Option func(*ExecutionRouter)

// WithInputValidation enables pre-execution argument validation when the
// executor exposes a validation primitive.
func WithInputValidation(enabled bool) Option {
	return func(r *ExecutionRouter) { r.validateInputs = enabled }
}

// NewExecutionRouter creates a router around the given executor. The
// executor must implement at least modules.Caller or modules.ContextCaller;
// streaming and validation capabilities are picked up when present.
func NewExecutionRouter(executor any, opts ...Option) (*ExecutionRouter, error) {
	r := &ExecutionRouter{}
	r.caller, _ = executor.(modules.Caller)
	r.ctxCaller, _ = executor.(modules.ContextCaller)
	r.streamer, _ = executor.(modules.Streamer)
	r.validator, _ = executor.(modules.Validator)

	if r.caller == nil && r.ctxCaller == nil {
		return nil, fmt.Errorf("executor implements neither Caller nor ContextCaller")
	}

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// HandleCall executes one tool call through the executor pipeline.
//
// It returns the result content, an error flag, and the call's trace ID. On
// success the content is exactly two text blocks: the serialized result and
// a {"_trace_id": ...} marker. On failure it is exactly one text block
// holding the sanitized message; no trace block is appended, so callers
// distinguish outcomes by the flag plus block count.
func (r *ExecutionRouter) HandleCall(
	ctx context.Context,
	moduleID string,
	args map[string]any,
	extra *CallExtra,
) ([]mcp.Content, bool, string) {
	logger.Debugf("Executing tool call: %s", moduleID)
	start := time.Now()

	if extra == nil {
		extra = &CallExtra{}
	}
	if extra.Identity != nil {
		ctx = auth.WithIdentity(ctx, extra.Identity)
	}

	ec := r.newExecutionContext(extra)

	content, isError := r.dispatch(ctx, moduleID, args, extra, ec)
	telemetry.RecordCall(moduleID, isError, time.Since(start))
	return content, isError, ec.TraceID
}

func (r *ExecutionRouter) dispatch(
	ctx context.Context,
	moduleID string,
	args map[string]any,
	extra *CallExtra,
	ec *modules.ExecutionContext,
) ([]mcp.Content, bool) {
	if content, isError, done := r.preValidate(ctx, moduleID, args); done {
		return content, isError
	}

	// The dispatch decision is made exactly once per call: streaming needs
	// a streaming-capable executor plus both progress token and sink.
	if r.streamer != nil && extra.ProgressToken != nil && extra.Sink != nil {
		return r.handleStream(ctx, moduleID, args, extra, ec)
	}
	return r.handleSync(ctx, moduleID, args, ec)
}

// preValidate runs optional input validation. done is true when the call
// must short-circuit with the returned content.
func (r *ExecutionRouter) preValidate(
	ctx context.Context, moduleID string, args map[string]any,
) ([]mcp.Content, bool, bool) {
	if !r.validateInputs || r.validator == nil {
		// Executors without a validation primitive skip silently.
		return nil, false, false
	}

	result, err := r.validator.Validate(ctx, moduleID, args)
	if err != nil {
		logger.Debugf("validate_inputs error for %s: %v", moduleID, err)
		return r.errorContent(moduleID, err), true, true
	}
	if !result.Valid {
		detail := adapter.FormatFieldErrors(result.Errors)
		return textContent("Validation failed: " + detail), true, true
	}
	return nil, false, false
}

func (r *ExecutionRouter) handleSync(
	ctx context.Context,
	moduleID string,
	args map[string]any,
	ec *modules.ExecutionContext,
) ([]mcp.Content, bool) {
	var result map[string]any
	var err error
	if r.ctxCaller != nil {
		result, err = r.ctxCaller.CallWithContext(ctx, moduleID, args, ec)
	} else {
		result, err = r.caller.Call(ctx, moduleID, args)
	}
	if err != nil {
		return r.errorContent(moduleID, err), true
	}
	return successContent(result, ec.TraceID), false
}

func (r *ExecutionRouter) handleStream(
	ctx context.Context,
	moduleID string,
	args map[string]any,
	extra *CallExtra,
	ec *modules.ExecutionContext,
) ([]mcp.Content, bool) {
	stream, err := r.streamer.Stream(ctx, moduleID, args, ec)
	if err != nil {
		return r.errorContent(moduleID, err), true
	}

	accumulated := NewAccumulator()
	chunkIndex := 0
	for {
		chunk, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Notifications already emitted stay emitted; the partial
			// accumulated state is discarded with the failed call.
			return r.errorContent(moduleID, err), true
		}

		r.notify(ctx, extra, map[string]any{
			"progressToken": extra.ProgressToken,
			"progress":      chunkIndex + 1,
			"total":         nil,
			"message":       encodeJSON(chunk),
		})

		accumulated.Merge(chunk)
		chunkIndex++
	}

	return successContent(accumulated.Snapshot(), ec.TraceID), false
}

// newExecutionContext builds the per-call capability bag, installing the
// progress and elicitation callbacks the caller's capabilities allow.
func (r *ExecutionRouter) newExecutionContext(extra *CallExtra) *modules.ExecutionContext {
	var opts []modules.ExecutionContextOption

	if extra.ProgressToken != nil && extra.Sink != nil {
		token := extra.ProgressToken
		sink := extra.Sink
		opts = append(opts, modules.WithProgress(
			func(ctx context.Context, progress float64, total *float64, message string) error {
				params := map[string]any{
					"progressToken": token,
					"progress":      progress,
				}
				if total != nil {
					params["total"] = *total
				} else {
					params["total"] = 0
				}
				if message != "" {
					params["message"] = message
				}
				if err := sink.Send(ctx, progressMethod, params); err != nil {
					// Module code must never observe sink failures.
					logger.Debugf("progress notification failed: %v", err)
					return nil
				}
				telemetry.RecordProgressNotification()
				return nil
			}))
	}

	if extra.Session != nil {
		session := extra.Session
		opts = append(opts, modules.WithElicit(
			func(ctx context.Context, message string, requestedSchema map[string]any) (*modules.ElicitResult, error) {
				if requestedSchema == nil {
					requestedSchema = map[string]any{}
				}
				result, err := session.ElicitForm(ctx, message, requestedSchema)
				if err != nil {
					logger.Debugf("Elicitation request failed: %v", err)
					return nil, nil
				}
				return result, nil
			}))
	}

	if extra.Identity != nil {
		opts = append(opts, modules.WithCallIdentity(extra.Identity))
	}

	return modules.NewExecutionContext(opts...)
}

// notify forwards a stream-chunk progress notification, swallowing sink
// failures so a flaky client connection cannot abort the call.
func (r *ExecutionRouter) notify(ctx context.Context, extra *CallExtra, params map[string]any) {
	if err := extra.Sink.Send(ctx, progressMethod, params); err != nil {
		logger.Debugf("progress notification failed: %v", err)
		return
	}
	telemetry.RecordProgressNotification()
}

// errorContent routes err through the error classifier. This is the only
// path by which an execution failure becomes caller-visible.
func (r *ExecutionRouter) errorContent(moduleID string, err error) []mcp.Content {
	logger.Debugf("handle_call error for %s: %v", moduleID, err)
	envelope := adapter.Classify(err)
	return textContent(envelope.Message)
}

func successContent(result map[string]any, traceID string) []mcp.Content {
	return []mcp.Content{
		mcp.NewTextContent(encodeJSON(result)),
		mcp.NewTextContent(encodeJSON(map[string]any{"_trace_id": traceID})),
	}
}

func textContent(text string) []mcp.Content {
	return []mcp.Content{mcp.NewTextContent(text)}
}

// encodeJSON serializes v, falling back to the value's string form when it
// cannot be marshaled.
func encodeJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
