// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package modules

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ModuleFunc is the handler for a locally hosted module.
type ModuleFunc func(ctx context.Context, args map[string]any, ec *ExecutionContext) (map[string]any, error)

// StreamFunc is the streaming handler for a locally hosted module. Each
// returned chunk is a partial-result map; the final result is the shallow
// last-write-wins merge over all chunks.
type StreamFunc func(ctx context.Context, args map[string]any, ec *ExecutionContext) (ChunkStream, error)

// LocalModule couples a descriptor with its handlers for local hosting.
type LocalModule struct {
	Descriptor *Descriptor
	Handler    ModuleFunc
	// StreamHandler is optional; modules without one are streamed as a
	// single chunk produced by Handler.
	StreamHandler StreamFunc
}

// LocalExecutor hosts modules in-process. It implements ContextCaller,
// Streamer and Validator, which makes it the fully capable executor variant
// from the router's point of view.
type LocalExecutor struct {
	registry *InMemoryRegistry

	mu      sync.RWMutex
	handler map[string]*LocalModule
}

// NewLocalExecutor creates an executor backed by the given registry.
func NewLocalExecutor(registry *InMemoryRegistry) *LocalExecutor {
	return &LocalExecutor{
		registry: registry,
		handler:  make(map[string]*LocalModule),
	}
}

// Registry returns the registry this executor dispatches against.
func (e *LocalExecutor) Registry() *InMemoryRegistry {
	return e.registry
}

// AddModule registers a local module and publishes its descriptor.
func (e *LocalExecutor) AddModule(m *LocalModule) error {
	if m == nil || m.Descriptor == nil || m.Descriptor.ID == "" {
		return fmt.Errorf("local module requires a descriptor with an ID")
	}
	if m.Handler == nil {
		return fmt.Errorf("local module %s requires a handler", m.Descriptor.ID)
	}

	e.mu.Lock()
	e.handler[m.Descriptor.ID] = m
	e.mu.Unlock()

	e.registry.Register(m.Descriptor)
	return nil
}

// RemoveModule unregisters a local module.
func (e *LocalExecutor) RemoveModule(moduleID string) {
	e.mu.Lock()
	delete(e.handler, moduleID)
	e.mu.Unlock()

	e.registry.Unregister(moduleID)
}

func (e *LocalExecutor) lookup(moduleID string) (*LocalModule, error) {
	e.mu.RLock()
	m := e.handler[moduleID]
	e.mu.RUnlock()
	if m == nil {
		return nil, NewModuleError(CodeModuleNotFound, fmt.Sprintf("module not found: %s", moduleID), nil)
	}
	return m, nil
}

// CallWithContext invokes a module with a per-call execution context.
func (e *LocalExecutor) CallWithContext(
	ctx context.Context, moduleID string, args map[string]any, ec *ExecutionContext,
) (map[string]any, error) {
	m, err := e.lookup(moduleID)
	if err != nil {
		return nil, err
	}
	return m.Handler(ctx, args, ec)
}

// Call invokes a module without an execution context.
func (e *LocalExecutor) Call(ctx context.Context, moduleID string, args map[string]any) (map[string]any, error) {
	return e.CallWithContext(ctx, moduleID, args, nil)
}

// Stream starts a streamed invocation. Modules without a stream handler are
// adapted to a single-chunk stream.
func (e *LocalExecutor) Stream(
	ctx context.Context, moduleID string, args map[string]any, ec *ExecutionContext,
) (ChunkStream, error) {
	m, err := e.lookup(moduleID)
	if err != nil {
		return nil, err
	}
	if m.StreamHandler != nil {
		return m.StreamHandler(ctx, args, ec)
	}

	result, err := m.Handler(ctx, args, ec)
	if err != nil {
		return nil, err
	}
	return NewSliceStream(result), nil
}

// Validate checks args for the required properties declared by the module's
// input schema. It does not perform full JSON Schema validation; the module
// host owns that concern.
func (e *LocalExecutor) Validate(_ context.Context, moduleID string, args map[string]any) (*ValidationResult, error) {
	m, err := e.lookup(moduleID)
	if err != nil {
		return nil, err
	}

	var fieldErrors []FieldError
	if schema := m.Descriptor.InputSchema; schema != nil {
		if required, ok := schema["required"].([]any); ok {
			for _, raw := range required {
				field, ok := raw.(string)
				if !ok {
					continue
				}
				if _, present := args[field]; !present {
					fieldErrors = append(fieldErrors, FieldError{Field: field, Message: "required"})
				}
			}
		}
	}

	return &ValidationResult{Valid: len(fieldErrors) == 0, Errors: fieldErrors}, nil
}

// sliceStream replays a fixed set of chunks, then io.EOF.
type sliceStream struct {
	chunks []map[string]any
	idx    int
}

// NewSliceStream builds a ChunkStream over a fixed chunk list.
func NewSliceStream(chunks ...map[string]any) ChunkStream {
	return &sliceStream{chunks: chunks}
}

// Next implements ChunkStream.
func (s *sliceStream) Next(_ context.Context) (map[string]any, error) {
	if s.idx >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.idx]
	s.idx++
	return chunk, nil
}
