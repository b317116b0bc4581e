// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stacklok/modmcp/pkg/adapter"
	"github.com/stacklok/modmcp/pkg/auth"
	"github.com/stacklok/modmcp/pkg/logger"
	"github.com/stacklok/modmcp/pkg/modules"
	"github.com/stacklok/modmcp/pkg/router"
)

// ToolRegistrar is the slice of *server.MCPServer the listener mutates.
type ToolRegistrar interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
	DeleteTools(names ...string)
}

// RegistryListener mirrors the module registry into the MCP tool catalog.
//
// It subscribes to register/unregister events once, on Start. The registry
// offers no unsubscribe, so Stop gates the callbacks instead: after Stop
// every event is a silent no-op. Start after Stop resumes mirroring.
type RegistryListener struct {
	registry  modules.Registry
	registrar ToolRegistrar
	router    *router.ExecutionRouter
	session   router.SessionHandle

	mu         sync.Mutex
	active     bool
	subscribed bool
	tools      map[string]mcp.Tool
}

// NewRegistryListener creates a listener bridging the registry to the given
// tool registrar. session may be nil when the transport cannot elicit.
func NewRegistryListener(
	registry modules.Registry,
	registrar ToolRegistrar,
	rt *router.ExecutionRouter,
	session router.SessionHandle,
) *RegistryListener {
	return &RegistryListener{
		registry:  registry,
		registrar: registrar,
		router:    rt,
		session:   session,
		tools:     make(map[string]mcp.Tool),
	}
}

// Start registers all currently known modules and begins mirroring registry
// events. Calling Start on an active listener is a no-op.
func (l *RegistryListener) Start() {
	l.mu.Lock()
	if l.active {
		l.mu.Unlock()
		return
	}
	l.active = true
	subscribe := !l.subscribed
	l.subscribed = true
	l.mu.Unlock()

	if subscribe {
		l.registry.On(modules.EventRegister, l.handleRegister)
		l.registry.On(modules.EventUnregister, l.handleUnregister)
	}

	for _, id := range l.registry.ListIDs() {
		l.handleRegister(id)
	}
}

// Stop silences event handling. Already-registered tools stay registered;
// the listener just stops tracking registry changes.
func (l *RegistryListener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = false
}

// Tools returns a copy of the currently mirrored tool definitions, keyed by
// tool name.
func (l *RegistryListener) Tools() map[string]mcp.Tool {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]mcp.Tool, len(l.tools))
	for name, tool := range l.tools {
		out[name] = tool
	}
	return out
}

func (l *RegistryListener) handleRegister(moduleID string) {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()
	if !active {
		return
	}

	d := l.registry.GetDefinition(moduleID)
	if d == nil {
		logger.Warnf("Module %s registered but has no definition, skipping", moduleID)
		return
	}

	tool, err := BuildTool(d)
	if err != nil {
		logger.Warnf("Failed to build tool for module %s: %v", moduleID, err)
		return
	}

	l.registrar.AddTool(tool, l.toolHandler(moduleID))
	if adder, ok := l.registrar.(resourceAdder); ok {
		docResource, docHandler := BuildDocResource(d)
		adder.AddResource(docResource, docHandler)
	}

	l.mu.Lock()
	l.tools[tool.Name] = tool
	l.mu.Unlock()
	logger.Debugf("Registered tool %s for module %s", tool.Name, moduleID)
}

func (l *RegistryListener) handleUnregister(moduleID string) {
	name, err := adapter.NormalizeModuleID(moduleID)
	if err != nil {
		return
	}

	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}
	delete(l.tools, name)
	l.mu.Unlock()

	l.registrar.DeleteTools(name)
	logger.Debugf("Unregistered tool %s for module %s", name, moduleID)
}

// resourceAdder is satisfied by *server.MCPServer; registrars that cannot
// publish resources simply skip documentation.
type resourceAdder interface {
	AddResource(resource mcp.Resource, handler server.ResourceHandlerFunc)
}

// toolHandler bridges one tool's invocations into the execution router.
func (l *RegistryListener) toolHandler(moduleID string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)

		extra := &router.CallExtra{
			Sink:    contextSink{},
			Session: l.session,
		}
		if request.Params.Meta != nil {
			extra.ProgressToken = request.Params.Meta.ProgressToken
		}
		if identity, ok := auth.IdentityFromContext(ctx); ok {
			extra.Identity = identity
		}

		content, isError, _ := l.router.HandleCall(ctx, moduleID, args, extra)
		return &mcp.CallToolResult{
			Content: content,
			IsError: isError,
		}, nil
	}
}
