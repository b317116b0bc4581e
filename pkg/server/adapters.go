// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stacklok/modmcp/pkg/modules"
	"github.com/stacklok/modmcp/pkg/router"
)

// contextSink forwards notifications through the SDK server bound to the
// request context. The SDK resolves the client session from the context, so
// the sink itself is stateless and shared across calls.
type contextSink struct{}

func (contextSink) Send(ctx context.Context, method string, params map[string]any) error {
	srv := server.ServerFromContext(ctx)
	if srv == nil {
		return fmt.Errorf("no MCP server in context")
	}
	return srv.SendNotificationToClient(ctx, method, params)
}

// elicitationRequester is the slice of *server.MCPServer needed for
// elicitation round-trips. Narrowed to an interface for testability.
type elicitationRequester interface {
	RequestElicitation(ctx context.Context, request mcp.ElicitationRequest) (*mcp.ElicitationResult, error)
}

// sdkSession adapts the SDK's elicitation call to the router's SessionHandle.
// JSON-RPC ID correlation and session routing are handled by the SDK.
type sdkSession struct {
	requester elicitationRequester
}

func newSDKSession(requester elicitationRequester) router.SessionHandle {
	return &sdkSession{requester: requester}
}

// ElicitForm sends an elicitation request and blocks until the client
// responds or the context expires.
func (s *sdkSession) ElicitForm(
	ctx context.Context, message string, requestedSchema map[string]any,
) (*modules.ElicitResult, error) {
	result, err := s.requester.RequestElicitation(ctx, mcp.ElicitationRequest{
		Params: mcp.ElicitationParams{
			Message:         message,
			RequestedSchema: requestedSchema,
		},
	})
	if err != nil {
		return nil, err
	}

	var content map[string]any
	if result.Content != nil {
		content, _ = result.Content.(map[string]any)
	}
	return &modules.ElicitResult{
		Action:  string(result.Action),
		Content: content,
	}, nil
}
