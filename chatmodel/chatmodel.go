// Package chatmodel abstracts the reasoning-model backends behind one
// tool-aware completion interface, so the conversation loop never touches
// vendor SDK types.
package chatmodel

import (
	"context"

	"github.com/niloybiswas/toolhost/provider"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// Message is one conversation turn. Assistant messages may carry tool
// calls; tool messages carry the result of exactly one call.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolCall

	// ToolCallID and ToolName identify which call a RoleTool message answers.
	ToolCallID string
	ToolName   string
}

// Request is a completion request: conversation so far plus the merged
// tool catalog the model may draw from.
type Request struct {
	System      string
	Messages    []Message
	Tools       []provider.ToolDescriptor
	Temperature float64
}

// Response is the model's reply: either final text or tool-call requests
// (a reply carrying tool calls is not final).
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Model is a tool-capable chat completion backend.
type Model interface {
	// Name identifies the backend and model, for logging.
	Name() string

	// Complete runs one completion over the full request.
	Complete(ctx context.Context, req Request) (*Response, error)
}
