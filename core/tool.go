// Package core defines the types shared by tools, executors and the agent
// engine.
package core

import (
	"context"
	"encoding/json"
)

// Tool is a capability the agent can invoke.
type Tool interface {
	Name() string
	Description() string
	// Schema is the JSON schema of the tool input.
	Schema() map[string]interface{}
	Execute(ctx context.Context, params *ToolParams) (*ToolResult, error)
}

// ToolParams carries a single tool invocation.
type ToolParams struct {
	UserID    string
	RequestID string
	Input     json.RawMessage
}

// ToolResult is what a tool hands back to the agent. A failed result is
// still a normal return: the model reads Error and can react to it.
type ToolResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ToolDefinition describes a tool without binding it to an implementation.
type ToolDefinition struct {
	ToolName        string                 `json:"name"`
	ToolDescription string                 `json:"description"`
	InputSchema     map[string]interface{} `json:"input_schema"`
}
