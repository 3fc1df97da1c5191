package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// ExecuteRequest asks an executor to run a tool by name.
type ExecuteRequest struct {
	UserID    string          `json:"user_id"`
	Tool      string          `json:"tool"`
	Input     json.RawMessage `json:"input"`
	RequestID string          `json:"request_id"`
}

// ExecuteResponse is the executor's answer. Data holds the tool's result
// already encoded as JSON.
type ExecuteResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ToolExecutor runs tools somewhere other than the caller, in-process or
// over the network.
type ToolExecutor interface {
	Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error)
}

// executorTool adapts a ToolDefinition to the Tool interface by delegating
// to a ToolExecutor.
type executorTool struct {
	def      ToolDefinition
	executor ToolExecutor
}

// NewExecutorTool returns a Tool that forwards every call to executor.
func NewExecutorTool(def ToolDefinition, executor ToolExecutor) Tool {
	return &executorTool{def: def, executor: executor}
}

func (t *executorTool) Name() string                   { return t.def.ToolName }
func (t *executorTool) Description() string            { return t.def.ToolDescription }
func (t *executorTool) Schema() map[string]interface{} { return t.def.InputSchema }

func (t *executorTool) Execute(ctx context.Context, params *ToolParams) (*ToolResult, error) {
	resp, err := t.executor.Execute(ctx, &ExecuteRequest{
		UserID:    params.UserID,
		Tool:      t.def.ToolName,
		Input:     params.Input,
		RequestID: params.RequestID,
	})
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", t.def.ToolName, err)
	}
	if !resp.Success {
		return &ToolResult{Success: false, Error: resp.Error}, nil
	}
	return &ToolResult{Success: true, Data: resp.Data}, nil
}
