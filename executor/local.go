package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filipexcode/AssistenteFinanceiro/core"
)

// ToolLookup finds tools by name. *engine.ToolRegistry satisfies it.
type ToolLookup interface {
	Get(name string) (core.Tool, bool)
}

// LocalExecutor implements ToolExecutor by running tools in process.
type LocalExecutor struct {
	tools ToolLookup
}

// NewLocalExecutor creates an executor over tools.
func NewLocalExecutor(tools ToolLookup) *LocalExecutor {
	return &LocalExecutor{tools: tools}
}

// Execute runs the named tool and encodes its data as JSON.
func (e *LocalExecutor) Execute(ctx context.Context, req *core.ExecuteRequest) (*core.ExecuteResponse, error) {
	tool, ok := e.tools.Get(req.Tool)
	if !ok {
		return &core.ExecuteResponse{Success: false, Error: fmt.Sprintf("unknown tool: %s", req.Tool)}, nil
	}

	result, err := tool.Execute(ctx, &core.ToolParams{
		UserID:    req.UserID,
		RequestID: req.RequestID,
		Input:     req.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", req.Tool, err)
	}
	if !result.Success {
		return &core.ExecuteResponse{Success: false, Error: result.Error}, nil
	}

	data, err := json.Marshal(result.Data)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", req.Tool, err)
	}
	return &core.ExecuteResponse{Success: true, Data: data}, nil
}
