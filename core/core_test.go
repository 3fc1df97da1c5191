package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*ExecuteResponse)
	return resp, args.Error(1)
}

func testDefinition() ToolDefinition {
	return ToolDefinition{
		ToolName:        "budget_analyzer",
		ToolDescription: "Analyze a budget",
		InputSchema:     map[string]interface{}{"type": "object"},
	}
}

func TestExecutorTool_ForwardsRequest(t *testing.T) {
	exec := new(mockExecutor)
	input := json.RawMessage(`{"income":5000}`)
	exec.On("Execute", mock.Anything, &ExecuteRequest{
		UserID:    "u1",
		Tool:      "budget_analyzer",
		Input:     input,
		RequestID: "r1",
	}).Return(&ExecuteResponse{Success: true, Data: json.RawMessage(`{"savings":2000}`)}, nil)

	tool := NewExecutorTool(testDefinition(), exec)
	assert.Equal(t, "budget_analyzer", tool.Name())
	assert.Equal(t, "Analyze a budget", tool.Description())
	assert.Equal(t, "object", tool.Schema()["type"])

	result, err := tool.Execute(context.Background(), &ToolParams{UserID: "u1", RequestID: "r1", Input: input})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.JSONEq(t, `{"savings":2000}`, string(result.Data.(json.RawMessage)))
	exec.AssertExpectations(t)
}

func TestExecutorTool_FailedResponse(t *testing.T) {
	exec := new(mockExecutor)
	exec.On("Execute", mock.Anything, mock.Anything).Return(&ExecuteResponse{Success: false, Error: "HTTP 400: bad"}, nil)

	result, err := NewExecutorTool(testDefinition(), exec).Execute(context.Background(), &ToolParams{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "HTTP 400: bad", result.Error)
}

func TestExecutorTool_TransportError(t *testing.T) {
	exec := new(mockExecutor)
	exec.On("Execute", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := NewExecutorTool(testDefinition(), exec).Execute(context.Background(), &ToolParams{})
	assert.ErrorContains(t, err, "execute budget_analyzer")
	assert.ErrorContains(t, err, "connection refused")
}

func TestMessageText(t *testing.T) {
	msg := NewAssistantMessageWithBlocks([]ContentBlock{
		{Type: BlockText, Text: "Let me check. "},
		{Type: BlockToolUse, ToolUseID: "t1", ToolName: "debt_manager"},
		{Type: BlockText, Text: "Done."},
	})
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "Let me check. Done.", msg.Text())
	assert.Equal(t, "hi", NewUserMessage("hi").Text())
}

func TestNewToolResultMessage(t *testing.T) {
	msg := NewToolResultMessage([]ToolResultContent{
		{ToolUseID: "a", Content: "{}"},
		{ToolUseID: "b", Content: "boom", IsError: true},
	})
	assert.Equal(t, RoleUser, msg.Role)
	require.Len(t, msg.Blocks, 2)
	assert.Equal(t, BlockToolResult, msg.Blocks[1].Type)
	assert.True(t, msg.Blocks[1].IsError)
	assert.Empty(t, msg.Text())
}
