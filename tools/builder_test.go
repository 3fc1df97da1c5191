package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filipexcode/AssistenteFinanceiro/core"
)

func TestBuilder_HandlerFunc(t *testing.T) {
	tool := New("echo").
		Description("Echo the input").
		Schema(ObjectSchema(map[string]interface{}{
			"text": StringProperty("Text to echo"),
		}, "text")).
		HandlerFunc(func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var params struct {
				Text string `json:"text"`
			}
			if err := Decode(input, &params); err != nil {
				return nil, err
			}
			if params.Text == "" {
				return nil, errors.New("text is required")
			}
			return map[string]string{"text": params.Text}, nil
		}).
		Build()

	assert.Equal(t, "echo", tool.Name())
	assert.Equal(t, "Echo the input", tool.Description())
	assert.Equal(t, []string{"text"}, tool.Schema()["required"])

	result, err := tool.Execute(context.Background(), &core.ToolParams{Input: json.RawMessage(`{"text":"hi"}`)})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, map[string]string{"text": "hi"}, result.Data)

	result, err = tool.Execute(context.Background(), &core.ToolParams{Input: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "text is required", result.Error)
}

func TestBuilder_Handler(t *testing.T) {
	tool := New("whoami").
		Handler(func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
			return &core.ToolResult{Success: true, Data: params.UserID}, nil
		}).
		Build()

	result, err := tool.Execute(context.Background(), &core.ToolParams{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", result.Data)
	assert.Equal(t, "object", tool.Schema()["type"])
}

func TestBuilder_BuildWithoutHandlerPanics(t *testing.T) {
	assert.Panics(t, func() { New("broken").Build() })
}

func TestSchemaHelpers(t *testing.T) {
	schema := ObjectSchema(map[string]interface{}{
		"tags":  ArrayProperty("Tags", StringProperty("A tag")),
		"level": StringEnumProperty("Level", "a", "b"),
		"on":    BooleanProperty("Enabled"),
	})
	_, hasRequired := schema["required"]
	assert.False(t, hasRequired)

	props := schema["properties"].(map[string]interface{})
	assert.Equal(t, "array", props["tags"].(map[string]interface{})["type"])
	assert.Equal(t, []string{"a", "b"}, props["level"].(map[string]interface{})["enum"])
	assert.Equal(t, "boolean", props["on"].(map[string]interface{})["type"])
}
