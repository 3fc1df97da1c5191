package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/filipexcode/AssistenteFinanceiro/core"
)

// DefaultModel is the Claude model used when none is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// DefaultMaxTokens bounds a single model response.
const DefaultMaxTokens = 4096

// AnthropicModel talks to Claude through the streaming Messages API.
type AnthropicModel struct {
	client anthropic.Client
}

// NewAnthropicModel creates a model client. An empty apiKey falls back to
// the ANTHROPIC_API_KEY environment variable read by the SDK.
func NewAnthropicModel(apiKey string, opts ...option.RequestOption) *AnthropicModel {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &AnthropicModel{client: anthropic.NewClient(opts...)}
}

// Complete streams one response, forwarding text deltas to onText.
func (m *AnthropicModel) Complete(ctx context.Context, req *Request, onText func(string)) (*Response, error) {
	params, err := toAPIParams(req)
	if err != nil {
		return nil, err
	}

	stream := m.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, fmt.Errorf("failed to accumulate stream: %w", err)
		}
		if onText == nil {
			continue
		}
		if delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
			if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
				onText(text.Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic stream: %w", err)
	}

	return fromAPIMessage(&message), nil
}

func toAPIParams(req *Request) (anthropic.MessageNewParams, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		blocks, err := toAPIBlocks(msg.Blocks)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		if len(blocks) == 0 {
			continue
		}
		switch msg.Role {
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		default:
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  messages,
		Tools:     toAPITools(req.Tools),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return params, nil
}

func toAPIBlocks(blocks []core.ContentBlock) ([]anthropic.ContentBlockParamUnion, error) {
	out := make([]anthropic.ContentBlockParamUnion, 0, len(blocks))
	for _, block := range blocks {
		switch block.Type {
		case core.BlockText:
			if block.Text != "" {
				out = append(out, anthropic.NewTextBlock(block.Text))
			}
		case core.BlockToolUse:
			input := block.Input
			if len(input) == 0 {
				input = json.RawMessage("{}")
			}
			out = append(out, anthropic.NewToolUseBlock(block.ToolUseID, input, block.ToolName))
		case core.BlockToolResult:
			out = append(out, anthropic.NewToolResultBlock(block.ToolUseID, block.Content, block.IsError))
		default:
			return nil, fmt.Errorf("unsupported content block %q", block.Type)
		}
	}
	return out, nil
}

func toAPITools(defs []core.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		schema := anthropic.ToolInputSchemaParam{Properties: def.InputSchema["properties"]}
		if required, ok := def.InputSchema["required"].([]string); ok {
			schema.Required = required
		}
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.ToolName,
				Description: anthropic.String(def.ToolDescription),
				InputSchema: schema,
			},
		})
	}
	return tools
}

func fromAPIMessage(message *anthropic.Message) *Response {
	resp := &Response{
		StopReason: StopReason(message.StopReason),
		Usage: TokenUsage{
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
		},
	}
	for _, block := range message.Content {
		switch block.Type {
		case "text":
			resp.Blocks = append(resp.Blocks, core.ContentBlock{Type: core.BlockText, Text: block.Text})
		case "tool_use":
			resp.Blocks = append(resp.Blocks, core.ContentBlock{
				Type:      core.BlockToolUse,
				ToolUseID: block.ID,
				ToolName:  block.Name,
				Input:     block.Input,
			})
		}
	}
	return resp
}
