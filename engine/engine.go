package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/filipexcode/AssistenteFinanceiro/core"
)

// DefaultMaxTurns bounds the model calls of a single Run.
const DefaultMaxTurns = 8

// ErrUnknownTool is returned when the model or a client names a tool that
// is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// OutputType tags the outcome of a Run.
type OutputType string

const (
	OutputComplete OutputType = "complete"
	OutputError    OutputType = "error"
)

// Input is one user turn.
type Input struct {
	UserID         string
	ConversationID string
	UserMessage    string
	// History holds the earlier messages, oldest first. It is not modified.
	History      []core.Message
	SystemPrompt string
	Model        string
	MaxTokens    int64
	// MaxTurns overrides the engine default when positive.
	MaxTurns int
	// StreamCallback receives text chunks as they arrive and a final call
	// with done set.
	StreamCallback func(chunk string, done bool)
}

// Output is the outcome of a Run.
type Output struct {
	Type OutputType
	// Text is the final assistant answer.
	Text string
	// Messages are the messages this turn added to the conversation: the
	// user message, tool exchanges and the final answer.
	Messages   []core.Message
	ToolsUsed  []string
	TokensUsed TokenUsage
	Error      error
}

// Engine runs the tool-calling loop between a model and the registered
// tools.
type Engine struct {
	model    Model
	registry *ToolRegistry
	maxTurns int
	log      *logrus.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithMaxTurns sets the default turn limit.
func WithMaxTurns(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTurns = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an engine over model and registry.
func NewEngine(model Model, registry *ToolRegistry, opts ...Option) *Engine {
	e := &Engine{
		model:    model,
		registry: registry,
		maxTurns: DefaultMaxTurns,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's tool registry.
func (e *Engine) Registry() *ToolRegistry {
	return e.registry
}

// Run sends the user message to the model and executes every tool it asks
// for, feeding results back until it answers without tools. Model failures
// are returned as errors; running out of turns yields an OutputError.
func (e *Engine) Run(ctx context.Context, in *Input) (*Output, error) {
	messages := make([]core.Message, 0, len(in.History)+4)
	messages = append(messages, in.History...)
	messages = append(messages, core.NewUserMessage(in.UserMessage))
	start := len(in.History)

	maxTurns := e.maxTurns
	if in.MaxTurns > 0 {
		maxTurns = in.MaxTurns
	}

	var onText func(string)
	if in.StreamCallback != nil {
		onText = func(chunk string) { in.StreamCallback(chunk, false) }
	}

	out := &Output{}
	for turn := 0; turn < maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := e.model.Complete(ctx, &Request{
			Model:     in.Model,
			System:    in.SystemPrompt,
			MaxTokens: in.MaxTokens,
			Messages:  messages,
			Tools:     e.registry.Definitions(),
		}, onText)
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}
		out.TokensUsed = out.TokensUsed.Add(resp.Usage)

		assistant := core.NewAssistantMessageWithBlocks(resp.Blocks)
		messages = append(messages, assistant)

		var uses []core.ContentBlock
		for _, block := range resp.Blocks {
			if block.Type == core.BlockToolUse {
				uses = append(uses, block)
			}
		}
		if resp.StopReason != StopToolUse || len(uses) == 0 {
			if in.StreamCallback != nil {
				in.StreamCallback("", true)
			}
			out.Type = OutputComplete
			out.Text = assistant.Text()
			out.Messages = messages[start:]
			return out, nil
		}

		results := make([]core.ToolResultContent, 0, len(uses))
		for _, use := range uses {
			results = append(results, e.runTool(ctx, in, use))
			out.ToolsUsed = append(out.ToolsUsed, use.ToolName)
		}
		messages = append(messages, core.NewToolResultMessage(results))
	}

	out.Type = OutputError
	out.Error = fmt.Errorf("no final answer after %d model turns", maxTurns)
	out.Messages = messages[start:]
	return out, nil
}

func (e *Engine) runTool(ctx context.Context, in *Input, use core.ContentBlock) core.ToolResultContent {
	entry := e.log.WithFields(logrus.Fields{
		"tool":            use.ToolName,
		"user_id":         in.UserID,
		"conversation_id": in.ConversationID,
	})

	result, err := e.ExecuteTool(ctx, in.UserID, use.ToolName, use.Input, use.ToolUseID)
	if err != nil {
		entry.WithError(err).Warn("Tool execution failed")
		return core.ToolResultContent{ToolUseID: use.ToolUseID, Content: "Error: " + err.Error(), IsError: true}
	}
	if !result.Success {
		entry.WithField("error", result.Error).Info("Tool returned an error")
		return core.ToolResultContent{ToolUseID: use.ToolUseID, Content: result.Error, IsError: true}
	}

	data, err := json.Marshal(result.Data)
	if err != nil {
		entry.WithError(err).Warn("Failed to encode tool result")
		return core.ToolResultContent{ToolUseID: use.ToolUseID, Content: "Error: " + err.Error(), IsError: true}
	}
	entry.Debug("Tool executed")
	return core.ToolResultContent{ToolUseID: use.ToolUseID, Content: string(data)}
}

// ExecuteTool runs a registered tool by name.
func (e *Engine) ExecuteTool(ctx context.Context, userID, name string, input json.RawMessage, requestID string) (*core.ToolResult, error) {
	tool, ok := e.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return tool.Execute(ctx, &core.ToolParams{
		UserID:    userID,
		RequestID: requestID,
		Input:     input,
	})
}
