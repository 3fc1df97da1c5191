package engine

import (
	"context"

	"github.com/filipexcode/AssistenteFinanceiro/core"
)

// StopReason says why the model stopped generating.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
)

// TokenUsage counts the tokens spent on a request.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// TotalTokens returns input plus output tokens.
func (u TokenUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

// Add returns the sum of two usages.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// Request is one call to a language model.
type Request struct {
	Model     string
	System    string
	MaxTokens int64
	Messages  []core.Message
	Tools     []core.ToolDefinition
}

// Response is the model's answer: text and tool_use blocks in order.
type Response struct {
	Blocks     []core.ContentBlock
	StopReason StopReason
	Usage      TokenUsage
}

// Model is a language model that can call tools. onText, when not nil,
// receives text as it is generated.
type Model interface {
	Complete(ctx context.Context, req *Request, onText func(string)) (*Response, error)
}
