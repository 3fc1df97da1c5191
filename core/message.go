package core

import (
	"encoding/json"
	"strings"
)

// Role is the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType tags a ContentBlock.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// ContentBlock is one part of a message. Which fields are set depends on
// Type.
type ContentBlock struct {
	Type BlockType `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use and tool_result
	ToolUseID string `json:"tool_use_id,omitempty"`

	// tool_use
	ToolName string          `json:"name,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`

	// tool_result
	Content string `json:"content,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
}

// Message is a single turn in a conversation.
type Message struct {
	Role   Role           `json:"role"`
	Blocks []ContentBlock `json:"blocks"`
}

// Text concatenates the text blocks of the message.
func (m Message) Text() string {
	var b strings.Builder
	for _, block := range m.Blocks {
		if block.Type == BlockText {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// NewUserMessage creates a user message with a single text block.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Blocks: []ContentBlock{{Type: BlockText, Text: text}}}
}

// NewAssistantMessage creates an assistant message with a single text block.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Blocks: []ContentBlock{{Type: BlockText, Text: text}}}
}

// NewAssistantMessageWithBlocks creates an assistant message from raw
// blocks, typically text followed by tool_use requests.
func NewAssistantMessageWithBlocks(blocks []ContentBlock) Message {
	return Message{Role: RoleAssistant, Blocks: blocks}
}

// ToolResultContent is the outcome of one tool_use request.
type ToolResultContent struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// NewToolResultMessage creates the user message that answers tool_use
// requests. Results travel in the user role.
func NewToolResultMessage(results []ToolResultContent) Message {
	blocks := make([]ContentBlock, len(results))
	for i, r := range results {
		blocks[i] = ContentBlock{
			Type:      BlockToolResult,
			ToolUseID: r.ToolUseID,
			Content:   r.Content,
			IsError:   r.IsError,
		}
	}
	return Message{Role: RoleUser, Blocks: blocks}
}
