package server

import "github.com/filipexcode/AssistenteFinanceiro/store"

// Client message types.
const (
	TypeNewConversation    = "new_conversation"
	TypeResumeConversation = "resume_conversation"
	TypeMessage            = "message"
)

// Server message types.
const (
	TypeConversationStarted = "conversation_started"
	TypeConversationResumed = "conversation_resumed"
	TypeTextChunk           = "text_chunk"
	TypeText                = "text"
	TypeComplete            = "complete"
	TypeError               = "error"
)

// ClientMessage is a message sent by the chat client.
type ClientMessage struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	Content        string `json:"content,omitempty"`
}

// ServerMessage is a message sent to the chat client.
type ServerMessage struct {
	Type           string                `json:"type"`
	ConversationID string                `json:"conversationId,omitempty"`
	Content        string                `json:"content,omitempty"`
	HTML           string                `json:"html,omitempty"`
	Tools          []string              `json:"tools,omitempty"`
	Messages       []store.StoredMessage `json:"messages,omitempty"`
	TokenUsage     *TokenUsage           `json:"tokenUsage,omitempty"`
}

// TokenUsage reports the tokens a turn consumed.
type TokenUsage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}
