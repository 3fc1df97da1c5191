// Package store keeps conversations in memory and exchange-rate snapshots
// in SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a conversation does not exist or has expired.
var ErrNotFound = errors.New("conversation not found")

// DefaultConversationTTL is how long an idle conversation is kept.
const DefaultConversationTTL = 24 * time.Hour

// Conversation is the metadata of a chat.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredMessage is one persisted message.
type StoredMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Tools     []string  `json:"tools,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationWithMessages is a conversation and its messages in order.
type ConversationWithMessages struct {
	Conversation
	Messages []StoredMessage `json:"messages"`
}

// AppendMessage adds a message to a conversation. Tools lists the tools the
// assistant called to produce it.
type AppendMessage struct {
	ConversationID string
	Role           string
	Content        string
	Tools          []string
}

// Conversations persists chats.
type Conversations interface {
	Create(ctx context.Context, userID string) (*Conversation, error)
	Get(ctx context.Context, id string) (*ConversationWithMessages, error)
	Append(ctx context.Context, msg *AppendMessage) error
	SetTitle(ctx context.Context, id, title string) error
}

// MemoryConversations keeps conversations in a ristretto cache. Every write
// renews the conversation's TTL; idle conversations expire and are gone for
// good.
type MemoryConversations struct {
	cache *ristretto.Cache
	ttl   time.Duration
	mu    sync.Mutex
}

// NewMemoryConversations creates an in-memory store. A zero ttl means
// DefaultConversationTTL.
func NewMemoryConversations(ttl time.Duration) (*MemoryConversations, error) {
	if ttl <= 0 {
		ttl = DefaultConversationTTL
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        1e5,
		MaxCost:            1e4, // conversations, each costs 1
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation cache: %w", err)
	}
	return &MemoryConversations{cache: cache, ttl: ttl}, nil
}

// Create starts an empty conversation for userID.
func (s *MemoryConversations) Create(_ context.Context, userID string) (*Conversation, error) {
	now := time.Now()
	conv := &ConversationWithMessages{
		Conversation: Conversation{
			ID:        uuid.New().String(),
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Messages: []StoredMessage{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.put(conv); err != nil {
		return nil, err
	}
	meta := conv.Conversation
	return &meta, nil
}

// Get returns a copy of the conversation with its messages.
func (s *MemoryConversations) Get(_ context.Context, id string) (*ConversationWithMessages, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Append adds a message and renews the conversation's TTL.
func (s *MemoryConversations) Append(_ context.Context, msg *AppendMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.get(msg.ConversationID)
	if err != nil {
		return err
	}
	now := time.Now()
	conv.Messages = append(conv.Messages, StoredMessage{
		ID:        uuid.New().String(),
		Role:      msg.Role,
		Content:   msg.Content,
		Tools:     msg.Tools,
		CreatedAt: now,
	})
	conv.UpdatedAt = now
	return s.put(conv)
}

// SetTitle renames a conversation.
func (s *MemoryConversations) SetTitle(_ context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.get(id)
	if err != nil {
		return err
	}
	conv.Title = title
	conv.UpdatedAt = time.Now()
	return s.put(conv)
}

// Close releases the cache.
func (s *MemoryConversations) Close() {
	s.cache.Close()
}

// get returns a deep copy so callers never share the cached slice.
func (s *MemoryConversations) get(id string) (*ConversationWithMessages, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	cached := v.(*ConversationWithMessages)
	conv := *cached
	conv.Messages = make([]StoredMessage, len(cached.Messages))
	copy(conv.Messages, cached.Messages)
	return &conv, nil
}

func (s *MemoryConversations) put(conv *ConversationWithMessages) error {
	if !s.cache.SetWithTTL(conv.ID, conv, 1, s.ttl) {
		return fmt.Errorf("failed to store conversation %s", conv.ID)
	}
	s.cache.Wait()
	// The admission policy may still drop the entry.
	if _, ok := s.cache.Get(conv.ID); !ok {
		return fmt.Errorf("failed to store conversation %s: cache full", conv.ID)
	}
	return nil
}
