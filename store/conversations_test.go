package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversations(t *testing.T, ttl time.Duration) *MemoryConversations {
	t.Helper()
	s, err := NewMemoryConversations(ttl)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestMemoryConversations_CreateAppendGet(t *testing.T) {
	ctx := context.Background()
	s := newConversations(t, 0)

	conv, err := s.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "user-1", conv.UserID)

	require.NoError(t, s.Append(ctx, &AppendMessage{ConversationID: conv.ID, Role: "user", Content: "My income is 5000"}))
	require.NoError(t, s.Append(ctx, &AppendMessage{ConversationID: conv.ID, Role: "assistant", Content: "You save 40%", Tools: []string{"budget_analyzer"}}))

	got, err := s.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "You save 40%", got.Messages[1].Content)
	assert.Equal(t, []string{"budget_analyzer"}, got.Messages[1].Tools)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestMemoryConversations_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := newConversations(t, 0)
	conv, err := s.Create(ctx, "u")
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, &AppendMessage{ConversationID: conv.ID, Role: "user", Content: "hi"}))

	got, err := s.Get(ctx, conv.ID)
	require.NoError(t, err)
	got.Messages[0].Content = "changed"
	got.Messages = append(got.Messages, StoredMessage{Content: "extra"})

	again, err := s.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, again.Messages, 1)
	assert.Equal(t, "hi", again.Messages[0].Content)
}

func TestMemoryConversations_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newConversations(t, 0)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Append(ctx, &AppendMessage{ConversationID: "missing"}), ErrNotFound)
	assert.ErrorIs(t, s.SetTitle(ctx, "missing", "x"), ErrNotFound)
}

func TestMemoryConversations_Expire(t *testing.T) {
	ctx := context.Background()
	s := newConversations(t, 50*time.Millisecond)
	conv, err := s.Create(ctx, "u")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := s.Get(ctx, conv.ID)
		return err == ErrNotFound
	}, 5*time.Second, 20*time.Millisecond)
}

func TestMemoryConversations_SetTitle(t *testing.T) {
	ctx := context.Background()
	s := newConversations(t, 0)
	conv, err := s.Create(ctx, "u")
	require.NoError(t, err)

	require.NoError(t, s.SetTitle(ctx, conv.ID, "Budget review"))
	got, err := s.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budget review", got.Title)
}

func TestMemoryConversations_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := newConversations(t, 0)
	conv, err := s.Create(ctx, "u")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, &AppendMessage{ConversationID: conv.ID, Role: "user", Content: "x"}))
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 20)
}

func TestMemoryConversations_KeepsThousandsOfConversations(t *testing.T) {
	ctx := context.Background()
	s := newConversations(t, 0)

	ids := make([]string, 0, 2000)
	for i := 0; i < 2000; i++ {
		conv, err := s.Create(ctx, "u")
		require.NoError(t, err)
		for j := 0; j < 3; j++ {
			require.NoError(t, s.Append(ctx, &AppendMessage{ConversationID: conv.ID, Role: "user", Content: "quanto gastei com comida?"}))
		}
		ids = append(ids, conv.ID)
	}

	for _, id := range ids {
		got, err := s.Get(ctx, id)
		require.NoError(t, err, "conversation %s", id)
		assert.Len(t, got.Messages, 3)
	}
}
