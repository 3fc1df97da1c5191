// Package server exposes the finance assistant over a websocket chat
// protocol and a small REST API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/engine"
	"github.com/filipexcode/AssistenteFinanceiro/executor"
	"github.com/filipexcode/AssistenteFinanceiro/rates"
	"github.com/filipexcode/AssistenteFinanceiro/store"
)

// DefaultTurnTimeout bounds one chat turn, tool calls included.
const DefaultTurnTimeout = 30 * time.Second

// titleLength is how much of the first message becomes the title.
const titleLength = 50

// RateService supplies exchange rates to the REST API.
type RateService interface {
	Current(ctx context.Context) *rates.Snapshot
	Refresh(ctx context.Context) (*rates.Snapshot, error)
}

// Config configures the server.
type Config struct {
	// Model answers chat turns.
	Model engine.Model

	// SystemPrompt is the system prompt for the agent.
	SystemPrompt string

	// ModelName is the model identifier passed to Model.
	ModelName string

	// MaxTokens is the maximum response tokens.
	MaxTokens int64

	// MaxTurns bounds the model calls of one chat turn.
	MaxTurns int

	// TurnTimeout bounds one chat turn. Zero means DefaultTurnTimeout.
	TurnTimeout time.Duration

	// AuthFunc validates requests and returns a user ID.
	// If nil, DefaultUserID is used for every request.
	AuthFunc AuthFunc

	// Conversations persists conversations.
	// If nil, conversations are kept in memory.
	Conversations store.Conversations

	// Rates backs the /api/rates routes. If nil, the routes are not served.
	Rates RateService

	// Logger defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// Server is a WebSocket and REST server for the finance assistant.
type Server struct {
	config   Config
	engine   *engine.Engine
	registry *engine.ToolRegistry
	executor core.ToolExecutor
	upgrader websocket.Upgrader
	log      *logrus.Logger

	conversations store.Conversations
}

type session struct {
	UserID         string
	ConversationID string
	Titled         bool
	History        []core.Message
}

// New creates a new server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Model == nil {
		return nil, errors.New("server: a model is required")
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = DefaultTurnTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	registry := engine.NewToolRegistry()
	eng := engine.NewEngine(cfg.Model, registry,
		engine.WithMaxTurns(cfg.MaxTurns),
		engine.WithLogger(logger),
	)

	conversations := cfg.Conversations
	if conversations == nil {
		mem, err := store.NewMemoryConversations(store.DefaultConversationTTL)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		conversations = mem
	}

	return &Server{
		config:        cfg,
		engine:        eng,
		registry:      registry,
		executor:      executor.NewLocalExecutor(registry),
		log:           logger,
		conversations: conversations,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}, nil
}

// AddTool registers a tool with the server.
func (s *Server) AddTool(tool core.Tool) {
	s.registry.Register(tool)
}

// AddTools registers multiple tools with the server.
func (s *Server) AddTools(tools ...core.Tool) {
	s.registry.RegisterAll(tools...)
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/tools", s.handleListTools).Methods(http.MethodGet)
	api.HandleFunc("/tools/{name}", s.handleExecuteTool).Methods(http.MethodPost)
	if s.config.Rates != nil {
		api.HandleFunc("/rates", s.handleRates).Methods(http.MethodGet)
		api.HandleFunc("/rates/refresh", s.handleRefreshRates).Methods(http.MethodPost)
	}
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("Starting finance assistant server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authenticate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.log.WithField("user_id", userID)
	log.Info("WebSocket connected")

	var currentSession *session

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("WebSocket error")
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			s.sendError(conn, "Invalid message format")
			continue
		}

		log.WithField("type", msg.Type).Debug("Received message")

		switch msg.Type {
		case TypeNewConversation:
			if sess := s.handleNewConversation(r.Context(), conn, userID); sess != nil {
				currentSession = sess
			}

		case TypeResumeConversation:
			if sess := s.handleResumeConversation(r.Context(), conn, userID, msg.ConversationID); sess != nil {
				currentSession = sess
			}

		case TypeMessage:
			if currentSession == nil {
				s.sendError(conn, "No active conversation. Send 'new_conversation' first.")
				continue
			}
			s.handleMessage(r.Context(), conn, currentSession, msg.Content)

		default:
			s.sendError(conn, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

func (s *Server) handleNewConversation(ctx context.Context, conn *websocket.Conn, userID string) *session {
	conv, err := s.conversations.Create(ctx, userID)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Failed to create conversation: %v", err))
		return nil
	}

	s.send(conn, ServerMessage{
		Type:           TypeConversationStarted,
		ConversationID: conv.ID,
	})

	s.log.WithFields(logrus.Fields{"user_id": userID, "conversation_id": conv.ID}).Info("Started conversation")
	return &session{
		UserID:         userID,
		ConversationID: conv.ID,
		History:        []core.Message{},
	}
}

func (s *Server) handleResumeConversation(ctx context.Context, conn *websocket.Conn, userID, conversationID string) *session {
	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil || conv.UserID != userID {
		s.sendError(conn, "Conversation not found")
		return nil
	}

	// Tool exchanges are not stored; the model sees the text of each turn.
	history := make([]core.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		switch core.Role(m.Role) {
		case core.RoleUser:
			history = append(history, core.NewUserMessage(m.Content))
		case core.RoleAssistant:
			history = append(history, core.NewAssistantMessage(m.Content))
		}
	}

	s.send(conn, ServerMessage{
		Type:           TypeConversationResumed,
		ConversationID: conversationID,
		Messages:       conv.Messages,
	})

	s.log.WithFields(logrus.Fields{"user_id": userID, "conversation_id": conversationID}).Info("Resumed conversation")
	return &session{
		UserID:         userID,
		ConversationID: conversationID,
		Titled:         conv.Title != "",
		History:        history,
	}
}

func (s *Server) handleMessage(ctx context.Context, conn *websocket.Conn, sess *session, content string) {
	if content == "" {
		return
	}

	log := s.log.WithField("conversation_id", sess.ConversationID)
	log.WithField("content", truncate(content, 50)).Debug("User message")

	s.persistMessage(ctx, sess.ConversationID, string(core.RoleUser), content, nil)
	if !sess.Titled {
		if err := s.conversations.SetTitle(ctx, sess.ConversationID, truncate(content, titleLength)); err != nil {
			log.WithError(err).Warn("Failed to set conversation title")
		}
		sess.Titled = true
	}

	turnCtx, cancel := context.WithTimeout(ctx, s.config.TurnTimeout)
	defer cancel()

	output, err := s.engine.Run(turnCtx, &engine.Input{
		UserID:         sess.UserID,
		ConversationID: sess.ConversationID,
		UserMessage:    content,
		History:        sess.History,
		SystemPrompt:   s.config.SystemPrompt,
		Model:          s.config.ModelName,
		MaxTokens:      s.config.MaxTokens,
		StreamCallback: func(chunk string, done bool) {
			if !done && chunk != "" {
				s.send(conn, ServerMessage{Type: TypeTextChunk, Content: chunk})
			}
		},
	})
	if err != nil {
		log.WithError(err).Error("Agent error")
		if errors.Is(err, context.DeadlineExceeded) {
			s.sendError(conn, "The assistant took too long to answer. Please try again.")
			return
		}
		s.sendError(conn, fmt.Sprintf("Agent error: %v", err))
		return
	}

	s.handleOutput(ctx, conn, sess, output)
}

func (s *Server) handleOutput(ctx context.Context, conn *websocket.Conn, sess *session, output *engine.Output) {
	log := s.log.WithField("conversation_id", sess.ConversationID)

	switch output.Type {
	case engine.OutputComplete:
		log.WithFields(logrus.Fields{
			"tools":  output.ToolsUsed,
			"tokens": output.TokensUsed.TotalTokens(),
		}).Info("Assistant answered")

		sess.History = append(sess.History, output.Messages...)
		s.persistMessage(ctx, sess.ConversationID, string(core.RoleAssistant), output.Text, output.ToolsUsed)

		s.send(conn, ServerMessage{
			Type:    TypeText,
			Content: output.Text,
			HTML:    renderMarkdown(output.Text),
			Tools:   output.ToolsUsed,
		})
		s.send(conn, ServerMessage{
			Type: TypeComplete,
			TokenUsage: &TokenUsage{
				InputTokens:  output.TokensUsed.InputTokens,
				OutputTokens: output.TokensUsed.OutputTokens,
				TotalTokens:  output.TokensUsed.TotalTokens(),
			},
		})

	case engine.OutputError:
		log.WithError(output.Error).Warn("Agent gave up")
		s.sendError(conn, output.Error.Error())
	}
}

func (s *Server) persistMessage(ctx context.Context, conversationID, role, content string, tools []string) {
	err := s.conversations.Append(ctx, &store.AppendMessage{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Tools:          tools,
	})
	if err != nil {
		s.log.WithError(err).WithField("conversation_id", conversationID).Warn("Failed to persist message")
	}
}

func (s *Server) send(conn *websocket.Conn, msg ServerMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		s.log.WithError(err).Debug("Failed to send message")
	}
}

func (s *Server) sendError(conn *websocket.Conn, content string) {
	s.log.WithField("error", content).Debug("Sending error")
	s.send(conn, ServerMessage{Type: TypeError, Content: content})
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
