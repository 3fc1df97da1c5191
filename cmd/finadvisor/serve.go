package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/engine"
	"github.com/filipexcode/AssistenteFinanceiro/presets"
	"github.com/filipexcode/AssistenteFinanceiro/server"
	"github.com/filipexcode/AssistenteFinanceiro/store"
	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat server",
		Long:  "Serve the websocket chat on /ws and the REST API on /api. Requires ANTHROPIC_API_KEY.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(cmd *cobra.Command) error {
	if a.cfg.Chat.APIKey == "" {
		return errors.New("ANTHROPIC_API_KEY is required to serve the chat")
	}

	ratesSvc, closeRates, err := a.openRates()
	if err != nil {
		return err
	}
	defer closeRates()
	if err := ratesSvc.Start(); err != nil {
		return err
	}

	conversations, err := store.NewMemoryConversations(a.cfg.Store.ConversationTTL)
	if err != nil {
		return err
	}
	defer conversations.Close()

	advisor := presets.Advisor().
		WithPrompt(a.cfg.Chat.SystemPrompt).
		WithLimits(a.cfg.Chat.MaxTurns, a.cfg.Chat.MaxTokens)
	srvCfg := server.Config{
		Model:         engine.NewAnthropicModel(a.cfg.Chat.APIKey),
		SystemPrompt:  advisor.SystemPrompt,
		ModelName:     a.cfg.Chat.Model,
		MaxTokens:     advisor.MaxTokens,
		MaxTurns:      advisor.MaxTurns,
		TurnTimeout:   a.cfg.Chat.TurnTimeout,
		Conversations: conversations,
		Rates:         ratesSvc,
		Logger:        a.log,
	}
	if a.cfg.Auth.JWTSecret != "" {
		srvCfg.AuthFunc = server.JWTAuth([]byte(a.cfg.Auth.JWTSecret))
	} else {
		a.log.Warn("JWT_SECRET not set, every request runs as the default user")
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return err
	}
	available := append([]core.Tool{}, tools.FinancialTools()...)
	available = append(available, tools.RatesTool(ratesSvc))
	srv.AddTools(advisor.Select(available)...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.WithFields(logrus.Fields{
		"model":  a.cfg.Chat.Model,
		"preset": advisor.Name,
	}).Info("Finance assistant ready")
	return srv.Run(ctx, a.cfg.Server.Addr)
}
