package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/filipexcode/AssistenteFinanceiro/cli"
	"github.com/filipexcode/AssistenteFinanceiro/config"
	"github.com/filipexcode/AssistenteFinanceiro/engine"
	"github.com/filipexcode/AssistenteFinanceiro/server"
	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

func newToolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the assistant can call",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := engine.NewToolRegistry()
			registry.RegisterAll(tools.FinancialTools()...)
			registry.Register(tools.RatesTool(nil))
			defs := registry.Definitions()

			if a.output != cli.OutputTable {
				data, err := json.Marshal(defs)
				if err != nil {
					return err
				}
				return cli.WriteData(a.out, a.output, data)
			}

			rows := make([][]string, len(defs))
			for i, d := range defs {
				rows[i] = []string{d.ToolName, d.ToolDescription}
			}
			_, err := fmt.Fprint(a.out, cli.RenderTable(cli.Table{Headers: []string{"Tool", "Description"}, Rows: rows}))
			return err
		},
	}
}

func newTokenCmd(a *app) *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the server API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET is not configured")
			}
			if user == "" {
				return errors.New("--user is required")
			}
			token, err := server.IssueToken([]byte(a.cfg.Auth.JWTSecret), user, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User ID placed in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	var initFile bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.Path()
			}

			if initFile {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists", path)
				}
				if err := config.Save(path, config.DefaultConfig()); err != nil {
					return err
				}
				_, err := fmt.Fprintf(a.out, "Wrote %s\n", path)
				return err
			}

			shown := a.cfg
			shown.Chat.APIKey = maskSecret(shown.Chat.APIKey)
			shown.Auth.JWTSecret = maskSecret(shown.Auth.JWTSecret)
			fmt.Fprintf(a.out, "# %s\n", path)
			return toml.NewEncoder(a.out).Encode(shown)
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "Write a default config file")
	return cmd
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
