package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/filipexcode/AssistenteFinanceiro/cli"
	"github.com/filipexcode/AssistenteFinanceiro/config"
	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/engine"
	"github.com/filipexcode/AssistenteFinanceiro/executor"
	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

// app holds the global flags and what they load.
type app struct {
	configPath string
	envFile    string
	output     string
	remote     string
	token      string

	cfg config.Config
	log *logrus.Logger
	out io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	root := &cobra.Command{
		Use:          "finadvisor",
		Short:        "Personal finance assistant",
		Long:         "Budget, investment, debt and planning calculators, exchange rates, and a chat server that puts them behind an AI assistant.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default "+config.Path()+")")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before the environment")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", cli.OutputTable, "Output format: table, json or yaml")
	root.PersistentFlags().StringVar(&a.remote, "remote", "", "Run tools on a finadvisor server at this URL")
	root.PersistentFlags().StringVar(&a.token, "token", "", "Bearer token for --remote")

	root.AddCommand(
		newServeCmd(a),
		newBudgetCmd(a),
		newInvestCmd(a),
		newDebtCmd(a),
		newPlanCmd(a),
		newRatesCmd(a),
		newToolsCmd(a),
		newTokenCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if !cli.ValidOutput(a.output) {
		return fmt.Errorf("unknown output format %q", a.output)
	}
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = config.NewLogger(cfg.Log)
	a.out = cmd.OutOrStdout()
	return nil
}

// executor runs tools locally, with extra tools added, or on the remote
// server when --remote is set.
func (a *app) executor(extra ...core.Tool) core.ToolExecutor {
	if a.remote != "" {
		return executor.NewHTTPExecutor(executor.HTTPExecutorConfig{
			BaseURL: a.remote,
			Token:   a.token,
		})
	}
	registry := engine.NewToolRegistry()
	registry.RegisterAll(tools.FinancialTools()...)
	registry.RegisterAll(extra...)
	return executor.NewLocalExecutor(registry)
}
