package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filipexcode/AssistenteFinanceiro/cli"
	"github.com/filipexcode/AssistenteFinanceiro/config"
	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/rates"
	"github.com/filipexcode/AssistenteFinanceiro/store"
	"github.com/filipexcode/AssistenteFinanceiro/tools"
)

// newRatesProvider builds the configured provider.
func newRatesProvider(cfg config.RatesConfig) (rates.Provider, error) {
	switch cfg.Provider {
	case config.ProviderECB:
		return rates.NewECB(cfg.URL), nil
	case config.ProviderExchangeRateAPI:
		return rates.NewExchangeRateAPI(cfg.URL), nil
	default:
		return nil, fmt.Errorf("unknown rates provider %q", cfg.Provider)
	}
}

// openRates builds the rates service and its snapshot store. The returned
// closer releases both.
func (a *app) openRates() (*rates.Service, func(), error) {
	provider, err := newRatesProvider(a.cfg.Rates)
	if err != nil {
		return nil, nil, err
	}

	svcCfg := rates.Config{
		Provider: provider,
		Base:     a.cfg.Rates.Base,
		Codes:    a.cfg.Rates.Codes,
		Schedule: a.cfg.Rates.Refresh,
		Logger:   a.log,
	}

	var snapshots *store.RateSnapshots
	if a.cfg.Rates.SnapshotPath != "" {
		snapshots, err = store.OpenRateSnapshots(a.cfg.Rates.SnapshotPath)
		if err != nil {
			a.log.WithError(err).Warn("Rate snapshots disabled")
		} else {
			svcCfg.Store = snapshots
		}
	}

	svc, err := rates.NewService(svcCfg)
	if err != nil {
		if snapshots != nil {
			_ = snapshots.Close()
		}
		return nil, nil, err
	}

	closer := func() {
		svc.Stop()
		if snapshots != nil {
			_ = snapshots.Close()
		}
	}
	return svc, closer, nil
}

func newRatesCmd(a *app) *cobra.Command {
	var (
		currencies []string
		amount     string
		noRefresh  bool
	)
	cmd := &cobra.Command{
		Use:     "rates",
		Short:   "Show exchange rates against the real",
		Example: "  finadvisor rates --currency USD --amount 100",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := tools.RatesInput{Currencies: currencies}
			if amount != "" {
				d, err := parseDecimal("--amount", amount)
				if err != nil {
					return err
				}
				in.Amount = &d
			}
			body, err := json.Marshal(in)
			if err != nil {
				return err
			}

			var extra []core.Tool
			if a.remote == "" {
				svc, closeRates, err := a.openRates()
				if err != nil {
					return err
				}
				defer closeRates()
				if !noRefresh {
					// A failed refresh is logged; Current falls back.
					_, _ = svc.Refresh(cmd.Context())
				}
				extra = append(extra, tools.RatesTool(svc))
			}
			return a.runTool(cmd, a.executor(extra...), tools.ExchangeRatesTool, body, renderAs(cli.RenderRates))
		},
	}
	cmd.Flags().StringArrayVarP(&currencies, "currency", "c", nil, "Currency code to show (repeatable, default all)")
	cmd.Flags().StringVar(&amount, "amount", "", "Convert this amount of each currency into reais")
	cmd.Flags().BoolVar(&noRefresh, "offline", false, "Use stored or fallback rates without fetching")
	return cmd
}

