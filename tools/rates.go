package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/filipexcode/AssistenteFinanceiro/core"
	"github.com/filipexcode/AssistenteFinanceiro/rates"
)

// ExchangeRatesTool is the name of the exchange rate lookup tool.
const ExchangeRatesTool = "get_exchange_rates"

// RateSource supplies the current exchange rates.
type RateSource interface {
	Current(ctx context.Context) *rates.Snapshot
}

// RatesInput is the input of get_exchange_rates.
type RatesInput struct {
	Currencies []string `json:"currencies,omitempty"`
	// Amount, when set, is converted from every quoted currency into the
	// base currency.
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// QuoteReport is one quoted currency.
type QuoteReport struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Flag      string   `json:"flag,omitempty"`
	Rate      float64  `json:"rate"`
	Change    *float64 `json:"change,omitempty"`
	Converted *float64 `json:"converted,omitempty"`
}

// RatesReport is the output of get_exchange_rates.
type RatesReport struct {
	Base      string        `json:"base"`
	Source    string        `json:"source"`
	Provider  string        `json:"provider"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
	Amount    *float64      `json:"amount,omitempty"`
	Quotes    []QuoteReport `json:"quotes"`
}

// RatesTool exposes the current exchange rates to the model.
func RatesTool(source RateSource) core.Tool {
	return New(ExchangeRatesTool).
		Description("Get the current exchange rates of foreign currencies against the Brazilian real, optionally converting an amount. Use it when the user asks about the dollar, euro or other currencies.").
		Schema(ObjectSchema(map[string]interface{}{
			"currencies": ArrayProperty("Currency codes to include (e.g. 'USD'). Omit for all tracked currencies.", StringProperty("ISO 4217 code")),
			"amount":     NumberProperty("Amount in the foreign currency to convert into the base currency"),
		})).
		HandlerFunc(func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var in RatesInput
			if err := Decode(input, &in); err != nil {
				return nil, err
			}
			if in.Amount != nil && in.Amount.IsNegative() {
				return nil, fmt.Errorf("invalid input: amount must not be negative, got %s", in.Amount)
			}
			return NewRatesReport(source.Current(ctx), in), nil
		}).
		Build()
}

// NewRatesReport converts a snapshot into the wire report, keeping only the
// requested currencies.
func NewRatesReport(snap *rates.Snapshot, in RatesInput) *RatesReport {
	want := make(map[string]bool, len(in.Currencies))
	for _, c := range in.Currencies {
		want[strings.ToUpper(strings.TrimSpace(c))] = true
	}

	report := &RatesReport{
		Base:     snap.Base,
		Source:   string(snap.Source),
		Provider: snap.Provider,
		Quotes:   []QuoteReport{},
	}
	if !snap.UpdatedAt.IsZero() {
		updated := snap.UpdatedAt
		report.UpdatedAt = &updated
	}
	if in.Amount != nil {
		amount := num(*in.Amount)
		report.Amount = &amount
	}

	for _, q := range snap.Quotes {
		if len(want) > 0 && !want[q.Code] {
			continue
		}
		qr := QuoteReport{Code: q.Code, Name: q.Name, Flag: q.Flag, Rate: num(q.Rate)}
		if q.Change != nil {
			change := num(*q.Change)
			qr.Change = &change
		}
		if in.Amount != nil {
			converted := num(in.Amount.Mul(q.Rate).Round(2))
			qr.Converted = &converted
		}
		report.Quotes = append(report.Quotes, qr)
	}
	return report
}
