// Package rates tracks exchange rates against a base currency, refreshing
// them on a schedule and falling back to the last known values when the
// provider is unreachable.
package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBase is the currency quotes are expressed in.
const DefaultBase = "BRL"

// Currency is a quoted currency with its display metadata.
type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// DefaultCurrencies are the currencies quoted when none are configured.
var DefaultCurrencies = []Currency{
	{Code: "USD", Name: "US Dollar", Flag: "🇺🇸"},
	{Code: "EUR", Name: "Euro", Flag: "🇪🇺"},
	{Code: "GBP", Name: "British Pound", Flag: "🇬🇧"},
}

// Known currencies for display names. Codes outside this list are shown
// with the code as name.
var knownCurrencies = map[string]Currency{
	"USD": DefaultCurrencies[0],
	"EUR": DefaultCurrencies[1],
	"GBP": DefaultCurrencies[2],
	"JPY": {Code: "JPY", Name: "Japanese Yen", Flag: "🇯🇵"},
	"CHF": {Code: "CHF", Name: "Swiss Franc", Flag: "🇨🇭"},
	"ARS": {Code: "ARS", Name: "Argentine Peso", Flag: "🇦🇷"},
	"CAD": {Code: "CAD", Name: "Canadian Dollar", Flag: "🇨🇦"},
	"CNY": {Code: "CNY", Name: "Chinese Yuan", Flag: "🇨🇳"},
}

// LookupCurrency returns the display metadata for code.
func LookupCurrency(code string) Currency {
	if c, ok := knownCurrencies[code]; ok {
		return c
	}
	return Currency{Code: code, Name: code}
}

// Quote is how many units of the base currency one unit of Code buys.
type Quote struct {
	Currency
	Rate decimal.Decimal `json:"rate"`
	// Change is the percent change from the previous snapshot, when there
	// is one.
	Change *decimal.Decimal `json:"change,omitempty"`
}

// Source tags where a snapshot came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceStored   Source = "stored"
	SourceFallback Source = "fallback"
)

// Snapshot is a set of quotes taken at one moment.
type Snapshot struct {
	Base      string    `json:"base"`
	Quotes    []Quote   `json:"quotes"`
	Provider  string    `json:"provider"`
	Source    Source    `json:"source"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Quote returns the quote for code.
func (s *Snapshot) Quote(code string) (Quote, bool) {
	for _, q := range s.Quotes {
		if q.Code == code {
			return q, true
		}
	}
	return Quote{}, false
}

// Provider fetches live rates. Fetch returns, for each code, the units of
// base that buy one unit of the code.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, base string, codes []string) (map[string]decimal.Decimal, error)
}

// SnapshotStore keeps the last good snapshot across restarts.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	LatestSnapshot(ctx context.Context, base string) (*Snapshot, error)
}

// fallbackRates are BRL quotes used when nothing better is available.
var fallbackRates = map[string]decimal.Decimal{
	"USD": decimal.RequireFromString("5.20"),
	"EUR": decimal.RequireFromString("5.65"),
	"GBP": decimal.RequireFromString("6.45"),
}

// FallbackSnapshot returns the static table for the given codes. Only BRL
// quotes are known; other bases get an empty snapshot.
func FallbackSnapshot(base string, codes []string) *Snapshot {
	snap := &Snapshot{Base: base, Quotes: []Quote{}, Provider: "static", Source: SourceFallback}
	if base != DefaultBase {
		return snap
	}
	for _, code := range codes {
		if rate, ok := fallbackRates[code]; ok {
			snap.Quotes = append(snap.Quotes, Quote{Currency: LookupCurrency(code), Rate: rate})
		}
	}
	return snap
}
