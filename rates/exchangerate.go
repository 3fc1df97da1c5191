package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultExchangeRateAPIURL is the public exchangerate-api.com endpoint.
const DefaultExchangeRateAPIURL = "https://api.exchangerate-api.com"

// quoteScale is the number of decimal places kept on derived quotes.
const quoteScale = 6

// ExchangeRateAPI fetches rates from an exchangerate-api.com compatible
// service (GET {baseURL}/v4/latest/{base}). The service answers with units
// of each currency per one unit of base, so quotes are inverted.
type ExchangeRateAPI struct {
	baseURL    string
	httpClient *http.Client
}

// NewExchangeRateAPI creates a provider. An empty baseURL means
// DefaultExchangeRateAPIURL.
func NewExchangeRateAPI(baseURL string) *ExchangeRateAPI {
	if baseURL == "" {
		baseURL = DefaultExchangeRateAPIURL
	}
	return &ExchangeRateAPI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *ExchangeRateAPI) Name() string { return "exchangerate-api" }

type latestResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Fetch returns the units of base per one unit of each code.
func (p *ExchangeRateAPI) Fetch(ctx context.Context, base string, codes []string) (map[string]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/v4/latest/%s", p.baseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var latest latestResponse
	if err := json.Unmarshal(body, &latest); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}

	quotes := make(map[string]decimal.Decimal, len(codes))
	for _, code := range codes {
		perBase, ok := latest.Rates[code]
		if !ok || !perBase.IsPositive() {
			return nil, fmt.Errorf("no usable rate for %s", code)
		}
		quotes[code] = decimal.NewFromInt(1).Div(perBase).Round(quoteScale)
	}
	return quotes, nil
}
