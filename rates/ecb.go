package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// DefaultECBURL serves the European Central Bank daily reference rates.
const DefaultECBURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// ECB reads the European Central Bank daily reference rates. The feed
// quotes every currency against EUR, so other bases are crossed through
// EUR.
type ECB struct {
	url    string
	client *http.Client
}

// NewECB creates a provider. An empty url means DefaultECBURL.
func NewECB(url string) *ECB {
	if url == "" {
		url = DefaultECBURL
	}
	return &ECB{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *ECB) Name() string { return "ecb" }

// Fetch returns the units of base per one unit of each code.
func (p *ECB) Fetch(ctx context.Context, base string, codes []string) (map[string]decimal.Decimal, error) {
	body, err := p.download(ctx)
	if err != nil {
		return nil, err
	}
	perEUR, err := parseECB(body)
	if err != nil {
		return nil, err
	}

	baseRate, ok := perEUR[base]
	if !ok {
		return nil, fmt.Errorf("base currency %s not in ECB feed", base)
	}
	quotes := make(map[string]decimal.Decimal, len(codes))
	for _, code := range codes {
		rate, ok := perEUR[code]
		if !ok {
			return nil, fmt.Errorf("currency %s not in ECB feed", code)
		}
		quotes[code] = baseRate.Div(rate).Round(quoteScale)
	}
	return quotes, nil
}

func (p *ECB) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// parseECB maps each currency in the feed to its units per one EUR. EUR
// itself is 1.
func parseECB(raw []byte) (map[string]decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	cubes := doc.FindElements("//Cube[@currency]")
	if len(cubes) == 0 {
		return nil, fmt.Errorf("no rate data found in XML")
	}

	perEUR := map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}
	for _, cube := range cubes {
		code := cube.SelectAttrValue("currency", "")
		rate, err := decimal.NewFromString(cube.SelectAttrValue("rate", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for %s: %w", code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("non-positive rate for %s", code)
		}
		perEUR[code] = rate
	}
	return perEUR, nil
}
