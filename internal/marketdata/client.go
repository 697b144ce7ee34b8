// Package marketdata fetches quotes from an exchange-style JSON endpoint.
// It is an alternative price source for deployments with a real feed; the
// agent otherwise quotes through the analyst model or the simulator.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sentinelhq/sentinel-agent/internal/config"
	"github.com/sentinelhq/sentinel-agent/internal/logger"
	"github.com/sentinelhq/sentinel-agent/internal/market"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.MarketData.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.MarketDataTimeout()},
		logger:     log,
	}
}

type quotesResponse struct {
	Quotes []struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
		Source string  `json:"source"`
	} `json:"quotes"`
}

// FetchPrices requests quotes for a set of symbols. Symbols the feed cannot
// price are simply absent from the result; an empty map is not an error.
func (c *Client) FetchPrices(ctx context.Context, symbols []string) (market.PriceMap, error) {
	if len(symbols) == 0 {
		return market.PriceMap{}, nil
	}

	endpoint := fmt.Sprintf("%s/quotes?symbols=%s", c.baseURL, url.QueryEscape(strings.Join(symbols, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create quotes request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read quotes response: %w", err)
	}

	var parsed quotesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse quotes response: %w", err)
	}

	prices := make(market.PriceMap, len(parsed.Quotes))
	for _, q := range parsed.Quotes {
		symbol := strings.ToUpper(strings.TrimSpace(q.Symbol))
		if symbol == "" || q.Price <= 0 {
			continue
		}
		prices[symbol] = market.Quote{Price: q.Price, Source: q.Source}
	}

	c.logger.Debug("quotes fetched", "requested", len(symbols), "received", len(prices))
	return prices, nil
}
