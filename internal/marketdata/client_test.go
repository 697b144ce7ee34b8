package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelhq/sentinel-agent/internal/config"
	"github.com/sentinelhq/sentinel-agent/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.MarketData.BaseURL = srv.URL
	cfg.MarketData.TimeoutSeconds = 5
	return NewClient(cfg, logger.New("error"))
}

func TestFetchPrices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quotes", r.URL.Path)
		assert.Equal(t, "TCS,INFY", r.URL.Query().Get("symbols"))
		w.Write([]byte(`{"quotes":[
			{"symbol":"tcs","price":3500.5,"source":"https://example.com/tcs"},
			{"symbol":"INFY","price":1500.25},
			{"symbol":"BAD","price":0}
		]}`))
	})

	prices, err := client.FetchPrices(context.Background(), []string{"TCS", "INFY"})
	require.NoError(t, err)
	require.Len(t, prices, 2, "non-positive prices are dropped")
	assert.Equal(t, 3500.5, prices["TCS"].Price)
	assert.Equal(t, "https://example.com/tcs", prices["TCS"].Source)
}

func TestFetchPricesUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchPrices(context.Background(), []string{"TCS"})
	assert.ErrorContains(t, err, "status 502")
}

func TestFetchPricesNoSymbols(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty symbol set")
	})

	prices, err := client.FetchPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
}
