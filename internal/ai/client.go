package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sentinelhq/sentinel-agent/internal/config"
	"github.com/sentinelhq/sentinel-agent/internal/logger"
	"github.com/sentinelhq/sentinel-agent/internal/market"
	"github.com/sentinelhq/sentinel-agent/internal/portfolio"
)

// Client talks to Gemini through the OpenAI-compatible endpoint. It serves
// both external capabilities the core consumes: the analysis source and the
// live price source.
type Client struct {
	client *openai.Client
	model  string
	cfg    *config.Config
	logger *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	ocfg := openai.DefaultConfig(cfg.Gemini.APIKey)
	ocfg.BaseURL = cfg.Gemini.BaseURL

	return &Client{
		client: openai.NewClientWithConfig(ocfg),
		model:  cfg.Gemini.Model,
		cfg:    cfg,
		logger: log,
	}
}

// Analyze asks the model for strategic recommendations against a portfolio
// snapshot. Returns the parsed recommendations plus the raw response for
// auditing. A failed call leaves the caller's recommendation state alone.
func (c *Client) Analyze(ctx context.Context, snap portfolio.Snapshot, events []market.Event) ([]Recommendation, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.GeminiTimeout())
	defer cancel()

	c.logger.Info("requesting portfolio analysis",
		"positions", len(snap.Positions), "events", len(events))

	raw, err := c.complete(ctx, analysisSystemPrompt, BuildAnalysisPrompt(snap, events))
	if err != nil {
		return nil, "", fmt.Errorf("analysis request: %w", err)
	}

	recs, err := ParseRecommendations(raw)
	if err != nil {
		return nil, raw, fmt.Errorf("parse analyst response: %w", err)
	}

	now := time.Now()
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = "rec_" + uuid.NewString()
		}
		recs[i].CreatedAt = now
	}
	return recs, raw, nil
}

// FetchPrices asks the model for live quotes. An empty map means no update
// was available, which is not an error.
func (c *Client) FetchPrices(ctx context.Context, symbols []string) (market.PriceMap, error) {
	if len(symbols) == 0 {
		return market.PriceMap{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.GeminiTimeout())
	defer cancel()

	raw, err := c.complete(ctx, priceSystemPrompt, BuildPricePrompt(symbols))
	if err != nil {
		return nil, fmt.Errorf("price request: %w", err)
	}

	prices := ParsePriceLines(raw)
	c.logger.Debug("live prices parsed", "requested", len(symbols), "received", len(prices))
	return prices, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("gemini returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
