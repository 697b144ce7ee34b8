package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sentinelhq/sentinel-agent/internal/market"
)

var thinkTagRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

var nonNumericRegex = regexp.MustCompile(`[^0-9.]`)

// StripThinkTags removes reasoning-model thinking tags from the response.
func StripThinkTags(text string) string {
	return strings.TrimSpace(thinkTagRegex.ReplaceAllString(text, ""))
}

func stripFences(text string) string {
	cleaned := StripThinkTags(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// ParseRecommendations parses the analyst response into recommendations.
// Handles: JSON array, single JSON object, markdown code fences, and JSON
// embedded in surrounding prose.
func ParseRecommendations(text string) ([]Recommendation, error) {
	cleaned := stripFences(text)

	if cleaned == "" || cleaned == "[]" {
		return nil, nil
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(cleaned), &recs); err == nil {
		return recs, nil
	}

	var single Recommendation
	if err := json.Unmarshal([]byte(cleaned), &single); err == nil && single.Action != "" {
		return []Recommendation{single}, nil
	}

	// Extract an embedded JSON array
	jsonStart := strings.Index(cleaned, "[")
	jsonEnd := strings.LastIndex(cleaned, "]")
	if jsonStart >= 0 && jsonEnd > jsonStart {
		substr := cleaned[jsonStart : jsonEnd+1]
		if err := json.Unmarshal([]byte(substr), &recs); err == nil {
			return recs, nil
		}
	}

	// Extract an embedded JSON object
	jsonStart = strings.Index(cleaned, "{")
	jsonEnd = strings.LastIndex(cleaned, "}")
	if jsonStart >= 0 && jsonEnd > jsonStart {
		substr := cleaned[jsonStart : jsonEnd+1]
		if err := json.Unmarshal([]byte(substr), &single); err == nil {
			return []Recommendation{single}, nil
		}
	}

	return nil, fmt.Errorf("failed to parse analyst response as JSON: %.200s", cleaned)
}

// ParsePriceLines parses a live-price response formatted as one
// "SYMBOL|PRICE" or "SYMBOL|PRICE|SOURCE_URL" entry per line. Malformed
// lines are skipped; an empty map is a valid result.
func ParsePriceLines(text string) market.PriceMap {
	prices := make(market.PriceMap)

	for _, line := range strings.Split(stripFences(text), "\n") {
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}

		symbol := strings.ToUpper(strings.TrimSpace(parts[0]))
		raw := nonNumericRegex.ReplaceAllString(parts[1], "")
		price, err := strconv.ParseFloat(raw, 64)
		if symbol == "" || err != nil || price <= 0 {
			continue
		}

		q := market.Quote{Price: price}
		if len(parts) > 2 {
			q.Source = strings.TrimSpace(parts[2])
		}
		prices[symbol] = q
	}
	return prices
}
