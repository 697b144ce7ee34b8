package ai

import (
	"fmt"
	"strings"

	"github.com/sentinelhq/sentinel-agent/internal/market"
	"github.com/sentinelhq/sentinel-agent/internal/portfolio"
)

const analysisSystemPrompt = `You are an expert Indian stock market risk analyst and portfolio strategist.
You are an AI analyst, not a SEBI-registered investment advisor: provide "strategic
recommendations" grounded in risk exposure and fundamentals, never direct buy/sell signals.

For every position, categorize it into one strategic action:
- HOLD: fundamentals intact, valuation reasonable — maintain strategy.
- REDUCE: sound but overvalued versus peers, or a rally has skewed portfolio weight.
- EXIT: consistently lagging peers or deteriorating fundamentals — full exit.
- REALLOCATE: shift capital into this position from cash.
- BUY_DIP: opportunistic add after an excessive drawdown.

Rules:
1. Confidence is 0-100 and reflects the strength of the data behind the call.
2. For REDUCE/REALLOCATE/BUY_DIP include suggested_quantity (shares to sell or buy).
3. Reasoning must cite the concrete comparison driving the call.
4. One recommendation per symbol; the newest set supersedes all previous ones.

Answer strictly with a JSON array:
[
  {
    "symbol": "RELIANCE",
    "action": "REDUCE",
    "confidence": 75,
    "suggested_quantity": 20,
    "reasoning": "Why"
  }
]

If the current strategy needs no change, return an empty array [].`

const priceSystemPrompt = `You are a market data terminal for NSE/BSE India.
Return the most recent price in INR for each requested symbol, one per line, strictly as:
SYMBOL|PRICE
or, when you know the source of the observation:
SYMBOL|PRICE|SOURCE_URL
No markdown, no commentary. If the market is closed, use the latest closing price.
Omit symbols you cannot price.`

// BuildAnalysisPrompt renders the portfolio snapshot and recent market
// events into the analyst user prompt.
func BuildAnalysisPrompt(snap portfolio.Snapshot, events []market.Event) string {
	var sb strings.Builder

	sb.WriteString("## Portfolio\n")
	sb.WriteString(fmt.Sprintf("Total value: %.2f INR / Cash available: %.2f INR / Risk score: %.0f/100\n\n",
		snap.TotalValue, snap.Cash, snap.RiskScore))

	if len(snap.Positions) > 0 {
		sb.WriteString("| Symbol | Type | Entry | Current | Qty | PnL | Alloc% | Risk |\n")
		sb.WriteString("|--------|------|-------|---------|-----|-----|--------|------|\n")
		for _, p := range snap.Positions {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %.2f | %d | %+.2f | %.1f | %.0f |\n",
				p.Symbol, p.Type, p.EntryPrice, p.CurrentPrice, p.Quantity,
				p.UnrealizedPnL, p.AllocationPct, p.RiskScore))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No open positions.\n\n")
	}

	if len(events) > 0 {
		sb.WriteString("## Recent market events\n")
		for _, ev := range events {
			sb.WriteString(fmt.Sprintf("- [%s/%s] %s\n", ev.Sentiment, ev.Impact, ev.Headline))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Analyze the positions and answer with the JSON array.")
	return sb.String()
}

// BuildPricePrompt lists the symbols to quote.
func BuildPricePrompt(symbols []string) string {
	return fmt.Sprintf(
		"Find the most recent live market price (INR, NSE or BSE) for these stocks: %s.",
		strings.Join(symbols, ", "))
}
