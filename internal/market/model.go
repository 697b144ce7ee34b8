package market

import "time"

// Quote is one observed price for a symbol.
type Quote struct {
	Price  float64
	Source string
}

// PriceMap maps symbol to its latest quote.
type PriceMap map[string]Quote

// Risk score bounds and adjustment steps. The constants mirror the agent's
// original tuning and are policy, not physics.
const (
	RiskMin = 0.0
	RiskMax = 100.0

	// Quote path: a losing tick raises perceived risk faster than a
	// winning tick lowers it. The floor stays at 10 so one good tick
	// cannot collapse the score to zero.
	quoteRiskFloor = 10.0
	quoteRiskUp    = 5.0
	quoteRiskDown  = 2.0

	// Simulated path: large drift from entry raises risk, stability
	// decays it slowly.
	simDriftThreshold  = 0.05
	simStableThreshold = 0.01
	simRiskUp          = 2.0
	simRiskDown        = 1.0
	simRiskFloor       = 10.0
)

// DefaultRiskScore seeds newly opened positions at mid-risk.
const DefaultRiskScore = 50.0

// UnrealizedPnL computes the mark-to-market profit for a directional holding.
func UnrealizedPnL(long bool, entry, current float64, qty int64) float64 {
	if long {
		return (current - entry) * float64(qty)
	}
	return (entry - current) * float64(qty)
}

// AdjustRiskOnQuote nudges the risk score after a live price observation:
// up when the position is under water, down otherwise. Result is clamped
// to [10,100] on this path.
func AdjustRiskOnQuote(risk, pnl float64) float64 {
	if pnl < 0 {
		risk += quoteRiskUp
	} else {
		risk -= quoteRiskDown
	}
	if risk < quoteRiskFloor {
		risk = quoteRiskFloor
	}
	if risk > RiskMax {
		risk = RiskMax
	}
	return risk
}

// AdjustRiskOnSim adjusts risk after a simulated tick based on how far the
// price has drifted from the entry.
func AdjustRiskOnSim(risk, entry, current float64) float64 {
	pct := current - entry
	if entry != 0 {
		pct /= entry
	}
	if pct < 0 {
		pct = -pct
	}
	if pct > simDriftThreshold {
		risk += simRiskUp
	} else if pct < simStableThreshold {
		risk -= simRiskDown
		if risk < simRiskFloor {
			risk = simRiskFloor
		}
	}
	return ClampRisk(risk)
}

// ClampRisk bounds a risk score to [0,100].
func ClampRisk(risk float64) float64 {
	if risk < RiskMin {
		return RiskMin
	}
	if risk > RiskMax {
		return RiskMax
	}
	return risk
}

// WeightedRisk returns the value-weighted average risk of a set of holdings.
// Returns 0 when the total market value is zero.
func WeightedRisk(values, risks []float64) float64 {
	var total, weighted float64
	for i, v := range values {
		total += v
		weighted += v * risks[i]
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// Event is a simulated market headline.
type Event struct {
	Timestamp time.Time
	Headline  string
	Sentiment string // BULLISH, BEARISH, NEUTRAL
	Impact    string // MEDIUM, HIGH
}
