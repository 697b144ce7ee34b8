package market

import (
	"math/rand"
	"time"
)

const (
	// volatility derived from risk score, in percent of price
	volRiskDivisor = 20.0
	volBase        = 0.5

	trendDriftScale = 0.001
	priceFloor      = 0.01

	eventChance     = 0.2
	eventHighChance = 0.7
)

var headlines = []struct {
	Text      string
	Sentiment string
}{
	{"Sensex crosses 75,000 mark for the first time led by banking rally.", "BULLISH"},
	{"Nifty 50 slides below 22,000 amid weak global cues and FII selling.", "BEARISH"},
	{"RBI Monetary Policy Committee maintains status quo on repo rate.", "NEUTRAL"},
	{"Major IT companies report steady growth in Q3 earnings.", "BULLISH"},
	{"Rupee hits all-time low against the US dollar impacting importers.", "BEARISH"},
}

// Simulator produces artificial price movement when no live source is
// available. It is not a predictor; randomness is injected so tests can
// pin the sequence.
type Simulator struct {
	rng       *rand.Rand
	TrendBias float64 // global drift, positive = bullish
	now       func() time.Time
}

func NewSimulator(seed int64, trendBias float64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		rng:       rand.New(rand.NewSource(seed)),
		TrendBias: trendBias,
		now:       time.Now,
	}
}

// NextPrice perturbs the current price by a symmetric random step scaled by
// risk-derived volatility plus a small deterministic trend drift. Never
// returns a price at or below zero.
func (s *Simulator) NextPrice(current, riskScore float64) float64 {
	volatility := riskScore/volRiskDivisor + volBase
	changePct := (s.rng.Float64() - 0.5) * 2 * (volatility / 100)
	next := current*(1+changePct) + current*s.TrendBias*trendDriftScale
	if next < priceFloor {
		next = priceFloor
	}
	return next
}

// NextEvent occasionally emits a market headline. Returns nil most ticks.
func (s *Simulator) NextEvent() *Event {
	if s.rng.Float64() > eventChance {
		return nil
	}
	h := headlines[s.rng.Intn(len(headlines))]
	impact := "MEDIUM"
	if s.rng.Float64() > eventHighChance {
		impact = "HIGH"
	}
	return &Event{
		Timestamp: s.now(),
		Headline:  h.Text,
		Sentiment: h.Sentiment,
		Impact:    impact,
	}
}
