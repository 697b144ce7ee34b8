package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnrealizedPnL(t *testing.T) {
	tests := []struct {
		name     string
		long     bool
		entry    float64
		current  float64
		qty      int64
		expected float64
	}{
		{"long gain", true, 100, 120, 100, 2000},
		{"long loss", true, 100, 90, 50, -500},
		{"short gain", false, 100, 90, 50, 500},
		{"short loss", false, 100, 120, 100, -2000},
		{"flat", true, 100, 100, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UnrealizedPnL(tt.long, tt.entry, tt.current, tt.qty))
		})
	}
}

func TestAdjustRiskOnQuote(t *testing.T) {
	assert.Equal(t, 55.0, AdjustRiskOnQuote(50, -1), "losing tick raises risk by 5")
	assert.Equal(t, 48.0, AdjustRiskOnQuote(50, 1), "winning tick lowers risk by 2")
	assert.Equal(t, 48.0, AdjustRiskOnQuote(50, 0), "flat tick counts as non-negative")
	assert.Equal(t, 10.0, AdjustRiskOnQuote(11, 100), "floor at 10 on the quote path")
	assert.Equal(t, 100.0, AdjustRiskOnQuote(98, -1), "ceiling at 100")
}

func TestAdjustRiskOnSim(t *testing.T) {
	// drift beyond 5% of entry raises risk
	assert.Equal(t, 52.0, AdjustRiskOnSim(50, 100, 110))
	// drift below 1% decays risk, floored at 10
	assert.Equal(t, 49.0, AdjustRiskOnSim(50, 100, 100.5))
	assert.Equal(t, 10.0, AdjustRiskOnSim(10, 100, 100))
	// between thresholds nothing changes
	assert.Equal(t, 50.0, AdjustRiskOnSim(50, 100, 103))
	// never exceeds 100
	assert.Equal(t, 100.0, AdjustRiskOnSim(99.5, 100, 200))
}

func TestClampRisk(t *testing.T) {
	assert.Equal(t, 0.0, ClampRisk(-5))
	assert.Equal(t, 100.0, ClampRisk(150))
	assert.Equal(t, 42.0, ClampRisk(42))
}

func TestWeightedRisk(t *testing.T) {
	assert.Equal(t, 0.0, WeightedRisk(nil, nil), "no positions means zero risk")
	assert.Equal(t, 0.0, WeightedRisk([]float64{0, 0}, []float64{50, 80}), "zero value means zero risk")

	// 1000@20 and 3000@60 -> (1000*20 + 3000*60)/4000 = 50
	got := WeightedRisk([]float64{1000, 3000}, []float64{20, 60})
	assert.InDelta(t, 50.0, got, 1e-9)
}

func TestSimulatorNextPriceStaysPositive(t *testing.T) {
	sim := NewSimulator(1, -100)

	price := 0.02
	for i := 0; i < 1000; i++ {
		price = sim.NextPrice(price, 100)
		assert.Greater(t, price, 0.0)
	}
}

func TestSimulatorIsDeterministicPerSeed(t *testing.T) {
	a := NewSimulator(42, 1)
	b := NewSimulator(42, 1)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.NextPrice(100, 50), b.NextPrice(100, 50))
	}
}

func TestSimulatorNextEvent(t *testing.T) {
	sim := NewSimulator(7, 0)

	var fired int
	for i := 0; i < 500; i++ {
		if ev := sim.NextEvent(); ev != nil {
			fired++
			assert.NotEmpty(t, ev.Headline)
			assert.Contains(t, []string{"BULLISH", "BEARISH", "NEUTRAL"}, ev.Sentiment)
			assert.Contains(t, []string{"MEDIUM", "HIGH"}, ev.Impact)
		}
	}
	// events fire occasionally, not every tick
	assert.Greater(t, fired, 0)
	assert.Less(t, fired, 300)
}
