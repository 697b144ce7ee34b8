package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelhq/sentinel-agent/internal/market"
)

func TestOpenValidation(t *testing.T) {
	book := NewBook(1000)

	_, err := book.Open("RELIANCE", "", 0, 100, Long)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = book.Open("RELIANCE", "", -5, 100, Long)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = book.Open("RELIANCE", "", 10, 0, Long)
	assert.ErrorIs(t, err, ErrInvalidInput)

	pos, err := book.Open("reliance", "Reliance Industries", 10, 100, Long)
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE", pos.Symbol)
	assert.Equal(t, 100.0, pos.EntryPrice)
	assert.Equal(t, 100.0, pos.CurrentPrice)
	assert.Equal(t, market.DefaultRiskScore, pos.RiskScore)
	assert.NotEmpty(t, pos.ID)
}

func TestCloseCreditsCash(t *testing.T) {
	book := NewBook(0)
	pos, err := book.Open("TCS", "", 100, 100, Long)
	require.NoError(t, err)

	delta, removed, err := book.Close(pos.ID, 120)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, delta)
	assert.Equal(t, int64(100), removed.Quantity)
	assert.Equal(t, 12000.0, book.Cash())

	_, ok := book.FindBySymbol("TCS")
	assert.False(t, ok, "closed position must be removed")

	_, _, err = book.Close(pos.ID, 120)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReduceClampsToHeld(t *testing.T) {
	book := NewBook(0)
	pos, err := book.Open("INFY", "", 100, 50, Long)
	require.NoError(t, err)

	sold, delta, err := book.Reduce(pos.ID, 500, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(100), sold, "never sells more than held")
	assert.Equal(t, 6000.0, delta)
	assert.Equal(t, 6000.0, book.Cash())

	_, ok := book.FindBySymbol("INFY")
	assert.False(t, ok, "reduce to zero removes the position")
}

func TestReducePartial(t *testing.T) {
	book := NewBook(0)
	pos, err := book.Open("INFY", "", 100, 50, Long)
	require.NoError(t, err)

	sold, delta, err := book.Reduce(pos.ID, 40, 55)
	require.NoError(t, err)
	assert.Equal(t, int64(40), sold)
	assert.Equal(t, 2200.0, delta)

	remaining, ok := book.FindBySymbol("INFY")
	require.True(t, ok)
	assert.Equal(t, int64(60), remaining.Quantity)

	_, _, err = book.Reduce("missing", 10, 55)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncreaseIsAllOrNothing(t *testing.T) {
	book := NewBook(500)
	pos, err := book.Open("HDFC", "", 5, 100, Long)
	require.NoError(t, err)
	require.Equal(t, 500.0, book.Cash())

	_, err = book.Increase(pos.ID, 10, 100)
	assert.ErrorIs(t, err, ErrInsufficientCash)
	assert.Equal(t, 500.0, book.Cash(), "failed buy must not touch cash")

	unchanged, ok := book.FindBySymbol("HDFC")
	require.True(t, ok)
	assert.Equal(t, int64(5), unchanged.Quantity, "failed buy must not touch quantity")

	delta, err := book.Increase(pos.ID, 4, 100)
	require.NoError(t, err)
	assert.Equal(t, -400.0, delta)
	assert.Equal(t, 100.0, book.Cash())
	assert.GreaterOrEqual(t, book.Cash(), 0.0)

	grown, _ := book.FindBySymbol("HDFC")
	assert.Equal(t, int64(9), grown.Quantity)
}

func TestApplyQuotes(t *testing.T) {
	book := NewBook(0)
	_, err := book.Open("SBIN", "", 10, 100, Long)
	require.NoError(t, err)
	_, err = book.Open("WIPRO", "", 10, 100, Short)
	require.NoError(t, err)

	updated := book.ApplyQuotes(market.PriceMap{
		"SBIN":  {Price: 90, Source: "https://example.com/quote"},
		"WIPRO": {Price: 90},
	})
	assert.Equal(t, 2, updated)

	p, _ := book.FindBySymbol("SBIN")
	assert.Equal(t, 90.0, p.CurrentPrice)
	assert.Equal(t, -100.0, p.UnrealizedPnL)
	assert.Equal(t, 55.0, p.RiskScore, "losing position gains risk")
	assert.Equal(t, "https://example.com/quote", p.SourceURL)

	sp, _ := book.FindBySymbol("WIPRO")
	assert.Equal(t, 100.0, sp.UnrealizedPnL, "short profits from a drop")
	assert.Equal(t, 48.0, sp.RiskScore)

	// symbols absent from the map keep their prices
	updated = book.ApplyQuotes(market.PriceMap{"UNKNOWN": {Price: 1}})
	assert.Equal(t, 0, updated)
	p, _ = book.FindBySymbol("SBIN")
	assert.Equal(t, 90.0, p.CurrentPrice)
}

func TestSnapshotAggregates(t *testing.T) {
	book := NewBook(1000)
	snap := book.Snapshot()
	assert.Equal(t, 0.0, snap.RiskScore, "empty book has zero weighted risk")
	assert.Equal(t, 1000.0, snap.TotalValue)

	_, err := book.Open("A", "", 10, 100, Long) // value 1000
	require.NoError(t, err)
	_, err = book.Open("B", "", 30, 100, Long) // value 3000
	require.NoError(t, err)

	snap = book.Snapshot()
	assert.Equal(t, 5000.0, snap.TotalValue)
	assert.Equal(t, 0.0, snap.TotalPnL)
	assert.InDelta(t, 50.0, snap.RiskScore, 1e-9)
	assert.InDelta(t, 20.0, snap.Positions[0].AllocationPct, 1e-9)
	assert.InDelta(t, 60.0, snap.Positions[1].AllocationPct, 1e-9)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	book := NewBook(2500)
	_, err := book.Open("A", "Alpha", 10, 100, Long)
	require.NoError(t, err)
	_, err = book.Open("B", "Beta", 5, 200, Short)
	require.NoError(t, err)
	book.ApplyQuotes(market.PriceMap{"A": {Price: 110}})

	snap := book.Snapshot()

	restored := NewBook(0)
	restored.Restore(snap)
	got := restored.Snapshot()

	assert.Equal(t, snap.Cash, got.Cash)
	require.Len(t, got.Positions, 2)
	assert.Equal(t, "A", got.Positions[0].Symbol, "restore preserves order")
	assert.Equal(t, "B", got.Positions[1].Symbol)
	assert.Equal(t, snap.Positions[0].UnrealizedPnL, got.Positions[0].UnrealizedPnL)
	assert.Equal(t, snap.TotalValue, got.TotalValue)
}

func TestRiskScoreAlwaysInRange(t *testing.T) {
	book := NewBook(0)
	_, err := book.Open("A", "", 10, 100, Long)
	require.NoError(t, err)

	price := 100.0
	for i := 0; i < 50; i++ {
		price *= 0.9 // keep losing
		book.ApplyQuotes(market.PriceMap{"A": {Price: price}})
		p, _ := book.FindBySymbol("A")
		assert.GreaterOrEqual(t, p.RiskScore, 10.0)
		assert.LessOrEqual(t, p.RiskScore, 100.0)
	}
	for i := 0; i < 100; i++ {
		price *= 1.1 // keep winning
		book.ApplyQuotes(market.PriceMap{"A": {Price: price}})
		p, _ := book.FindBySymbol("A")
		assert.GreaterOrEqual(t, p.RiskScore, 10.0)
		assert.LessOrEqual(t, p.RiskScore, 100.0)
	}
}
