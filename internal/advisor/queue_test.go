package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelhq/sentinel-agent/internal/ai"
)

func rec(id, symbol string, action ai.Action) ai.Recommendation {
	return ai.Recommendation{ID: id, Symbol: symbol, Action: action}
}

func TestReplaceAllSupersedesWholesale(t *testing.T) {
	q := NewQueue()
	q.ReplaceAll([]ai.Recommendation{
		rec("r1", "RELIANCE", ai.ActionExit),
		rec("r2", "TCS", ai.ActionHold),
	})
	require.Equal(t, 2, q.Len())

	q.ReplaceAll([]ai.Recommendation{rec("r3", "RELIANCE", ai.ActionReduce)})

	pending := q.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "r3", pending[0].ID, "old entries never coexist with the new set")

	_, ok := q.Get("r1")
	assert.False(t, ok)
}

func TestDismissIsNoOpWhenAbsent(t *testing.T) {
	q := NewQueue()
	q.ReplaceAll([]ai.Recommendation{rec("r1", "TCS", ai.ActionExit)})

	q.Dismiss("missing")
	assert.Equal(t, 1, q.Len())

	q.Dismiss("r1")
	assert.Equal(t, 0, q.Len())
}

func TestConsumeRemovesOneEntry(t *testing.T) {
	q := NewQueue()
	q.ReplaceAll([]ai.Recommendation{
		rec("r1", "TCS", ai.ActionExit),
		rec("r2", "INFY", ai.ActionReduce),
	})

	q.Consume("r1")

	_, ok := q.Get("r1")
	assert.False(t, ok)
	got, ok := q.Get("r2")
	require.True(t, ok)
	assert.Equal(t, "INFY", got.Symbol)
}

func TestPendingReturnsCopy(t *testing.T) {
	q := NewQueue()
	q.ReplaceAll([]ai.Recommendation{rec("r1", "TCS", ai.ActionExit)})

	pending := q.Pending()
	pending[0].ID = "mutated"

	got, ok := q.Get("r1")
	require.True(t, ok)
	assert.Equal(t, "r1", got.ID)
}
