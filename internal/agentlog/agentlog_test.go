package agentlog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendEvictsOldest(t *testing.T) {
	l := New(3)

	for i := 1; i <= 5; i++ {
		l.Append(Info, fmt.Sprintf("entry %d", i))
	}

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "entry 3", entries[0].Message, "oldest entries dropped first")
	assert.Equal(t, "entry 5", entries[2].Message)
}

func TestAppendStampsEntry(t *testing.T) {
	l := New(10)

	e := l.Append(Warning, "cash is short")
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, Warning, e.Type)
}

func TestEntriesReturnsCopy(t *testing.T) {
	l := New(10)
	l.Append(Action, "executed")

	entries := l.Entries()
	entries[0].Message = "mutated"

	assert.Equal(t, "executed", l.Entries()[0].Message)
}

func TestZeroCapacityFallsBackToDefault(t *testing.T) {
	l := New(0)
	for i := 0; i < DefaultCapacity+10; i++ {
		l.Append(Info, "tick")
	}
	assert.Equal(t, DefaultCapacity, l.Len())
}
