// Package advisor holds the pending, unexecuted recommendations produced by
// the analysis source. A fresh analysis run supersedes the previous set
// wholesale; individual entries leave the queue only through execution or
// dismissal.
package advisor

import (
	"sync"

	"github.com/sentinelhq/sentinel-agent/internal/ai"
)

type Queue struct {
	mu      sync.Mutex
	pending []ai.Recommendation
}

func NewQueue() *Queue {
	return &Queue{}
}

// ReplaceAll discards the previous set unconditionally and installs the new
// one. Atomic: readers never observe a mix of old and new entries.
func (q *Queue) ReplaceAll(recs []ai.Recommendation) {
	next := make([]ai.Recommendation, len(recs))
	copy(next, recs)

	q.mu.Lock()
	q.pending = next
	q.mu.Unlock()
}

// Get returns the pending recommendation with the given id.
func (q *Queue) Get(id string) (ai.Recommendation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, r := range q.pending {
		if r.ID == id {
			return r, true
		}
	}
	return ai.Recommendation{}, false
}

// Dismiss removes one entry. No-op if absent.
func (q *Queue) Dismiss(id string) {
	q.remove(id)
}

// Consume removes one entry as part of a successful execution. Call only
// after the book change has committed, so a failed execution leaves the
// recommendation queued for retry.
func (q *Queue) Consume(id string) {
	q.remove(id)
}

// Pending returns a copy of the queue in insertion order.
func (q *Queue) Pending() []ai.Recommendation {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]ai.Recommendation, len(q.pending))
	copy(out, q.pending)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, r := range q.pending {
		if r.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}
