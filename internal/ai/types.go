package ai

import "time"

type Action string

const (
	ActionHold       Action = "HOLD"
	ActionReduce     Action = "REDUCE"
	ActionExit       Action = "EXIT"
	ActionReallocate Action = "REALLOCATE"
	ActionBuyDip     Action = "BUY_DIP"
)

// Recommendation is one strategic action proposed by the analyst model for
// a single symbol (or a portfolio-wide reallocation).
type Recommendation struct {
	ID                string `json:"id"`
	Symbol            string `json:"symbol"`
	Action            Action `json:"action"`
	Confidence        int    `json:"confidence"` // 0-100
	Reasoning         string `json:"reasoning"`
	SuggestedQuantity int64  `json:"suggested_quantity,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Actionable reports whether executing the recommendation would move the book.
func (r Recommendation) Actionable() bool {
	return r.Action != ActionHold
}
