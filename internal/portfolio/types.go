package portfolio

import "time"

type PositionType string

const (
	Long  PositionType = "LONG"
	Short PositionType = "SHORT"
)

// Position is one open directional holding.
type Position struct {
	ID           string       `json:"id"`
	Symbol       string       `json:"symbol"`
	Name         string       `json:"name"`
	EntryPrice   float64      `json:"entry_price"`
	CurrentPrice float64      `json:"current_price"`
	Quantity     int64        `json:"quantity"`
	Type         PositionType `json:"type"`

	UnrealizedPnL float64   `json:"unrealized_pnl"`
	RiskScore     float64   `json:"risk_score"`
	AllocationPct float64   `json:"allocation_pct"`
	LastUpdated   time.Time `json:"last_updated"`
	SourceURL     string    `json:"source_url,omitempty"`
}

// MarketValue is the position's worth at the last observed price.
func (p Position) MarketValue() float64 {
	return p.CurrentPrice * float64(p.Quantity)
}

// Snapshot is a consistent read-only view of the book. Positions preserve
// their insertion order.
type Snapshot struct {
	Cash       float64    `json:"cash"`
	Positions  []Position `json:"positions"`
	TotalValue float64    `json:"total_value"`
	TotalPnL   float64    `json:"total_pnl"`
	RiskScore  float64    `json:"risk_score"`
	TakenAt    time.Time  `json:"taken_at"`
}
