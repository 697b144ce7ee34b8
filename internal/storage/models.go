package storage

import "time"

// TradeRecord is one realized execution against the book.
type TradeRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Symbol   string  `gorm:"index;not null" json:"symbol"`
	Verb     string  `gorm:"not null" json:"verb"` // OPEN, EXIT, REDUCE, INCREASE
	Quantity int64   `gorm:"not null" json:"quantity"`
	Price    float64 `gorm:"not null" json:"price"`

	CashDelta        float64 `json:"cash_delta"`
	RealizedPnL      float64 `gorm:"column:realized_pnl" json:"realized_pnl"`
	RecommendationID string  `json:"recommendation_id"`
	Reasoning        string  `gorm:"type:text" json:"reasoning"`
}

// AnalysisRun records one pass of the analysis source, successful or not.
type AnalysisRun struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	PositionsCount      int    `json:"positions_count"`
	RecommendationCount int    `json:"recommendation_count"`
	RawResponse         string `gorm:"type:text" json:"raw_response"`
	RecommendationsJSON string `gorm:"type:text" json:"recommendations_json"`
	Error               string `json:"error"`
}

// BookSnapshot persists the position book for restore-on-start. Positions
// are stored as ordered JSON so the restore preserves insertion order.
type BookSnapshot struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Cash           float64 `json:"cash"`
	TotalValue     float64 `json:"total_value"`
	TotalPnL       float64 `gorm:"column:total_pnl" json:"total_pnl"`
	RiskScore      float64 `json:"risk_score"`
	PositionsCount int     `json:"positions_count"`
	PositionsJSON  string  `gorm:"type:text" json:"positions_json"`
}
