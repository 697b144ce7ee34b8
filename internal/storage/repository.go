package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sentinelhq/sentinel-agent/internal/portfolio"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Trades

func (r *Repository) SaveTrade(trade *TradeRecord) error {
	return r.db.Create(trade).Error
}

func (r *Repository) GetRecentTrades(limit int) ([]TradeRecord, error) {
	var trades []TradeRecord
	err := r.db.Order("created_at DESC").Limit(limit).Find(&trades).Error
	return trades, err
}

func (r *Repository) GetTodayRealizedPnL() (float64, error) {
	today := time.Now().Truncate(24 * time.Hour)
	var total float64
	err := r.db.Model(&TradeRecord{}).
		Where("created_at >= ?", today).
		Select("COALESCE(SUM(realized_pnl), 0)").Scan(&total).Error
	return total, err
}

func (r *Repository) GetTotalRealizedPnL() (float64, error) {
	var total float64
	err := r.db.Model(&TradeRecord{}).
		Select("COALESCE(SUM(realized_pnl), 0)").Scan(&total).Error
	return total, err
}

// Analysis runs

func (r *Repository) SaveAnalysisRun(run *AnalysisRun) error {
	return r.db.Create(run).Error
}

// Book snapshots

func (r *Repository) SaveBookSnapshot(snap portfolio.Snapshot) error {
	positionsJSON, err := json.Marshal(snap.Positions)
	if err != nil {
		return fmt.Errorf("marshal positions: %w", err)
	}
	record := &BookSnapshot{
		Cash:           snap.Cash,
		TotalValue:     snap.TotalValue,
		TotalPnL:       snap.TotalPnL,
		RiskScore:      snap.RiskScore,
		PositionsCount: len(snap.Positions),
		PositionsJSON:  string(positionsJSON),
	}
	return r.db.Create(record).Error
}

// GetLatestBookSnapshot restores the most recent persisted book state.
// Returns gorm.ErrRecordNotFound when nothing has been saved yet.
func (r *Repository) GetLatestBookSnapshot() (portfolio.Snapshot, error) {
	var record BookSnapshot
	if err := r.db.Order("created_at DESC").First(&record).Error; err != nil {
		return portfolio.Snapshot{}, err
	}

	snap := portfolio.Snapshot{
		Cash:       record.Cash,
		TotalValue: record.TotalValue,
		TotalPnL:   record.TotalPnL,
		RiskScore:  record.RiskScore,
		TakenAt:    record.CreatedAt,
	}
	if record.PositionsJSON != "" {
		if err := json.Unmarshal([]byte(record.PositionsJSON), &snap.Positions); err != nil {
			return portfolio.Snapshot{}, fmt.Errorf("unmarshal positions: %w", err)
		}
	}
	return snap, nil
}
