package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sentinelhq/sentinel-agent/internal/advisor"
	"github.com/sentinelhq/sentinel-agent/internal/agentlog"
	"github.com/sentinelhq/sentinel-agent/internal/ai"
	"github.com/sentinelhq/sentinel-agent/internal/config"
	"github.com/sentinelhq/sentinel-agent/internal/executor"
	"github.com/sentinelhq/sentinel-agent/internal/logger"
	"github.com/sentinelhq/sentinel-agent/internal/market"
	"github.com/sentinelhq/sentinel-agent/internal/portfolio"
	"github.com/sentinelhq/sentinel-agent/internal/storage"
)

var (
	// ErrBusy rejects a refresh or analysis requested while one is in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrSourceUnavailable marks a transient external fetch failure;
	// previous state is retained and the caller may retry.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// PriceSource asynchronously maps symbols to quotes. An empty map means
// "no update available", not an error.
type PriceSource interface {
	FetchPrices(ctx context.Context, symbols []string) (market.PriceMap, error)
}

// AnalysisSource produces recommendations for a portfolio snapshot.
type AnalysisSource interface {
	Analyze(ctx context.Context, snap portfolio.Snapshot, events []market.Event) ([]ai.Recommendation, string, error)
}

// Store persists cycle artifacts.
type Store interface {
	SaveAnalysisRun(run *storage.AnalysisRun) error
	SaveBookSnapshot(snap portfolio.Snapshot) error
}

const maxRecentEvents = 10

// Scheduler drives the agent's periodic cycles: price refresh, portfolio
// analysis and (optionally) automatic execution. One refresh and one
// analysis may be in flight at a time; overlapping requests are rejected
// with ErrBusy so two cycles can never interleave writes into the book.
type Scheduler struct {
	book     *portfolio.Book
	queue    *advisor.Queue
	prices   PriceSource
	analysis AnalysisSource
	engine   *executor.Engine
	sim      *market.Simulator
	store    Store
	activity *agentlog.Log
	cfg      *config.Config
	logger   *logger.Logger

	refreshBusy  atomic.Bool
	analysisBusy atomic.Bool

	recentEvents []market.Event
}

func NewScheduler(
	book *portfolio.Book,
	queue *advisor.Queue,
	prices PriceSource,
	analysis AnalysisSource,
	engine *executor.Engine,
	sim *market.Simulator,
	store Store,
	activity *agentlog.Log,
	cfg *config.Config,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		book:     book,
		queue:    queue,
		prices:   prices,
		analysis: analysis,
		engine:   engine,
		sim:      sim,
		store:    store,
		activity: activity,
		cfg:      cfg,
		logger:   log,
	}
}

// Run blocks until ctx is cancelled, driving refresh and analysis tickers.
func (s *Scheduler) Run(ctx context.Context) {
	refresh := time.NewTicker(s.cfg.RefreshInterval())
	defer refresh.Stop()
	analysis := time.NewTicker(s.cfg.AnalysisInterval())
	defer analysis.Stop()

	s.logger.Info("scheduler started",
		"refresh_interval", s.cfg.Trading.RefreshInterval,
		"analysis_interval", s.cfg.Trading.AnalysisInterval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-refresh.C:
			s.runGuarded(ctx, "price refresh", s.RefreshPrices)
		case <-analysis.C:
			s.runGuarded(ctx, "analysis", s.RunAnalysis)
		}
	}
}

func (s *Scheduler) runGuarded(ctx context.Context, name string, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in scheduler cycle", "cycle", name, "panic", fmt.Sprint(r))
		}
	}()
	if err := fn(ctx); err != nil && !errors.Is(err, ErrBusy) {
		s.logger.Error(name+" cycle", "error", err)
	}
}

// RefreshPrices updates every position's current price: from the live
// source when one is configured, otherwise from the simulator. On a failed
// or empty fetch the previous prices and risk scores are retained.
func (s *Scheduler) RefreshPrices(ctx context.Context) error {
	if !s.refreshBusy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.refreshBusy.Store(false)

	snap := s.book.Snapshot()
	if len(snap.Positions) == 0 {
		return nil
	}

	if s.prices == nil {
		s.simulateTick()
		return nil
	}

	s.activity.Append(agentlog.Thought, "Connecting to market data (NSE/BSE)...")

	symbols := make([]string, 0, len(snap.Positions))
	for _, p := range snap.Positions {
		symbols = append(symbols, p.Symbol)
	}

	prices, err := s.prices.FetchPrices(ctx, symbols)
	if err != nil {
		s.activity.Append(agentlog.Warning, "Could not fetch new prices. Retrying...")
		s.logger.Error("fetch prices", "error", err)
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if len(prices) == 0 {
		s.activity.Append(agentlog.Warning, "Could not fetch new prices. Retrying...")
		return nil
	}

	updated := s.book.ApplyQuotes(prices)
	s.activity.Append(agentlog.Info, "Prices updated from live market sources.")
	s.logger.Info("prices refreshed", "updated", updated, "symbols", len(symbols))
	return nil
}

func (s *Scheduler) simulateTick() {
	moved := s.book.SimulateTick(s.sim)
	s.logger.Debug("simulated tick", "positions", moved)

	if ev := s.sim.NextEvent(); ev != nil {
		s.recentEvents = append(s.recentEvents, *ev)
		if len(s.recentEvents) > maxRecentEvents {
			s.recentEvents = s.recentEvents[len(s.recentEvents)-maxRecentEvents:]
		}
		s.activity.Append(agentlog.Info, fmt.Sprintf("Market event [%s]: %s", ev.Sentiment, ev.Headline))
	}
}

// RunAnalysis asks the analysis source for a fresh recommendation set and
// replaces the pending queue with it. A failed run leaves the queue
// untouched.
func (s *Scheduler) RunAnalysis(ctx context.Context) error {
	if !s.analysisBusy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.analysisBusy.Store(false)

	snap := s.book.Snapshot()
	if len(snap.Positions) == 0 {
		s.logger.Debug("no positions, skipping analysis")
		return nil
	}

	s.activity.Append(agentlog.Thought, "Agent evaluating portfolio performance...")

	recs, raw, err := s.analysis.Analyze(ctx, snap, s.recentEvents)
	if err != nil {
		s.activity.Append(agentlog.Warning, "Analysis failed. Existing recommendations retained.")
		s.saveAnalysisRun(len(snap.Positions), 0, raw, nil, err)
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	if len(recs) > 0 {
		s.queue.ReplaceAll(recs)
		s.activity.Append(agentlog.Action, fmt.Sprintf("Agent generated %d recommendations.", len(recs)))
	} else {
		s.activity.Append(agentlog.Thought, "Analysis complete. Strategy remains effective.")
	}

	s.saveAnalysisRun(len(snap.Positions), len(recs), raw, recs, nil)
	s.saveBookSnapshot()

	if s.cfg.Trading.AutoExecute && len(recs) > 0 {
		s.engine.ExecuteAll()
		s.saveBookSnapshot()
	}

	s.logger.Info("analysis cycle completed", "recommendations", len(recs))
	return nil
}

func (s *Scheduler) saveAnalysisRun(positions, count int, raw string, recs []ai.Recommendation, runErr error) {
	if s.store == nil {
		return
	}
	run := &storage.AnalysisRun{
		PositionsCount:      positions,
		RecommendationCount: count,
		RawResponse:         raw,
	}
	if len(recs) > 0 {
		if data, err := json.Marshal(recs); err == nil {
			run.RecommendationsJSON = string(data)
		}
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := s.store.SaveAnalysisRun(run); err != nil {
		s.logger.Error("save analysis run", "error", err)
	}
}

func (s *Scheduler) saveBookSnapshot() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveBookSnapshot(s.book.Snapshot()); err != nil {
		s.logger.Error("save book snapshot", "error", err)
	}
}
