package executor

import (
	"fmt"
	"sync"

	"github.com/sentinelhq/sentinel-agent/internal/agentlog"
	"github.com/sentinelhq/sentinel-agent/internal/ai"
	"github.com/sentinelhq/sentinel-agent/internal/config"
	"github.com/sentinelhq/sentinel-agent/internal/logger"
	"github.com/sentinelhq/sentinel-agent/internal/market"
	"github.com/sentinelhq/sentinel-agent/internal/portfolio"
	"github.com/sentinelhq/sentinel-agent/internal/storage"
)

// TradeRecorder persists realized executions.
type TradeRecorder interface {
	SaveTrade(trade *storage.TradeRecord) error
}

// Notifier pushes execution outcomes to an external channel.
type Notifier interface {
	NotifyTrade(verb, symbol string, qty int64, price float64)
	NotifySkipped(symbol, reason string)
	NotifyError(context string, err error)
}

// Engine reconciles one recommendation at a time against the position book.
// Executions settle at the position's last observed price. A recommendation
// leaves the queue only after its book mutation has committed; precondition
// failures keep it pending so a retry is safe. A single mutex serializes
// the whole lookup-mutate-consume sequence, so a recommendation submitted
// twice (dashboard click racing auto-execute) settles exactly once.
type Engine struct {
	mu       sync.Mutex
	book     *portfolio.Book
	queue    Queue
	activity *agentlog.Log
	recorder TradeRecorder
	notifier Notifier
	cfg      *config.Config
	logger   *logger.Logger
}

// Queue is the minimal surface the engine needs from the recommendation queue.
type Queue interface {
	Get(id string) (ai.Recommendation, bool)
	Dismiss(id string)
	Consume(id string)
	Pending() []ai.Recommendation
}

func NewEngine(
	book *portfolio.Book,
	q Queue,
	activity *agentlog.Log,
	recorder TradeRecorder,
	notifier Notifier,
	cfg *config.Config,
	log *logger.Logger,
) *Engine {
	return &Engine{
		book:     book,
		queue:    q,
		activity: activity,
		recorder: recorder,
		notifier: notifier,
		cfg:      cfg,
		logger:   log,
	}
}

// Execute applies the pending recommendation with the given id.
func (e *Engine) Execute(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.queue.Get(id)
	if !ok {
		return fmt.Errorf("recommendation %q: %w", id, portfolio.ErrNotFound)
	}

	switch rec.Action {
	case ai.ActionHold:
		e.queue.Dismiss(rec.ID)
		e.activity.Append(agentlog.Info, fmt.Sprintf("HOLD %s: %s", rec.Symbol, rec.Reasoning))
		e.logger.Info("HOLD recommendation dismissed", "symbol", rec.Symbol)
		return nil
	case ai.ActionExit:
		return e.executeExit(rec)
	case ai.ActionReduce:
		return e.executeReduce(rec)
	case ai.ActionReallocate, ai.ActionBuyDip:
		return e.executeIncrease(rec)
	default:
		e.queue.Dismiss(rec.ID)
		e.activity.Append(agentlog.Warning, fmt.Sprintf("Unknown action %q for %s, dismissed.", rec.Action, rec.Symbol))
		e.logger.Info("unknown action", "action", rec.Action, "symbol", rec.Symbol)
		return nil
	}
}

// ExecuteAll runs every pending recommendation, used when auto execution is
// enabled. Failures are logged and left queued.
func (e *Engine) ExecuteAll() {
	for _, rec := range e.queue.Pending() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("panic in executor", "symbol", rec.Symbol, "panic", fmt.Sprint(r))
				}
			}()
			if err := e.Execute(rec.ID); err != nil {
				e.logger.Info("execution skipped", "symbol", rec.Symbol, "action", rec.Action, "error", err)
			}
		}()
	}
}

func (e *Engine) executeExit(rec ai.Recommendation) error {
	pos, ok := e.book.FindBySymbol(rec.Symbol)
	if !ok {
		e.activity.Append(agentlog.Warning, fmt.Sprintf("EXIT skipped: no open position for %s.", rec.Symbol))
		return fmt.Errorf("exit %s: %w", rec.Symbol, portfolio.ErrNotFound)
	}

	delta, removed, err := e.book.Close(pos.ID, pos.CurrentPrice)
	if err != nil {
		e.activity.Append(agentlog.Warning, fmt.Sprintf("EXIT skipped: no open position for %s.", rec.Symbol))
		return fmt.Errorf("exit %s: %w", rec.Symbol, err)
	}

	e.queue.Consume(rec.ID)
	e.activity.Append(agentlog.Action,
		fmt.Sprintf("EXECUTED: Exited %s (%d shares) at ₹%.2f.", removed.Symbol, removed.Quantity, removed.CurrentPrice))
	e.recordTrade(&storage.TradeRecord{
		Symbol:           removed.Symbol,
		Verb:             "EXIT",
		Quantity:         removed.Quantity,
		Price:            removed.CurrentPrice,
		CashDelta:        delta,
		RealizedPnL:      removed.UnrealizedPnL,
		RecommendationID: rec.ID,
		Reasoning:        rec.Reasoning,
	})
	if e.notifier != nil {
		e.notifier.NotifyTrade("EXIT", removed.Symbol, removed.Quantity, removed.CurrentPrice)
	}
	e.logger.Info("EXIT executed", "symbol", removed.Symbol, "qty", removed.Quantity, "price", removed.CurrentPrice)
	return nil
}

func (e *Engine) executeReduce(rec ai.Recommendation) error {
	pos, ok := e.book.FindBySymbol(rec.Symbol)
	if !ok {
		e.activity.Append(agentlog.Warning, fmt.Sprintf("REDUCE skipped: no open position for %s.", rec.Symbol))
		return fmt.Errorf("reduce %s: %w", rec.Symbol, portfolio.ErrNotFound)
	}

	// Explicit suggestion wins; default is half of the holding.
	qty := rec.SuggestedQuantity
	if qty <= 0 {
		qty = pos.Quantity / 2
	}

	sold, delta, err := e.book.Reduce(pos.ID, qty, pos.CurrentPrice)
	if err != nil {
		e.activity.Append(agentlog.Warning, fmt.Sprintf("REDUCE skipped: no open position for %s.", rec.Symbol))
		return fmt.Errorf("reduce %s: %w", rec.Symbol, err)
	}

	e.queue.Consume(rec.ID)
	e.activity.Append(agentlog.Action,
		fmt.Sprintf("EXECUTED: Reduced %s by %d shares at ₹%.2f.", pos.Symbol, sold, pos.CurrentPrice))
	e.recordTrade(&storage.TradeRecord{
		Symbol:           pos.Symbol,
		Verb:             "REDUCE",
		Quantity:         sold,
		Price:            pos.CurrentPrice,
		CashDelta:        delta,
		RealizedPnL:      market.UnrealizedPnL(pos.Type == portfolio.Long, pos.EntryPrice, pos.CurrentPrice, sold),
		RecommendationID: rec.ID,
		Reasoning:        rec.Reasoning,
	})
	if e.notifier != nil {
		e.notifier.NotifyTrade("REDUCE", pos.Symbol, sold, pos.CurrentPrice)
	}
	e.logger.Info("REDUCE executed", "symbol", pos.Symbol, "qty", sold, "price", pos.CurrentPrice)
	return nil
}

func (e *Engine) executeIncrease(rec ai.Recommendation) error {
	pos, ok := e.book.FindBySymbol(rec.Symbol)
	if !ok {
		if rec.Action == ai.ActionReallocate {
			// Portfolio-wide reallocation: acknowledged, nothing to settle.
			e.queue.Consume(rec.ID)
			e.activity.Append(agentlog.Info,
				fmt.Sprintf("REALLOCATE acknowledged for %s: no matching position.", rec.Symbol))
			return nil
		}
		e.activity.Append(agentlog.Warning, fmt.Sprintf("%s skipped: no open position for %s.", rec.Action, rec.Symbol))
		return fmt.Errorf("%s %s: %w", rec.Action, rec.Symbol, portfolio.ErrNotFound)
	}

	qty := rec.SuggestedQuantity
	if qty <= 0 {
		qty = e.cfg.Trading.DefaultBuyQty
	}

	delta, err := e.book.Increase(pos.ID, qty, pos.CurrentPrice)
	if err != nil {
		cost := pos.CurrentPrice * float64(qty)
		e.activity.Append(agentlog.Warning,
			fmt.Sprintf("%s skipped for %s: need ₹%.2f, cash ₹%.2f.", rec.Action, rec.Symbol, cost, e.book.Cash()))
		if e.notifier != nil {
			e.notifier.NotifySkipped(rec.Symbol, fmt.Sprintf("%s needs ₹%.2f", rec.Action, cost))
		}
		return fmt.Errorf("%s %s: %w", rec.Action, rec.Symbol, err)
	}

	e.queue.Consume(rec.ID)
	e.activity.Append(agentlog.Action,
		fmt.Sprintf("EXECUTED: Added %d shares to %s at ₹%.2f.", qty, pos.Symbol, pos.CurrentPrice))
	e.recordTrade(&storage.TradeRecord{
		Symbol:           pos.Symbol,
		Verb:             "INCREASE",
		Quantity:         qty,
		Price:            pos.CurrentPrice,
		CashDelta:        delta,
		RecommendationID: rec.ID,
		Reasoning:        rec.Reasoning,
	})
	if e.notifier != nil {
		e.notifier.NotifyTrade(string(rec.Action), pos.Symbol, qty, pos.CurrentPrice)
	}
	e.logger.Info("position increased", "symbol", pos.Symbol, "qty", qty, "price", pos.CurrentPrice, "action", rec.Action)
	return nil
}

func (e *Engine) recordTrade(trade *storage.TradeRecord) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.SaveTrade(trade); err != nil {
		e.logger.Error("save trade", "error", err)
		if e.notifier != nil {
			e.notifier.NotifyError("save trade", err)
		}
	}
}
