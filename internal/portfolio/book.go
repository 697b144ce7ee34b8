package portfolio

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelhq/sentinel-agent/internal/market"
)

// Book is the authoritative collection of open positions plus free cash.
// A single mutex serializes every mutation; the entity count is small, so
// coarse locking beats per-position bookkeeping. Every mutating operation
// either fully applies (position and cash together) or leaves the book
// untouched.
type Book struct {
	mu        sync.Mutex
	cash      float64
	positions []*Position
	now       func() time.Time
}

func NewBook(cash float64) *Book {
	return &Book{cash: cash, now: time.Now}
}

// Open creates a position at the given price. Entry price equals current
// price and risk is seeded at the neutral default.
func (b *Book) Open(symbol, name string, qty int64, price float64, ptype PositionType) (Position, error) {
	if qty <= 0 || price <= 0 {
		return Position{}, ErrInvalidInput
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if name == "" {
		name = symbol
	}
	if ptype == "" {
		ptype = Long
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p := &Position{
		ID:           "pos_" + uuid.NewString(),
		Symbol:       symbol,
		Name:         name,
		EntryPrice:   price,
		CurrentPrice: price,
		Quantity:     qty,
		Type:         ptype,
		RiskScore:    market.DefaultRiskScore,
		LastUpdated:  b.now(),
	}
	b.positions = append(b.positions, p)
	return *p, nil
}

// Close fully exits a position at execPrice, crediting cash by
// execPrice × quantity. Returns the cash delta and the removed position.
func (b *Book) Close(id string, execPrice float64) (float64, Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return 0, Position{}, ErrNotFound
	}

	p := b.positions[idx]
	delta := execPrice * float64(p.Quantity)
	removed := *p

	b.positions = append(b.positions[:idx], b.positions[idx+1:]...)
	b.cash += delta
	return delta, removed, nil
}

// Reduce sells part of a position at execPrice. The requested quantity is
// clamped to the held quantity; a reduce that empties the position removes
// it. Returns the actually sold quantity and the cash delta.
func (b *Book) Reduce(id string, qty int64, execPrice float64) (int64, float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return 0, 0, ErrNotFound
	}

	p := b.positions[idx]
	if qty > p.Quantity {
		qty = p.Quantity
	}
	if qty <= 0 {
		return 0, 0, nil
	}

	delta := execPrice * float64(qty)
	p.Quantity -= qty
	b.cash += delta

	if p.Quantity == 0 {
		b.positions = append(b.positions[:idx], b.positions[idx+1:]...)
	} else {
		p.UnrealizedPnL = market.UnrealizedPnL(p.Type == Long, p.EntryPrice, p.CurrentPrice, p.Quantity)
	}
	return qty, delta, nil
}

// Increase buys qty more of a position at execPrice. All-or-nothing: with
// insufficient cash nothing changes.
func (b *Book) Increase(id string, qty int64, execPrice float64) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return 0, ErrNotFound
	}
	if qty <= 0 || execPrice <= 0 {
		return 0, ErrInvalidInput
	}

	cost := execPrice * float64(qty)
	if b.cash < cost {
		return 0, ErrInsufficientCash
	}

	p := b.positions[idx]
	p.Quantity += qty
	b.cash -= cost
	p.UnrealizedPnL = market.UnrealizedPnL(p.Type == Long, p.EntryPrice, p.CurrentPrice, p.Quantity)
	return -cost, nil
}

// ApplyQuotes refreshes current prices from a live quote map, recomputing
// PnL and risk for every matched position. Symbols absent from the map keep
// their previous price. Returns the number of positions updated.
func (b *Book) ApplyQuotes(quotes market.PriceMap) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	updated := 0
	now := b.now()
	for _, p := range b.positions {
		q, ok := quotes[p.Symbol]
		if !ok {
			continue
		}
		p.CurrentPrice = q.Price
		p.UnrealizedPnL = market.UnrealizedPnL(p.Type == Long, p.EntryPrice, q.Price, p.Quantity)
		p.RiskScore = market.AdjustRiskOnQuote(p.RiskScore, p.UnrealizedPnL)
		p.LastUpdated = now
		if q.Source != "" {
			p.SourceURL = q.Source
		}
		updated++
	}
	return updated
}

// SimulateTick advances every position by one simulated price step.
// Returns the number of positions moved.
func (b *Book) SimulateTick(sim *market.Simulator) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for _, p := range b.positions {
		p.CurrentPrice = sim.NextPrice(p.CurrentPrice, p.RiskScore)
		p.UnrealizedPnL = market.UnrealizedPnL(p.Type == Long, p.EntryPrice, p.CurrentPrice, p.Quantity)
		p.RiskScore = market.AdjustRiskOnSim(p.RiskScore, p.EntryPrice, p.CurrentPrice)
		p.LastUpdated = now
	}
	return len(b.positions)
}

// FindBySymbol returns a copy of the first open position for symbol.
func (b *Book) FindBySymbol(symbol string) (Position, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.positions {
		if p.Symbol == symbol {
			return *p, true
		}
	}
	return Position{}, false
}

func (b *Book) Cash() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cash
}

// Snapshot returns a consistent copy of the book with derived aggregates:
// total value, total PnL, value-weighted risk and per-position allocation.
func (b *Book) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		Cash:      b.cash,
		Positions: make([]Position, 0, len(b.positions)),
		TakenAt:   b.now(),
	}

	values := make([]float64, 0, len(b.positions))
	risks := make([]float64, 0, len(b.positions))
	var positionsValue float64

	for _, p := range b.positions {
		v := p.MarketValue()
		positionsValue += v
		snap.TotalPnL += p.UnrealizedPnL
		values = append(values, v)
		risks = append(risks, p.RiskScore)
		snap.Positions = append(snap.Positions, *p)
	}

	snap.TotalValue = b.cash + positionsValue
	snap.RiskScore = market.WeightedRisk(values, risks)

	for i := range snap.Positions {
		if snap.TotalValue > 0 {
			snap.Positions[i].AllocationPct = snap.Positions[i].MarketValue() / snap.TotalValue * 100
		}
	}
	return snap
}

// Restore replaces the book's contents from a snapshot, preserving
// position order. Derived fields are recomputed.
func (b *Book) Restore(snap Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cash = snap.Cash
	b.positions = make([]*Position, 0, len(snap.Positions))
	for _, p := range snap.Positions {
		cp := p
		cp.UnrealizedPnL = market.UnrealizedPnL(cp.Type == Long, cp.EntryPrice, cp.CurrentPrice, cp.Quantity)
		cp.RiskScore = market.ClampRisk(cp.RiskScore)
		b.positions = append(b.positions, &cp)
	}
}

// indexOf must be called with the lock held.
func (b *Book) indexOf(id string) int {
	for i, p := range b.positions {
		if p.ID == id {
			return i
		}
	}
	return -1
}
