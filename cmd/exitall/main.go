// exitall closes every open position in the persisted book at its last
// observed price and saves the resulting state.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/sentinelhq/sentinel-agent/internal/config"
	"github.com/sentinelhq/sentinel-agent/internal/logger"
	"github.com/sentinelhq/sentinel-agent/internal/portfolio"
	"github.com/sentinelhq/sentinel-agent/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "data/sentinel.db", "path to SQLite database")
	dryRun := flag.Bool("dry-run", false, "show positions without closing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)

	db, err := storage.NewDatabase(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database error: %v\n", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	snap, err := repo.GetLatestBookSnapshot()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Println("No saved book state.")
			return
		}
		fmt.Fprintf(os.Stderr, "load snapshot error: %v\n", err)
		os.Exit(1)
	}

	if len(snap.Positions) == 0 {
		fmt.Println("No open positions.")
		return
	}

	fmt.Printf("Found %d position(s):\n\n", len(snap.Positions))
	for _, p := range snap.Positions {
		fmt.Printf("  %s: %d shares, entry %.2f, current %.2f, PnL %+.2f\n",
			p.Symbol, p.Quantity, p.EntryPrice, p.CurrentPrice, p.UnrealizedPnL)
	}
	fmt.Println()

	if *dryRun {
		fmt.Println("Dry run — book left untouched.")
		return
	}

	book := portfolio.NewBook(0)
	book.Restore(snap)

	var closed int
	for _, p := range snap.Positions {
		delta, removed, err := book.Close(p.ID, p.CurrentPrice)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  [FAIL] %s: %v\n", p.Symbol, err)
			continue
		}

		if err := repo.SaveTrade(&storage.TradeRecord{
			Symbol:      removed.Symbol,
			Verb:        "EXIT",
			Quantity:    removed.Quantity,
			Price:       removed.CurrentPrice,
			CashDelta:   delta,
			RealizedPnL: removed.UnrealizedPnL,
			Reasoning:   "exitall",
		}); err != nil {
			log.Error("save trade", "symbol", removed.Symbol, "error", err)
		}

		fmt.Printf("  [OK]   %s: closed %d shares @ %.2f (cash +%.2f)\n",
			removed.Symbol, removed.Quantity, removed.CurrentPrice, delta)
		closed++
	}

	if err := repo.SaveBookSnapshot(book.Snapshot()); err != nil {
		fmt.Fprintf(os.Stderr, "save snapshot error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nClosed %d position(s). Cash: %.2f\n", closed, book.Cash())
}
