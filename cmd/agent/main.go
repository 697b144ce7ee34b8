package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/sentinelhq/sentinel-agent/internal/advisor"
	"github.com/sentinelhq/sentinel-agent/internal/agentlog"
	"github.com/sentinelhq/sentinel-agent/internal/ai"
	"github.com/sentinelhq/sentinel-agent/internal/config"
	"github.com/sentinelhq/sentinel-agent/internal/executor"
	"github.com/sentinelhq/sentinel-agent/internal/logger"
	"github.com/sentinelhq/sentinel-agent/internal/market"
	"github.com/sentinelhq/sentinel-agent/internal/marketdata"
	"github.com/sentinelhq/sentinel-agent/internal/portfolio"
	"github.com/sentinelhq/sentinel-agent/internal/scheduler"
	"github.com/sentinelhq/sentinel-agent/internal/storage"
	"github.com/sentinelhq/sentinel-agent/internal/telegram"
	"github.com/sentinelhq/sentinel-agent/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "data/sentinel.db", "path to SQLite database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)

	mode := "LIVE"
	if cfg.Simulation.Enabled {
		mode = "SIMULATION"
	}
	log.Info("starting sentinel agent", "mode", mode)

	db, err := storage.NewDatabase(*dbPath)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	book := portfolio.NewBook(cfg.Trading.InitialCash)
	restoreBook(book, repo, log)

	queue := advisor.NewQueue()
	activity := agentlog.New(cfg.Trading.LogCapacity)
	notifier := telegram.NewNotifier(cfg, log)
	aiClient := ai.NewClient(cfg, log)
	engine := executor.NewEngine(book, queue, activity, repo, notifier, cfg, log)
	sim := market.NewSimulator(cfg.Simulation.Seed, cfg.Simulation.TrendBias)

	var prices scheduler.PriceSource
	switch {
	case cfg.MarketData.Enabled:
		prices = marketdata.NewClient(cfg, log)
	case !cfg.Simulation.Enabled:
		prices = aiClient
	default:
		// simulation only; the scheduler ticks the book itself
	}

	sched := scheduler.NewScheduler(book, queue, prices, aiClient, engine, sim, repo, activity, cfg, log)
	webServer := web.NewServer(book, queue, engine, sched, activity, repo, cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Run(ctx)

	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	notifier.NotifyStatus(fmt.Sprintf("🛡 Sentinel agent started (%s)", mode))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	cancel() // stop scheduler

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	if err := repo.SaveBookSnapshot(book.Snapshot()); err != nil {
		log.Error("save final snapshot", "error", err)
	}

	notifier.NotifyStatus("🛑 Sentinel agent stopped")
	log.Info("sentinel agent stopped")
}

func restoreBook(book *portfolio.Book, repo *storage.Repository, log *logger.Logger) {
	snap, err := repo.GetLatestBookSnapshot()
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("restore book snapshot", "error", err)
		}
		return
	}
	book.Restore(snap)
	log.Info("book restored from snapshot",
		"positions", len(snap.Positions), "cash", snap.Cash, "taken_at", snap.TakenAt)
}
