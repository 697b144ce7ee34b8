package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sentinelhq/sentinel-agent/internal/advisor"
	"github.com/sentinelhq/sentinel-agent/internal/agentlog"
	"github.com/sentinelhq/sentinel-agent/internal/config"
	"github.com/sentinelhq/sentinel-agent/internal/executor"
	"github.com/sentinelhq/sentinel-agent/internal/logger"
	"github.com/sentinelhq/sentinel-agent/internal/portfolio"
	"github.com/sentinelhq/sentinel-agent/internal/scheduler"
	"github.com/sentinelhq/sentinel-agent/internal/storage"
)

// Server exposes the read-only dashboard and the command API. These are the
// only mutation paths into the core besides the scheduler.
type Server struct {
	httpServer *http.Server
	book       *portfolio.Book
	queue      *advisor.Queue
	engine     *executor.Engine
	sched      *scheduler.Scheduler
	activity   *agentlog.Log
	repo       *storage.Repository
	config     *config.Config
	logger     *logger.Logger
}

func NewServer(
	book *portfolio.Book,
	queue *advisor.Queue,
	engine *executor.Engine,
	sched *scheduler.Scheduler,
	activity *agentlog.Log,
	repo *storage.Repository,
	cfg *config.Config,
	log *logger.Logger,
) *Server {
	s := &Server{
		book:     book,
		queue:    queue,
		engine:   engine,
		sched:    sched,
		activity: activity,
		repo:     repo,
		config:   cfg,
		logger:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /api/log", s.handleActivityLog)
	mux.HandleFunc("GET /api/trades", s.handleTrades)
	mux.HandleFunc("POST /api/positions", s.handleOpenPosition)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/recommendations/{id}/execute", s.handleExecute)
	mux.HandleFunc("POST /api/recommendations/{id}/dismiss", s.handleDismiss)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Web.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
