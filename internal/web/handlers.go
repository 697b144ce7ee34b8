package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/sentinelhq/sentinel-agent/internal/agentlog"
	"github.com/sentinelhq/sentinel-agent/internal/portfolio"
	"github.com/sentinelhq/sentinel-agent/internal/scheduler"
	"github.com/sentinelhq/sentinel-agent/internal/storage"
)

type dashboardData struct {
	Snapshot        portfolio.Snapshot
	Recommendations any
	LogEntries      []agentlog.Entry
	RecentTrades    []storage.TradeRecord
	RealizedToday   float64
	RealizedTotal   float64
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		Snapshot:        s.book.Snapshot(),
		Recommendations: s.queue.Pending(),
		LogEntries:      s.activity.Entries(),
	}

	if s.repo != nil {
		if trades, err := s.repo.GetRecentTrades(20); err == nil {
			data.RecentTrades = trades
		}
		if pnl, err := s.repo.GetTodayRealizedPnL(); err == nil {
			data.RealizedToday = pnl
		}
		if pnl, err := s.repo.GetTotalRealizedPnL(); err == nil {
			data.RealizedTotal = pnl
		}
	}

	tmpl, err := template.ParseFiles("templates/dashboard.html")
	if err != nil {
		s.logger.Error("parse template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("execute template", "error", err)
	}
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.book.Snapshot())
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.queue.Pending())
}

func (s *Server) handleActivityLog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.activity.Entries())
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeJSON(w, http.StatusOK, []storage.TradeRecord{})
		return
	}
	trades, err := s.repo.GetRecentTrades(50)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trades)
}

type openPositionRequest struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	Type     string  `json:"type"`
}

func (s *Server) handleOpenPosition(w http.ResponseWriter, r *http.Request) {
	var req openPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	ptype := portfolio.PositionType(req.Type)
	if ptype != portfolio.Short {
		ptype = portfolio.Long
	}

	pos, err := s.book.Open(req.Symbol, req.Name, req.Quantity, req.Price, ptype)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.activity.Append(agentlog.Action,
		fmt.Sprintf("Added position: %s, Qty: %d @ ₹%.2f", pos.Symbol, pos.Quantity, pos.EntryPrice))
	s.logger.Info("position opened", "symbol", pos.Symbol, "qty", pos.Quantity, "price", pos.EntryPrice)
	s.writeJSON(w, http.StatusCreated, pos)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.sched.RefreshPrices(r.Context()); err != nil {
		s.writeSchedulerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.book.Snapshot())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := s.sched.RunAnalysis(r.Context()); err != nil {
		s.writeSchedulerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.queue.Pending())
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.engine.Execute(id); err != nil {
		switch {
		case errors.Is(err, portfolio.ErrNotFound):
			s.writeError(w, http.StatusNotFound, err)
		case errors.Is(err, portfolio.ErrInsufficientCash):
			s.writeError(w, http.StatusConflict, err)
		default:
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	s.writeJSON(w, http.StatusOK, s.book.Snapshot())
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.queue.Dismiss(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeSchedulerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduler.ErrBusy):
		s.writeError(w, http.StatusConflict, err)
	case errors.Is(err, scheduler.ErrSourceUnavailable):
		s.writeError(w, http.StatusBadGateway, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
