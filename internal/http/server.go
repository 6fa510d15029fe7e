// Package http exposes the analytics engine and ledger write path as a JSON
// API.
package http

import (
	"context"
	"net/http"
	"time"

	"splitbook/internal/analytics"
	"splitbook/internal/log"
	"splitbook/internal/middleware/trace"
	"splitbook/internal/services"
	"splitbook/internal/storage"
)

// RollupReader serves the materialized monthly rollups maintained by the
// worker. Nil when the backend has no rollup table (memory backend).
type RollupReader interface {
	MonthlyRollup(ctx context.Context, year, month int) ([]storage.MonthlyRollupRow, error)
}

// Server wires the metrics facade and transaction write path into an
// http.Server.
type Server struct {
	*http.Server
	engine    *analytics.Engine
	txService *services.TransactionService
	rollups   RollupReader
	logger    *log.Logger
	started   time.Time
}

func NewServer(addr string, engine *analytics.Engine, txService *services.TransactionService, rollups RollupReader) *Server {
	s := &Server{
		engine:    engine,
		txService: txService,
		rollups:   rollups,
		logger:    log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP),
		started:   time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/metrics/breakdown", s.handleBreakdown)
	mux.HandleFunc("GET /api/v1/metrics/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/metrics/balance", s.handleBalance)
	mux.HandleFunc("GET /api/v1/trends/monthly", s.handleMonthlyTrend)
	mux.HandleFunc("GET /api/v1/trends/quarterly", s.handleQuarterlyTrend)
	mux.HandleFunc("GET /api/v1/trends/yearly", s.handleYearlyTrend)
	mux.HandleFunc("GET /api/v1/rollups/monthly", s.handleMonthlyRollup)
	mux.HandleFunc("POST /api/v1/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.handleDeleteTransaction)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: trace.Middleware(mux),
	}
	return s
}
