// Package worker refreshes materialized monthly rollups in response to
// ledger mutation events.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"splitbook/internal/amqp"
	"splitbook/internal/analytics"
	"splitbook/internal/storage"
)

// RollupWorker recomputes the month touched by each mutation and swaps the
// materialized rollup rows for that month.
type RollupWorker struct {
	storage *storage.SQLiteRepository
	engine  *analytics.Engine
}

func NewRollupWorker(repo *storage.SQLiteRepository, engine *analytics.Engine) *RollupWorker {
	return &RollupWorker{
		storage: repo,
		engine:  engine,
	}
}

// HandleMutation processes a single ledger mutation message.
func (w *RollupWorker) HandleMutation(ctx context.Context, msg *amqp.LedgerMutationMessage) error {
	if msg.Date.IsZero() {
		slog.WarnContext(ctx, "Mutation without transaction date, skipping rollup refresh",
			"transaction_id", msg.TransactionID, "op", msg.Op)
		return nil
	}

	slog.InfoContext(ctx, "Refreshing monthly rollup",
		"transaction_id", msg.TransactionID,
		"op", msg.Op,
		"date", msg.Date)

	// The worker's engine caches like any other; drop stale state so the
	// recompute sees the mutation that triggered it.
	w.engine.Invalidate()

	summary, err := w.engine.MonthlyTrend(ctx, msg.Date)
	if err != nil {
		return fmt.Errorf("recompute month: %w", err)
	}

	if err := w.storage.ReplaceMonthlyRollup(ctx, summary); err != nil {
		return fmt.Errorf("replace rollup: %w", err)
	}

	return nil
}
