package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"splitbook/internal/core"
)

// MonthlyRollupRow is one materialized per-category total for a month,
// written by the rollup worker and read by dashboard consumers.
type MonthlyRollupRow struct {
	Year             int
	Month            int
	TaxCategory      string
	AmountCents      int64
	TransactionCount int
	UpdatedAt        time.Time
}

// ReplaceMonthlyRollup atomically swaps the materialized rows for the
// summary's month. Cent precision is enough for the dashboard read path;
// exact decimals stay in the ledger tables.
func (r *SQLiteRepository) ReplaceMonthlyRollup(ctx context.Context, summary core.MonthlySummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rollup transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM monthly_rollups WHERE year = ? AND month = ?`,
		summary.Year, summary.Month)
	if err != nil {
		return fmt.Errorf("clear month rollup: %w", err)
	}

	now := time.Now().Unix()
	for category, amount := range summary.ByCategory {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO monthly_rollups (year, month, tax_category, amount_cents, transaction_count, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			summary.Year, summary.Month, category, core.Cents(amount), summary.TransactionCount, now)
		if err != nil {
			return fmt.Errorf("insert rollup row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rollup: %w", err)
	}

	slog.InfoContext(ctx, "Monthly rollup replaced",
		"year", summary.Year,
		"month", summary.Month,
		"categories", len(summary.ByCategory))
	return nil
}

// MonthlyRollup returns the materialized rows for a month, if any.
func (r *SQLiteRepository) MonthlyRollup(ctx context.Context, year, month int) ([]MonthlyRollupRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, month, tax_category, amount_cents, transaction_count, updated_at
		 FROM monthly_rollups WHERE year = ? AND month = ? ORDER BY amount_cents DESC`,
		year, month)
	if err != nil {
		return nil, fmt.Errorf("query monthly rollup: %w", err)
	}
	defer rows.Close()

	var out []MonthlyRollupRow
	for rows.Next() {
		var (
			row       MonthlyRollupRow
			updatedAt int64
		)
		if err := rows.Scan(&row.Year, &row.Month, &row.TaxCategory, &row.AmountCents, &row.TransactionCount, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan rollup row: %w", err)
		}
		row.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}
