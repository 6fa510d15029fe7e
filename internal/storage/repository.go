package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"splitbook/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable ledger store. Amounts are stored as
// decimal strings so nothing is ever rounded on the way in or out; dates
// are Unix seconds.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Cascade deletes from transactions down to splits depend on this.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction implements ledger.Writer. The transaction, its line
// items, and their splits are written atomically.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, date, amount, category, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.Unix(), t.Amount.String(), t.Category, t.Note, t.CreatedAt.Unix())
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	for i := range t.LineItems {
		li := t.LineItems[i]
		if li.ID == "" {
			li.ID = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO line_items (id, transaction_id, description, amount, quantity, unit_price)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			li.ID, t.ID, li.Description, li.Amount.String(), li.Quantity, li.UnitPrice.String())
		if err != nil {
			return "", fmt.Errorf("insert line item: %w", err)
		}

		for j := range li.Splits {
			sa := li.Splits[j]
			if sa.ID == "" {
				sa.ID = uuid.NewString()
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO split_allocations (id, line_item_id, percentage, tax_category)
				 VALUES (?, ?, ?, ?)`,
				sa.ID, li.ID, sa.Percentage, sa.TaxCategory)
			if err != nil {
				return "", fmt.Errorf("insert split allocation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"category", t.Category,
		"amount", t.Amount.String(),
		"line_items", len(t.LineItems))

	return t.ID, nil
}

// DeleteTransaction implements ledger.Writer. Line items and splits cascade.
// The removed transaction (without children) is returned.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var (
		t         core.Transaction
		date      int64
		amount    string
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, date, amount, category, note, created_at FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &date, &amount, &t.Category, &t.Note, &createdAt)
	if err == sql.ErrNoRows {
		return core.Transaction{}, fmt.Errorf("transaction %s not found", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}
	t.Date = time.Unix(date, 0).UTC()
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction amount %q: %w", amount, err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "category", t.Category)
	return t, nil
}

// AllTransactions implements ledger.Reader.
func (r *SQLiteRepository) AllTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, date, amount, category, note, created_at
		 FROM transactions ORDER BY date ASC`)
}

// TransactionsInRange implements ledger.Reader with a [from, to) window.
func (r *SQLiteRepository) TransactionsInRange(ctx context.Context, from, to time.Time) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, date, amount, category, note, created_at
		 FROM transactions WHERE date >= ? AND date < ? ORDER BY date ASC`,
		from.Unix(), to.Unix())
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	index := make(map[string]int)
	for rows.Next() {
		var (
			t         core.Transaction
			date      int64
			amount    string
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &date, &amount, &t.Category, &t.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = time.Unix(date, 0).UTC()
		t.CreatedAt = time.Unix(createdAt, 0).UTC()
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse transaction amount %q: %w", amount, err)
		}
		index[t.ID] = len(transactions)
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	if len(transactions) == 0 {
		return nil, nil
	}

	if err := r.attachLineItems(ctx, transactions, index); err != nil {
		return nil, err
	}
	return transactions, nil
}

// attachLineItems materializes line items and splits for the given
// transactions in two bulk queries, avoiding per-row round trips.
func (r *SQLiteRepository) attachLineItems(ctx context.Context, transactions []core.Transaction, index map[string]int) error {
	ids := make([]any, len(transactions))
	for i, t := range transactions {
		ids[i] = t.ID
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, transaction_id, description, amount, quantity, unit_price
		 FROM line_items WHERE transaction_id IN (`+placeholders(len(ids))+`)`, ids...)
	if err != nil {
		return fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	liIndex := make(map[string][2]int) // line item id -> (transaction idx, line item idx)
	var liIDs []any
	for rows.Next() {
		var (
			li        core.LineItem
			amount    string
			unitPrice string
		)
		if err := rows.Scan(&li.ID, &li.TransactionID, &li.Description, &amount, &li.Quantity, &unitPrice); err != nil {
			return fmt.Errorf("scan line item: %w", err)
		}
		if li.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("parse line item amount %q: %w", amount, err)
		}
		if li.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return fmt.Errorf("parse unit price %q: %w", unitPrice, err)
		}

		ti, ok := index[li.TransactionID]
		if !ok {
			// Orphaned row; cascade invariants say this cannot happen, but
			// skipping beats aborting the whole aggregation.
			slog.WarnContext(ctx, "Line item without parent transaction, skipping",
				"line_item_id", li.ID, "transaction_id", li.TransactionID)
			continue
		}
		liIndex[li.ID] = [2]int{ti, len(transactions[ti].LineItems)}
		transactions[ti].LineItems = append(transactions[ti].LineItems, li)
		liIDs = append(liIDs, li.ID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate line items: %w", err)
	}
	if len(liIDs) == 0 {
		return nil
	}

	splitRows, err := r.db.QueryContext(ctx,
		`SELECT id, line_item_id, percentage, tax_category
		 FROM split_allocations WHERE line_item_id IN (`+placeholders(len(liIDs))+`)`, liIDs...)
	if err != nil {
		return fmt.Errorf("query split allocations: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var sa core.SplitAllocation
		if err := splitRows.Scan(&sa.ID, &sa.LineItemID, &sa.Percentage, &sa.TaxCategory); err != nil {
			return fmt.Errorf("scan split allocation: %w", err)
		}
		pos, ok := liIndex[sa.LineItemID]
		if !ok {
			slog.WarnContext(ctx, "Split allocation without parent line item, skipping",
				"split_id", sa.ID, "line_item_id", sa.LineItemID)
			continue
		}
		li := &transactions[pos[0]].LineItems[pos[1]]
		li.Splits = append(li.Splits, sa)
	}
	return splitRows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
