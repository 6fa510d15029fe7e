package ledger

import (
	"context"
	"time"

	"splitbook/internal/core"
)

// Ports for ledger store adapters. Transactions come back fully materialized:
// every line item with its split allocations attached.
type (
	Reader interface {
		// TransactionsInRange returns transactions whose date falls in
		// [from, to), ordered by date ascending.
		TransactionsInRange(ctx context.Context, from, to time.Time) ([]core.Transaction, error)

		// AllTransactions returns the whole ledger, ordered by date ascending.
		AllTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	Writer interface {
		// CreateTransaction persists a transaction with its line items and
		// splits, returning the stored transaction ID.
		CreateTransaction(ctx context.Context, t core.Transaction) (string, error)

		// DeleteTransaction removes a transaction; line items and splits
		// cascade. The removed transaction is returned so callers can tell
		// which period was touched.
		DeleteTransaction(ctx context.Context, id string) (core.Transaction, error)
	}
)
