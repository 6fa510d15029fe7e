package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"splitbook/internal/core"
	"splitbook/internal/ledger/memory"
)

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate() { c.calls++ }

func validTransaction() core.Transaction {
	amount := decimal.RequireFromString("100.00")
	return core.Transaction{
		Date:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:   amount,
		Category: "Office",
		LineItems: []core.LineItem{
			{
				Description: "desk",
				Amount:      amount,
				Splits: []core.SplitAllocation{
					{Percentage: 60, TaxCategory: "Business"},
					{Percentage: 40, TaxCategory: "Personal"},
				},
			},
		},
	}
}

func TestCreateTransaction(t *testing.T) {
	store := memory.New()
	inv := &countingInvalidator{}
	svc := NewTransactionService(store, nil, inv)

	id, err := svc.CreateTransaction(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}
	if id == "" {
		t.Fatal("CreateTransaction() returned empty ID")
	}
	if inv.calls != 1 {
		t.Errorf("invalidator called %d times, want 1", inv.calls)
	}

	all, _ := store.AllTransactions(context.Background())
	if len(all) != 1 {
		t.Errorf("store holds %d transactions, want 1", len(all))
	}
}

func TestCreateTransactionInvalid(t *testing.T) {
	store := memory.New()
	inv := &countingInvalidator{}
	svc := NewTransactionService(store, nil, inv)

	tx := validTransaction()
	tx.Category = ""

	if _, err := svc.CreateTransaction(context.Background(), tx); err == nil {
		t.Fatal("expected validation error for empty category")
	}
	if inv.calls != 0 {
		t.Errorf("invalidator called %d times on failed create, want 0", inv.calls)
	}
}

func TestCreateTransactionPartialAllocation(t *testing.T) {
	// Under-allocated splits are accepted; the warning is advisory.
	store := memory.New()
	svc := NewTransactionService(store, nil, nil)

	tx := validTransaction()
	tx.LineItems[0].Splits = tx.LineItems[0].Splits[:1] // 60% only

	if _, err := svc.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	store := memory.New()
	inv := &countingInvalidator{}
	svc := NewTransactionService(store, nil, inv)
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, validTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("DeleteTransaction() error: %v", err)
	}
	if inv.calls != 2 {
		t.Errorf("invalidator called %d times, want 2 (create + delete)", inv.calls)
	}

	if err := svc.DeleteTransaction(ctx, "no-such-id"); err == nil {
		t.Error("expected error deleting an unknown ID")
	}
}

func TestNilCollaborators(t *testing.T) {
	// The service tolerates a missing AMQP client and invalidator; only the
	// store is required.
	svc := NewTransactionService(memory.New(), nil, nil)

	id, err := svc.CreateTransaction(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}
	if err := svc.DeleteTransaction(context.Background(), id); err != nil {
		t.Fatalf("DeleteTransaction() error: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}
