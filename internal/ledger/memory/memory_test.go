package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"splitbook/internal/core"
)

func testTransaction(date time.Time, amount string) core.Transaction {
	a := decimal.RequireFromString(amount)
	return core.Transaction{
		Date:     date,
		Amount:   a,
		Category: "General",
		LineItems: []core.LineItem{
			{
				Description: "item",
				Amount:      a,
				Splits: []core.SplitAllocation{
					{Percentage: 100, TaxCategory: "Business"},
				},
			},
		},
	}
}

func TestCreateTransaction(t *testing.T) {
	store := New()
	ctx := context.Background()

	id, err := store.CreateTransaction(ctx, testTransaction(time.Now(), "10.00"))
	if err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}
	if id == "" {
		t.Fatal("CreateTransaction() returned empty ID")
	}

	all, err := store.AllTransactions(ctx)
	if err != nil {
		t.Fatalf("AllTransactions() error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(all))
	}

	got := all[0]
	if got.ID != id {
		t.Errorf("stored ID = %q, want %q", got.ID, id)
	}
	if got.LineItems[0].ID == "" {
		t.Error("line item was not assigned an ID")
	}
	if got.LineItems[0].TransactionID != id {
		t.Errorf("line item TransactionID = %q, want %q", got.LineItems[0].TransactionID, id)
	}
	if got.LineItems[0].Splits[0].LineItemID != got.LineItems[0].ID {
		t.Error("split was not wired to its line item")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not stamped")
	}
}

func TestCreateTransactionInvalid(t *testing.T) {
	store := New()

	tx := testTransaction(time.Time{}, "10.00") // missing date
	if _, err := store.CreateTransaction(context.Background(), tx); err == nil {
		t.Error("expected validation error for missing date")
	}
	if all, _ := store.AllTransactions(context.Background()); len(all) != 0 {
		t.Errorf("invalid transaction was stored: %d records", len(all))
	}
}

func TestDeleteTransaction(t *testing.T) {
	store := New()
	ctx := context.Background()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	id, err := store.CreateTransaction(ctx, testTransaction(date, "10.00"))
	if err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}

	deleted, err := store.DeleteTransaction(ctx, id)
	if err != nil {
		t.Fatalf("DeleteTransaction() error: %v", err)
	}
	if deleted.ID != id {
		t.Errorf("deleted ID = %q, want %q", deleted.ID, id)
	}
	if !deleted.Date.Equal(date) {
		t.Errorf("deleted Date = %v, want %v", deleted.Date, date)
	}

	if all, _ := store.AllTransactions(ctx); len(all) != 0 {
		t.Errorf("store still holds %d transactions after delete", len(all))
	}

	if _, err := store.DeleteTransaction(ctx, id); err == nil {
		t.Error("expected error deleting an unknown ID")
	}
}

func TestTransactionsInRange(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC)
	}
	store := NewSeeded([]core.Transaction{
		testTransaction(day(20), "3.00"),
		testTransaction(day(1), "1.00"),
		testTransaction(day(31), "4.00"),
		testTransaction(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "5.00"),
	})

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	got, err := store.TransactionsInRange(context.Background(), from, to)
	if err != nil {
		t.Fatalf("TransactionsInRange() error: %v", err)
	}

	// [from, to): the April 1st record is excluded.
	if len(got) != 3 {
		t.Fatalf("matched %d transactions, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.Before(got[i-1].Date) {
			t.Errorf("results not ordered by date: %v before %v", got[i].Date, got[i-1].Date)
		}
	}
	if !got[0].Amount.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("first amount = %s, want 1.00", got[0].Amount)
	}
}

func TestReadsCounter(t *testing.T) {
	store := NewSeeded([]core.Transaction{
		testTransaction(time.Now(), "1.00"),
	})
	ctx := context.Background()

	if store.Reads() != 0 {
		t.Fatalf("fresh store reads = %d, want 0", store.Reads())
	}

	store.AllTransactions(ctx)
	store.TransactionsInRange(ctx, time.Time{}, time.Now())

	if got := store.Reads(); got != 2 {
		t.Errorf("Reads() = %d, want 2", got)
	}
}
