// Package memory provides an in-memory ledger store. It backs the default
// backend and doubles as the query-counting stub used in engine tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"splitbook/internal/core"
)

type Store struct {
	mu           sync.Mutex
	transactions []core.Transaction
	reads        int64
}

func New() *Store {
	return &Store{}
}

// NewSeeded creates a store pre-populated with transactions. IDs are
// assigned to records that lack them.
func NewSeeded(transactions []core.Transaction) *Store {
	s := New()
	for _, t := range transactions {
		if _, err := s.CreateTransaction(context.Background(), t); err != nil {
			// Seeding skips invalid records rather than failing startup.
			continue
		}
	}
	return s
}

// CreateTransaction implements ledger.Writer.
func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	for i := range t.LineItems {
		li := &t.LineItems[i]
		if li.ID == "" {
			li.ID = uuid.NewString()
		}
		li.TransactionID = t.ID
		for j := range li.Splits {
			sa := &li.Splits[j]
			if sa.ID == "" {
				sa.ID = uuid.NewString()
			}
			sa.LineItemID = li.ID
		}
	}

	s.transactions = append(s.transactions, t)
	return t.ID, nil
}

// DeleteTransaction implements ledger.Writer. Line items and splits live
// inside the transaction value, so removal cascades trivially.
func (s *Store) DeleteTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.transactions {
		if t.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return t, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s not found", id)
}

// AllTransactions implements ledger.Reader.
func (s *Store) AllTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	return sortedCopy(s.transactions), nil
}

// TransactionsInRange implements ledger.Reader with a [from, to) window.
func (s *Store) TransactionsInRange(_ context.Context, from, to time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	var matched []core.Transaction
	for _, t := range s.transactions {
		if !t.Date.Before(from) && t.Date.Before(to) {
			matched = append(matched, t)
		}
	}
	return sortedCopy(matched), nil
}

// Reads returns how many read queries the store has served. Engine tests
// use it to verify cache hits skip the store.
func (s *Store) Reads() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func sortedCopy(in []core.Transaction) []core.Transaction {
	out := append([]core.Transaction(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
