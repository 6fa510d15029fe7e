package services

import (
	"context"
	"fmt"
	"log/slog"

	"splitbook/internal/amqp"
	"splitbook/internal/core"
	"splitbook/internal/ledger"
)

// Invalidator drops memoized analytics after a ledger mutation.
type Invalidator interface {
	Invalidate()
}

// TransactionService is the ledger write path: validate, persist, drop
// cached analytics, and announce the mutation over AMQP.
type TransactionService struct {
	store       ledger.Writer
	amqpClient  *amqp.Client
	invalidator Invalidator
}

func NewTransactionService(store ledger.Writer, amqpClient *amqp.Client, invalidator Invalidator) *TransactionService {
	return &TransactionService{
		store:       store,
		amqpClient:  amqpClient,
		invalidator: invalidator,
	}
}

// CreateTransaction validates and persists a transaction, then invalidates
// cached metrics and publishes a mutation event. Publish failures are
// logged, not returned; the write already succeeded locally.
func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validate transaction: %w", err)
	}

	for _, li := range t.LineItems {
		if len(li.Splits) > 0 && !li.FullyAllocated() {
			// Accepted, but the resulting category totals will not conserve
			// the line item amount.
			slog.WarnContext(ctx, "Line item splits do not sum to 100%",
				"description", li.Description,
				"split_total", li.SplitTotal())
		}
	}

	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.invalidate()

	if err := s.publishMutation(ctx, id, amqp.OpCreate, t); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mutation event",
			"transaction_id", id, "error", err)
	}

	return id, nil
}

// DeleteTransaction removes a transaction (line items and splits cascade),
// invalidates cached metrics, and publishes a mutation event.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.invalidate()

	if err := s.publishMutation(ctx, id, amqp.OpDelete, deleted); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mutation event",
			"transaction_id", id, "error", err)
	}

	return nil
}

func (s *TransactionService) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}

func (s *TransactionService) publishMutation(ctx context.Context, id, op string, t core.Transaction) error {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping mutation event")
		return nil
	}
	return s.amqpClient.PublishMutation(ctx, amqp.NewLedgerMutationMessage(id, op, t.Date))
}

// Close releases the underlying store and AMQP connections where present.
func (s *TransactionService) Close() error {
	var errs []error

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
