package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{40, 30 * time.Second}, // shift overflow still capped
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5672: connection refused"),
			expected: true,
		},
		{
			name:     "connection closed",
			err:      errors.New("connection closed"),
			expected: true,
		},
		{
			name:     "connection reset",
			err:      errors.New("read tcp: connection reset by peer"),
			expected: true,
		},
		{
			name:     "consumer channel closed",
			err:      errors.New("message channel closed"),
			expected: true,
		},
		{
			name:     "channel not open",
			err:      errors.New("Exception (504) Reason: \"channel/connection is not open\""),
			expected: true,
		},
		{
			name:     "EOF",
			err:      errors.New("unexpected EOF"),
			expected: true,
		},
		{
			name:     "application error",
			err:      errors.New("rollup recompute failed"),
			expected: false,
		},
		{
			name:     "validation error",
			err:      errors.New("invalid input"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isConnectionError(tt.err)
			if result != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestLedgerMutationMessageJSON(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	msg := NewLedgerMutationMessage("tx-123", OpCreate, date)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	parsed, err := LedgerMutationMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON() error: %v", err)
	}

	if parsed.TransactionID != "tx-123" {
		t.Errorf("TransactionID = %q, want tx-123", parsed.TransactionID)
	}
	if parsed.Op != OpCreate {
		t.Errorf("Op = %q, want %q", parsed.Op, OpCreate)
	}
	if !parsed.Date.Equal(date) {
		t.Errorf("Date = %v, want %v", parsed.Date, date)
	}
	if parsed.Timestamp.IsZero() {
		t.Error("Timestamp should be stamped by the constructor")
	}
}

func TestLedgerMutationMessageFromJSONInvalid(t *testing.T) {
	if _, err := LedgerMutationMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed body")
	}
}
