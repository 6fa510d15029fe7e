package amqp

import (
	"encoding/json"
	"time"
)

// Mutation operations carried on the wire.
const (
	OpCreate = "create"
	OpDelete = "delete"
)

// LedgerMutationMessage announces a write to the ledger store. It carries
// only the transaction ID, the operation, and the transaction date; the
// rollup worker re-reads the ledger to decide what to recompute.
type LedgerMutationMessage struct {
	TransactionID string    `json:"transaction_id"`
	Op            string    `json:"op"`
	Date          time.Time `json:"date"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerMutationMessage creates a mutation message stamped with now.
func NewLedgerMutationMessage(transactionID, op string, date time.Time) *LedgerMutationMessage {
	return &LedgerMutationMessage{
		TransactionID: transactionID,
		Op:            op,
		Date:          date,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerMutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerMutationMessageFromJSON parses a message from JSON bytes.
func LedgerMutationMessageFromJSON(data []byte) (*LedgerMutationMessage, error) {
	var msg LedgerMutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
