package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SplitTolerance is the acceptable drift, in percentage points, between the
// sum of a line item's split percentages and 100 before the write path
// considers the line item under- or over-allocated.
const SplitTolerance = 0.01

type (
	// Transaction is a single financial event. It owns its line items;
	// deleting a transaction deletes them (enforced by the store).
	Transaction struct {
		ID        string
		Date      time.Time
		Amount    decimal.Decimal
		Category  string
		Note      string
		CreatedAt time.Time
		LineItems []LineItem
	}

	// LineItem is one itemized component of a transaction. Its amount is
	// independent of the parent total; the two are not reconciled here.
	LineItem struct {
		ID            string
		TransactionID string
		Description   string
		Amount        decimal.Decimal
		Quantity      float64
		UnitPrice     decimal.Decimal
		Splits        []SplitAllocation
	}

	// SplitAllocation assigns a percentage of a line item's amount to a
	// free-form tax category such as "Business" or "Personal".
	SplitAllocation struct {
		ID          string
		LineItemID  string
		Percentage  float64
		TaxCategory string
	}
)

var (
	ErrMissingDate      = errors.New("transaction date is required")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrBadPercentage    = errors.New("percentage must be between 0 and 100")
	ErrEmptyTaxCategory = errors.New("empty tax category")
)

// Validate checks the fields the write path requires. The analytics engine
// itself never validates; malformed records read from the store flow through
// arithmetic as-is.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Category) > 200 {
		return errors.New("category too long (max 200 characters)")
	}
	for _, li := range t.LineItems {
		if err := li.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (li LineItem) Validate() error {
	if len(strings.TrimSpace(li.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(li.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	for _, sa := range li.Splits {
		if err := sa.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (sa SplitAllocation) Validate() error {
	if strings.TrimSpace(sa.TaxCategory) == "" {
		return ErrEmptyTaxCategory
	}
	if sa.Percentage < 0 || sa.Percentage > 100 {
		return ErrBadPercentage
	}
	return nil
}

// SplitTotal returns the sum of all split percentages on the line item.
func (li LineItem) SplitTotal() float64 {
	var total float64
	for _, sa := range li.Splits {
		total += sa.Percentage
	}
	return total
}

// FullyAllocated reports whether the split percentages sum to 100 within
// SplitTolerance. Advisory only: under- and over-allocated line items are
// still aggregated as-is.
func (li LineItem) FullyAllocated() bool {
	diff := li.SplitTotal() - 100
	return diff >= -SplitTolerance && diff <= SplitTolerance
}
