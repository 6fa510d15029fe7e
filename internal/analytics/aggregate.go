// Package analytics implements the split-allocation aggregation engine:
// per-category summation, calendar-period rollups, and a memoizing facade
// over a ledger store.
package analytics

import (
	"github.com/shopspring/decimal"

	"splitbook/internal/core"
)

var oneHundred = decimal.NewFromInt(100)

// AggregateByCategory sums the effective amount of every split allocation
// into its tax category: amount * percentage / 100 per split.
//
// Pure function. Line items without splits contribute nothing, so
// unallocated spend is invisible in category breakdowns. Percentages are
// taken as-is: negative, over-100, and non-finite values propagate
// arithmetically. Validation belongs to the write path.
func AggregateByCategory(lineItems []core.LineItem) core.CategoryBreakdown {
	result := make(core.CategoryBreakdown)
	for _, li := range lineItems {
		for _, sa := range li.Splits {
			effective := li.Amount.Mul(decimal.NewFromFloat(sa.Percentage)).Div(oneHundred)
			result[sa.TaxCategory] = result[sa.TaxCategory].Add(effective)
		}
	}
	return result
}

// Flatten collects every line item of every transaction, splits attached.
func Flatten(transactions []core.Transaction) []core.LineItem {
	var items []core.LineItem
	for _, t := range transactions {
		items = append(items, t.LineItems...)
	}
	return items
}
