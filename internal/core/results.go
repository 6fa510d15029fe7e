package core

import "github.com/shopspring/decimal"

// TrendDirection indicates how spending moved inside a single period window,
// comparing the first and last transaction amounts in date order. A window
// with fewer than two transactions is flat.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendFlat       TrendDirection = "flat"
)

// CategoryBreakdown maps a tax-category label to its total allocated amount.
// Iteration order is unspecified; presentation layers sort as needed.
type CategoryBreakdown map[string]decimal.Decimal

// Total returns the sum of all category amounts.
func (b CategoryBreakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range b {
		total = total.Add(amount)
	}
	return total
}

// Clone returns a copy so cached breakdowns cannot be mutated by callers.
func (b CategoryBreakdown) Clone() CategoryBreakdown {
	out := make(CategoryBreakdown, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

type (
	// MonthlySummary is the aggregation of one calendar month.
	MonthlySummary struct {
		Year             int
		Month            int // 1-12
		ByCategory       CategoryBreakdown
		TransactionCount int
		Trend            TrendDirection
		Total            decimal.Decimal
		DailyAverage     decimal.Decimal
	}

	// QuarterlySummary rolls up the three months of a calendar quarter.
	QuarterlySummary struct {
		Year    int
		Quarter int // 1-4
		Months  []MonthlySummary
		Total   decimal.Decimal
	}

	// YearlySummary rolls up the four quarters of a calendar year.
	YearlySummary struct {
		Year     int
		Quarters []QuarterlySummary
		Total    decimal.Decimal
	}

	// FinancialMetrics is the percent-of-total view over the whole ledger.
	FinancialMetrics struct {
		TotalAmount    decimal.Decimal
		CategoryShares map[string]float64 // percentage of total, 0 when total is zero
		FormattedTotal string
	}

	// Balance projects the Business and Personal categories out of the full
	// breakdown. Lookup is case-sensitive exact match; absent categories
	// report zero.
	Balance struct {
		TotalBalance       decimal.Decimal
		BusinessAllocation decimal.Decimal
		PersonalAllocation decimal.Decimal
		ByCategory         CategoryBreakdown
	}
)
