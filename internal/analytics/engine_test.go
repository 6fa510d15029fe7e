package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"splitbook/internal/core"
	"splitbook/internal/ledger/memory"
)

func seedTx(date time.Time, amount string, splits ...core.SplitAllocation) core.Transaction {
	return core.Transaction{
		Date:     date,
		Amount:   d(amount),
		Category: "General",
		LineItems: []core.LineItem{
			{Description: "item", Amount: d(amount), Splits: splits},
		},
	}
}

func newTestEngine(t *testing.T, transactions ...core.Transaction) (*Engine, *memory.Store) {
	t.Helper()
	store := memory.NewSeeded(transactions)
	return NewEngine(store, nil, time.UTC), store
}

func TestCategoryBreakdownScenario(t *testing.T) {
	// One transaction, one 100.00 line item split 60/40.
	engine, _ := newTestEngine(t, seedTx(
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "100.00",
		core.SplitAllocation{Percentage: 60, TaxCategory: "Business"},
		core.SplitAllocation{Percentage: 40, TaxCategory: "Personal"},
	))

	breakdown, err := engine.CategoryBreakdown(context.Background())
	if err != nil {
		t.Fatalf("CategoryBreakdown() error: %v", err)
	}

	if !breakdown["Business"].Equal(d("60")) {
		t.Errorf("Business = %s, want 60", breakdown["Business"])
	}
	if !breakdown["Personal"].Equal(d("40")) {
		t.Errorf("Personal = %s, want 40", breakdown["Personal"])
	}
}

func TestCategoryBreakdownCaching(t *testing.T) {
	engine, store := newTestEngine(t, seedTx(
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "50.00",
		core.SplitAllocation{Percentage: 100, TaxCategory: "Business"},
	))
	ctx := context.Background()

	first, err := engine.CategoryBreakdown(ctx)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := engine.CategoryBreakdown(ctx)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if got := store.Reads(); got != 1 {
		t.Errorf("store reads = %d, want 1 (second call should hit cache)", got)
	}
	if !first["Business"].Equal(second["Business"]) {
		t.Errorf("cached result differs: %s vs %s", first["Business"], second["Business"])
	}

	// Mutating the returned map must not poison the cache.
	second["Business"] = d("0")
	third, err := engine.CategoryBreakdown(ctx)
	if err != nil {
		t.Fatalf("third call: %v", err)
	}
	if !third["Business"].Equal(d("50")) {
		t.Errorf("cache was poisoned: Business = %s, want 50", third["Business"])
	}

	engine.Invalidate()
	if _, err := engine.CategoryBreakdown(ctx); err != nil {
		t.Fatalf("post-invalidate call: %v", err)
	}
	if got := store.Reads(); got != 2 {
		t.Errorf("store reads = %d, want 2 (invalidate should force a re-query)", got)
	}
}

func TestFinancialMetrics(t *testing.T) {
	t.Run("empty ledger", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		metrics, err := engine.FinancialMetrics(context.Background())
		if err != nil {
			t.Fatalf("FinancialMetrics() error: %v", err)
		}
		if !metrics.TotalAmount.IsZero() {
			t.Errorf("TotalAmount = %s, want 0", metrics.TotalAmount)
		}
		if len(metrics.CategoryShares) != 0 {
			t.Errorf("CategoryShares = %v, want empty", metrics.CategoryShares)
		}
		if metrics.FormattedTotal != "$0.00" {
			t.Errorf("FormattedTotal = %q, want $0.00", metrics.FormattedTotal)
		}
	})

	t.Run("shares sum to one hundred", func(t *testing.T) {
		engine, _ := newTestEngine(t, seedTx(
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "200.00",
			core.SplitAllocation{Percentage: 75, TaxCategory: "Business"},
			core.SplitAllocation{Percentage: 25, TaxCategory: "Personal"},
		))

		metrics, err := engine.FinancialMetrics(context.Background())
		if err != nil {
			t.Fatalf("FinancialMetrics() error: %v", err)
		}
		if got := metrics.CategoryShares["Business"]; got != 75 {
			t.Errorf("Business share = %v, want 75", got)
		}
		if got := metrics.CategoryShares["Personal"]; got != 25 {
			t.Errorf("Personal share = %v, want 25", got)
		}
	})
}

func TestRealTimeBalance(t *testing.T) {
	t.Run("absent categories default to zero", func(t *testing.T) {
		engine, _ := newTestEngine(t, seedTx(
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "80.00",
			core.SplitAllocation{Percentage: 100, TaxCategory: "Travel"},
		))

		balance, err := engine.RealTimeBalance(context.Background())
		if err != nil {
			t.Fatalf("RealTimeBalance() error: %v", err)
		}
		if !balance.BusinessAllocation.IsZero() || !balance.PersonalAllocation.IsZero() {
			t.Errorf("allocations = %s/%s, want 0/0",
				balance.BusinessAllocation, balance.PersonalAllocation)
		}
		if !balance.TotalBalance.Equal(d("80")) {
			t.Errorf("TotalBalance = %s, want 80", balance.TotalBalance)
		}
	})

	t.Run("case-sensitive lookup", func(t *testing.T) {
		engine, _ := newTestEngine(t, seedTx(
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "80.00",
			core.SplitAllocation{Percentage: 100, TaxCategory: "business"},
		))

		balance, err := engine.RealTimeBalance(context.Background())
		if err != nil {
			t.Fatalf("RealTimeBalance() error: %v", err)
		}
		// "business" does not match "Business".
		if !balance.BusinessAllocation.IsZero() {
			t.Errorf("BusinessAllocation = %s, want 0", balance.BusinessAllocation)
		}
	})
}

func TestMonthlyTrend(t *testing.T) {
	march := func(day int) time.Time {
		return time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC)
	}
	engine, _ := newTestEngine(t,
		seedTx(march(1), "10.00", core.SplitAllocation{Percentage: 100, TaxCategory: "Business"}),
		seedTx(march(20), "52.00", core.SplitAllocation{Percentage: 100, TaxCategory: "Business"}),
		// Next month, must be excluded.
		seedTx(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "999.00",
			core.SplitAllocation{Percentage: 100, TaxCategory: "Business"}),
	)

	summary, err := engine.MonthlyTrend(context.Background(), march(15))
	if err != nil {
		t.Fatalf("MonthlyTrend() error: %v", err)
	}

	if summary.Year != 2025 || summary.Month != 3 {
		t.Errorf("period = %d-%02d, want 2025-03", summary.Year, summary.Month)
	}
	if summary.TransactionCount != 2 {
		t.Errorf("TransactionCount = %d, want 2", summary.TransactionCount)
	}
	if !summary.Total.Equal(d("62")) {
		t.Errorf("Total = %s, want 62", summary.Total)
	}
	if summary.Trend != core.TrendIncreasing {
		t.Errorf("Trend = %v, want increasing", summary.Trend)
	}
	wantAvg := d("62").Div(decimal.NewFromInt(31))
	if !summary.DailyAverage.Equal(wantAvg) {
		t.Errorf("DailyAverage = %s, want %s", summary.DailyAverage, wantAvg)
	}
}

func TestEmptyPeriod(t *testing.T) {
	engine, _ := newTestEngine(t)

	summary, err := engine.MonthlyTrend(context.Background(), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MonthlyTrend() on empty ledger: %v", err)
	}
	if summary.TransactionCount != 0 || !summary.Total.IsZero() {
		t.Errorf("empty period: count=%d total=%s, want 0/0", summary.TransactionCount, summary.Total)
	}
	if len(summary.ByCategory) != 0 {
		t.Errorf("empty period breakdown = %v, want empty", summary.ByCategory)
	}
}

func TestQuarterlyRollupEquality(t *testing.T) {
	engine, _ := newTestEngine(t,
		seedTx(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), "100.10",
			core.SplitAllocation{Percentage: 100, TaxCategory: "Business"}),
		seedTx(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), "33.33",
			core.SplitAllocation{Percentage: 33.33, TaxCategory: "A"},
			core.SplitAllocation{Percentage: 66.67, TaxCategory: "B"}),
		seedTx(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "0.07",
			core.SplitAllocation{Percentage: 100, TaxCategory: "Personal"}),
	)
	ctx := context.Background()

	quarterly, err := engine.QuarterlyTrend(ctx, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("QuarterlyTrend() error: %v", err)
	}
	if quarterly.Quarter != 1 || len(quarterly.Months) != 3 {
		t.Fatalf("quarter = %d with %d months, want 1 with 3", quarterly.Quarter, len(quarterly.Months))
	}

	sum := decimal.Zero
	for _, m := range quarterly.Months {
		sum = sum.Add(m.Total)
	}
	if !quarterly.Total.Equal(sum) {
		t.Errorf("quarterly total %s != sum of months %s", quarterly.Total, sum)
	}
}

func TestYearlyRollupEquality(t *testing.T) {
	engine, _ := newTestEngine(t,
		seedTx(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), "10.01",
			core.SplitAllocation{Percentage: 100, TaxCategory: "Business"}),
		seedTx(time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC), "20.02",
			core.SplitAllocation{Percentage: 100, TaxCategory: "Business"}),
		seedTx(time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC), "30.03",
			core.SplitAllocation{Percentage: 100, TaxCategory: "Personal"}),
		seedTx(time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC), "40.04",
			core.SplitAllocation{Percentage: 100, TaxCategory: "Personal"}),
	)
	ctx := context.Background()

	yearly, err := engine.YearlyTrend(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("YearlyTrend() error: %v", err)
	}
	if yearly.Year != 2025 || len(yearly.Quarters) != 4 {
		t.Fatalf("year = %d with %d quarters, want 2025 with 4", yearly.Year, len(yearly.Quarters))
	}

	sum := decimal.Zero
	for _, q := range yearly.Quarters {
		sum = sum.Add(q.Total)
	}
	if !yearly.Total.Equal(sum) {
		t.Errorf("yearly total %s != sum of quarters %s", yearly.Total, sum)
	}
	if !yearly.Total.Equal(d("100.10")) {
		t.Errorf("yearly total = %s, want 100.10", yearly.Total)
	}
}

func TestAggregationFailedWrapping(t *testing.T) {
	engine := NewEngine(failingReader{}, nil, time.UTC)

	_, err := engine.CategoryBreakdown(context.Background())
	if err == nil {
		t.Fatal("expected error from failing reader")
	}
	var kindErr *Error
	if !errors.As(err, &kindErr) {
		t.Fatalf("error %T is not *Error", err)
	}
	if !errors.Is(err, ErrAggregationFailed) {
		t.Errorf("error %v does not match ErrAggregationFailed", err)
	}
}

var errTestStore = errors.New("store unavailable")

type failingReader struct{}

func (failingReader) AllTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errTestStore
}

func (failingReader) TransactionsInRange(context.Context, time.Time, time.Time) ([]core.Transaction, error) {
	return nil, errTestStore
}
