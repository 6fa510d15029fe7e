package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"splitbook/internal/cache"
	"splitbook/internal/core"
	"splitbook/internal/ledger"
)

const (
	// DefaultCacheTTL is how long a memoized aggregation stays fresh.
	DefaultCacheTTL = 300 * time.Second

	// DefaultCacheSize bounds the number of memoized query signatures.
	DefaultCacheSize = 256

	// CategoryBusiness and CategoryPersonal are the labels RealTimeBalance
	// projects out of the breakdown. Free-form strings, so the lookup is
	// case-sensitive exact match.
	CategoryBusiness = "Business"
	CategoryPersonal = "Personal"
)

// Engine is the metrics facade: aggregation and period rollups over a ledger
// store, memoized per query signature. Operations are synchronous once the
// store query returns; only the cache is mutable state and it is
// mutex-confined inside the cache package.
type Engine struct {
	reader ledger.Reader
	cache  cache.Cache[any]
	loc    *time.Location
}

// NewEngine creates an engine over reader. A nil loc pins periods to
// Australia/Sydney, falling back to UTC if tzdata is unavailable.
func NewEngine(reader ledger.Reader, c cache.Cache[any], loc *time.Location) *Engine {
	if c == nil {
		c = cache.NewTTLCache[any](DefaultCacheSize, DefaultCacheTTL)
	}
	if loc == nil {
		var err error
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			slog.Warn("Timezone unavailable, falling back to UTC",
				"timezone", DefaultTimezone, "error", err)
			loc = time.UTC
		}
	}
	return &Engine{reader: reader, cache: c, loc: loc}
}

// Location returns the timezone period boundaries are evaluated in.
func (e *Engine) Location() *time.Location { return e.loc }

// Invalidate drops every memoized result. Call after any ledger mutation.
func (e *Engine) Invalidate() {
	e.cache.Purge()
}

// CategoryBreakdown aggregates the full ledger by tax category.
func (e *Engine) CategoryBreakdown(ctx context.Context) (core.CategoryBreakdown, error) {
	key := cache.Key("categoryBreakdown")
	if v, ok := e.cache.Get(key); ok {
		return v.(core.CategoryBreakdown).Clone(), nil
	}

	transactions, err := e.reader.AllTransactions(ctx)
	if err != nil {
		return nil, aggregationFailed("category breakdown", err)
	}

	breakdown := AggregateByCategory(Flatten(transactions))
	e.cache.Set(key, breakdown)
	return breakdown.Clone(), nil
}

// FinancialMetrics derives each category's percentage of the overall total.
// A zero total reports zero for every share.
func (e *Engine) FinancialMetrics(ctx context.Context) (core.FinancialMetrics, error) {
	breakdown, err := e.CategoryBreakdown(ctx)
	if err != nil {
		return core.FinancialMetrics{}, err
	}

	total := breakdown.Total()
	shares := make(map[string]float64, len(breakdown))
	for category, amount := range breakdown {
		if total.IsZero() {
			shares[category] = 0
			continue
		}
		share, _ := amount.Div(total).Mul(oneHundred).Float64()
		shares[category] = share
	}

	return core.FinancialMetrics{
		TotalAmount:    total,
		CategoryShares: shares,
		FormattedTotal: core.FormatAUD(total),
	}, nil
}

// RealTimeBalance projects the Business and Personal categories out of the
// full breakdown, defaulting to zero when a label is absent.
func (e *Engine) RealTimeBalance(ctx context.Context) (core.Balance, error) {
	breakdown, err := e.CategoryBreakdown(ctx)
	if err != nil {
		return core.Balance{}, err
	}

	business, ok := breakdown[CategoryBusiness]
	if !ok {
		business = decimal.Zero
	}
	personal, ok := breakdown[CategoryPersonal]
	if !ok {
		personal = decimal.Zero
	}

	return core.Balance{
		TotalBalance:       breakdown.Total(),
		BusinessAllocation: business,
		PersonalAllocation: personal,
		ByCategory:         breakdown,
	}, nil
}

// MonthlyTrend aggregates the calendar month containing ref.
func (e *Engine) MonthlyTrend(ctx context.Context, ref time.Time) (core.MonthlySummary, error) {
	start, end := MonthBounds(ref, e.loc)
	key := cache.Key("monthlyTrend", start.Year(), int(start.Month()))
	if v, ok := e.cache.Get(key); ok {
		return v.(core.MonthlySummary), nil
	}

	transactions, err := e.reader.TransactionsInRange(ctx, start, end)
	if err != nil {
		return core.MonthlySummary{}, aggregationFailed("monthly trend", err)
	}

	breakdown := AggregateByCategory(Flatten(transactions))
	total := breakdown.Total()
	days := DaysInMonth(start, e.loc)

	summary := core.MonthlySummary{
		Year:             start.Year(),
		Month:            int(start.Month()),
		ByCategory:       breakdown,
		TransactionCount: len(transactions),
		Trend:            trendOf(transactions),
		Total:            total,
		DailyAverage:     total.Div(decimal.NewFromInt(int64(days))),
	}
	e.cache.Set(key, summary)
	return summary, nil
}

// QuarterlyTrend aggregates the calendar quarter containing ref by fanning
// out over its three months. Summation is commutative, so month completion
// order does not matter.
func (e *Engine) QuarterlyTrend(ctx context.Context, ref time.Time) (core.QuarterlySummary, error) {
	local := ref.In(e.loc)
	quarter := QuarterOf(ref, e.loc)
	key := cache.Key("quarterlyTrend", local.Year(), quarter)
	if v, ok := e.cache.Get(key); ok {
		return v.(core.QuarterlySummary), nil
	}

	refs := QuarterMonths(ref, e.loc)
	months := make([]core.MonthlySummary, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	for i, monthRef := range refs {
		g.Go(func() error {
			summary, err := e.MonthlyTrend(gctx, monthRef)
			if err != nil {
				return err
			}
			months[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.QuarterlySummary{}, err
	}

	total := decimal.Zero
	for _, m := range months {
		total = total.Add(m.Total)
	}

	summary := core.QuarterlySummary{
		Year:    local.Year(),
		Quarter: quarter,
		Months:  months,
		Total:   total,
	}
	e.cache.Set(key, summary)
	return summary, nil
}

// YearlyTrend aggregates the calendar year containing ref by fanning out
// over its four quarters.
func (e *Engine) YearlyTrend(ctx context.Context, ref time.Time) (core.YearlySummary, error) {
	local := ref.In(e.loc)
	key := cache.Key("yearlyTrend", local.Year())
	if v, ok := e.cache.Get(key); ok {
		return v.(core.YearlySummary), nil
	}

	refs := YearQuarters(ref, e.loc)
	quarters := make([]core.QuarterlySummary, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	for i, quarterRef := range refs {
		g.Go(func() error {
			summary, err := e.QuarterlyTrend(gctx, quarterRef)
			if err != nil {
				return err
			}
			quarters[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.YearlySummary{}, err
	}

	total := decimal.Zero
	for _, q := range quarters {
		total = total.Add(q.Total)
	}

	summary := core.YearlySummary{
		Year:     local.Year(),
		Quarters: quarters,
		Total:    total,
	}
	e.cache.Set(key, summary)
	return summary, nil
}
