package http

import (
	"context"
	"net/http"
	"time"

	"splitbook/internal/core"
)

const queryTimeout = 10 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
		"timezone":  s.engine.Location().String(),
	})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	breakdown, err := s.engine.CategoryBreakdown(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Category breakdown failed", "error", err)
		writeError(w, http.StatusInternalServerError, "category breakdown failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"by_category": breakdownDTO(breakdown),
		"total":       breakdown.Total().StringFixed(2),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	metrics, err := s.engine.FinancialMetrics(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Financial metrics failed", "error", err)
		writeError(w, http.StatusInternalServerError, "financial metrics failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_amount":    metrics.TotalAmount.StringFixed(2),
		"category_shares": metrics.CategoryShares,
		"formatted_total": metrics.FormattedTotal,
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	balance, err := s.engine.RealTimeBalance(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Real-time balance failed", "error", err)
		writeError(w, http.StatusInternalServerError, "real-time balance failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_balance":       balance.TotalBalance.StringFixed(2),
		"business_allocation": balance.BusinessAllocation.StringFixed(2),
		"personal_allocation": balance.PersonalAllocation.StringFixed(2),
		"by_category":         breakdownDTO(balance.ByCategory),
	})
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	ref, err := parseRefDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	summary, err := s.engine.MonthlyTrend(ctx, ref)
	if err != nil {
		s.logger.ErrorContext(ctx, "Monthly trend failed", "error", err)
		writeError(w, http.StatusInternalServerError, "monthly trend failed")
		return
	}

	writeJSON(w, http.StatusOK, monthlyDTO(summary))
}

func (s *Server) handleQuarterlyTrend(w http.ResponseWriter, r *http.Request) {
	ref, err := parseRefDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	summary, err := s.engine.QuarterlyTrend(ctx, ref)
	if err != nil {
		s.logger.ErrorContext(ctx, "Quarterly trend failed", "error", err)
		writeError(w, http.StatusInternalServerError, "quarterly trend failed")
		return
	}

	months := make([]map[string]any, len(summary.Months))
	for i, m := range summary.Months {
		months[i] = monthlyDTO(m)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":    summary.Year,
		"quarter": summary.Quarter,
		"months":  months,
		"total":   summary.Total.StringFixed(2),
	})
}

func (s *Server) handleYearlyTrend(w http.ResponseWriter, r *http.Request) {
	ref, err := parseRefDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	summary, err := s.engine.YearlyTrend(ctx, ref)
	if err != nil {
		s.logger.ErrorContext(ctx, "Yearly trend failed", "error", err)
		writeError(w, http.StatusInternalServerError, "yearly trend failed")
		return
	}

	quarters := make([]map[string]any, len(summary.Quarters))
	for i, q := range summary.Quarters {
		quarters[i] = map[string]any{
			"year":    q.Year,
			"quarter": q.Quarter,
			"total":   q.Total.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":     summary.Year,
		"quarters": quarters,
		"total":    summary.Total.StringFixed(2),
	})
}

func (s *Server) handleMonthlyRollup(w http.ResponseWriter, r *http.Request) {
	if s.rollups == nil {
		writeError(w, http.StatusNotFound, "rollups not available on this backend")
		return
	}

	year, month := parseYearMonth(r)

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	rows, err := s.rollups.MonthlyRollup(ctx, year, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "Monthly rollup read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "monthly rollup read failed")
		return
	}

	categories := make([]map[string]any, len(rows))
	for i, row := range rows {
		categories[i] = map[string]any{
			"tax_category": row.TaxCategory,
			"amount_cents": row.AmountCents,
			"updated_at":   row.UpdatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":       year,
		"month":      month,
		"categories": categories,
	})
}

func monthlyDTO(m core.MonthlySummary) map[string]any {
	return map[string]any{
		"year":              m.Year,
		"month":             m.Month,
		"by_category":       breakdownDTO(m.ByCategory),
		"transaction_count": m.TransactionCount,
		"trend":             string(m.Trend),
		"total":             m.Total.StringFixed(2),
		"daily_average":     m.DailyAverage.StringFixed(2),
	}
}
