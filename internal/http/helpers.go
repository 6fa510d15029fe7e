package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"splitbook/internal/core"
)

// validationFailed reports whether err stems from write-path validation, as
// opposed to a storage or messaging failure.
func validationFailed(err error) bool {
	for _, sentinel := range []error{
		core.ErrMissingDate,
		core.ErrEmptyCategory,
		core.ErrEmptyDescription,
		core.ErrBadPercentage,
		core.ErrEmptyTaxCategory,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseRefDate reads the optional ?date=YYYY-MM-DD parameter, defaulting to
// now. The engine resolves period boundaries in its own timezone.
func parseRefDate(r *http.Request) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", v)
}

// parseYearMonth extracts year and month query parameters, defaulting to the
// current month.
func parseYearMonth(r *http.Request) (year, month int) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	return year, month
}

// breakdownDTO renders a category breakdown with fixed two-digit amounts.
func breakdownDTO(b core.CategoryBreakdown) map[string]string {
	out := make(map[string]string, len(b))
	for category, amount := range b {
		out[category] = amount.StringFixed(2)
	}
	return out
}
