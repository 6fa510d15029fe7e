package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"splitbook/internal/core"
	"splitbook/internal/log"
)

type (
	splitRequest struct {
		Percentage  float64 `json:"percentage"`
		TaxCategory string  `json:"tax_category"`
	}

	lineItemRequest struct {
		Description string         `json:"description"`
		Amount      string         `json:"amount"`
		Quantity    float64        `json:"quantity"`
		UnitPrice   string         `json:"unit_price"`
		Splits      []splitRequest `json:"splits"`
	}

	transactionRequest struct {
		Date      string            `json:"date"` // YYYY-MM-DD
		Amount    string            `json:"amount"`
		Category  string            `json:"category"`
		Note      string            `json:"note"`
		LineItems []lineItemRequest `json:"line_items"`
	}
)

func (req transactionRequest) toDomain() (core.Transaction, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		Date:     date,
		Amount:   amount,
		Category: req.Category,
		Note:     req.Note,
	}
	for _, li := range req.LineItems {
		liAmount, err := core.ParseAmount(li.Amount)
		if err != nil {
			return core.Transaction{}, err
		}
		item := core.LineItem{
			Description: li.Description,
			Amount:      liAmount,
			Quantity:    li.Quantity,
		}
		if li.UnitPrice != "" {
			if item.UnitPrice, err = core.ParseAmount(li.UnitPrice); err != nil {
				return core.Transaction{}, err
			}
		}
		for _, sa := range li.Splits {
			item.Splits = append(item.Splits, core.SplitAllocation{
				Percentage:  sa.Percentage,
				TaxCategory: sa.TaxCategory,
			})
		}
		t.LineItems = append(t.LineItems, item)
	}
	return t, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	t, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	id, err := s.txService.CreateTransaction(ctx, t)
	if err != nil {
		if validationFailed(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(ctx, "Create transaction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "create transaction failed")
		return
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldTxID, id,
		log.FieldCategory, t.Category,
		log.FieldAmount, t.Amount.StringFixed(2))
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	if err := s.txService.DeleteTransaction(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "Delete transaction failed", "id", id, "error", err)
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
