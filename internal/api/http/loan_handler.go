package http

import (
	"net/http"

	"cluster-ledger-backend/internal/service"

	"github.com/shopspring/decimal"
)

type loanHandler struct {
	svc service.LoanService
}

type createLoanRequest struct {
	UserID   int32           `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	LoanName string          `json:"loan_name"`
}

func (h *loanHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	loan, err := h.svc.CreateLoan(r.Context(), actor, req.UserID, req.Amount, req.LoanName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *loanHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	if err := h.svc.CancelLoan(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

