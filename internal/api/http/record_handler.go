package http

import (
	"context"
	"net/http"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/service"
	"cluster-ledger-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type recordHandler struct {
	svc service.RecordService
}

type assignRecordRequest struct {
	UserID  int32             `json:"user_id"`
	Type    domain.RecordType `json:"type"`
	Amount  decimal.Decimal   `json:"amount"`
	DueDate string            `json:"due_date"`
	LoanID  *int32            `json:"loan_id,omitempty"`
}

type cashOutRequest struct {
	UserID int32             `json:"user_id"`
	Type   domain.RecordType `json:"type"`
}

type settleResponse struct {
	Status domain.RecordStatus `json:"status"`
}

type cashOutResponse struct {
	Affected int64 `json:"affected"`
}

func (h *recordHandler) assign(w http.ResponseWriter, r *http.Request) {
	var req assignRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	due, err := utils.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, r, &domain.ValidationError{Field: "due_date", Reason: "expected YYYY-MM-DD"})
		return
	}

	actor, _ := ActorFrom(r.Context())
	rec, err := h.svc.AssignRecord(r.Context(), actor, service.AssignRecordInput{
		UserID:  req.UserID,
		Type:    req.Type,
		Amount:  req.Amount,
		DueDate: due,
		LoanID:  req.LoanID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *recordHandler) settle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	status, err := h.svc.Settle(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settleResponse{Status: status})
}

func (h *recordHandler) reset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	if err := h.svc.Reset(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *recordHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *recordHandler) cashOut(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.svc.CashOut)
}

func (h *recordHandler) undoCashOut(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.svc.UndoCashOut)
}

type bulkTransition func(ctx context.Context, actor domain.Actor, userID int32, recordType domain.RecordType) (int64, error)

func (h *recordHandler) bulk(w http.ResponseWriter, r *http.Request, apply bulkTransition) {
	var req cashOutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	n, err := apply(r.Context(), actor, req.UserID, req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cashOutResponse{Affected: n})
}

func (h *recordHandler) totals(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	totals, err := h.svc.Totals(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *recordHandler) list(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	records, err := h.svc.ListRecords(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.FinancialRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
