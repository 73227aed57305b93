package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/handler"
	"github.com/arcadia/loyalty/internal/service"
)

// ReportHandler serves the admin analytics, ledger, and audit endpoints.
type ReportHandler struct {
	svc *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Analytics handles GET /admin/analytics.
func (h *ReportHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Analytics(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, report)
}

// Transactions handles GET /admin/transactions with user/type/status/date filters.
func (h *ReportHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	txs, err := h.svc.Transactions(r.Context(), filter)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, txs)
}

// Actions handles GET /admin/actions: the audit trail.
func (h *ReportHandler) Actions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	actions, err := h.svc.AdminActions(r.Context(), limit)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, actions)
}

func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	q := r.URL.Query()
	var filter domain.TransactionFilter

	if raw := q.Get("user_id"); raw != "" {
		id, err := handler.ParseUUIDParam(raw, "user_id")
		if err != nil {
			return filter, err
		}
		filter.UserID = &id
	}
	if raw := q.Get("type"); raw != "" {
		t := domain.TransactionType(raw)
		filter.Type = &t
	}
	if raw := q.Get("status"); raw != "" {
		s := domain.TransactionStatus(raw)
		filter.Status = &s
	}
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, domain.ErrValidation("from must be an RFC 3339 timestamp")
		}
		filter.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, domain.ErrValidation("to must be an RFC 3339 timestamp")
		}
		filter.To = &to
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	return filter, nil
}
