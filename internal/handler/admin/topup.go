package admin

import (
	"net/http"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/handler"
	"github.com/arcadia/loyalty/internal/service"
	"github.com/google/uuid"
)

// TopUpHandler serves the manual top-up endpoint.
type TopUpHandler struct {
	svc *service.TopUpService
}

// NewTopUpHandler creates a new TopUpHandler.
func NewTopUpHandler(svc *service.TopUpService) *TopUpHandler {
	return &TopUpHandler{svc: svc}
}

type topUpRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	Coins      int64     `json:"coins"`
	AmountPaid int64     `json:"amount_paid"`
	Reason     string    `json:"reason,omitempty"`
}

// TopUp handles POST /admin/topup.
func (h *TopUpHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	principal, err := handler.PrincipalFromRequest(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var req topUpRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}
	if req.UserID == uuid.Nil {
		handler.RespondError(w, domain.ErrValidation("user_id is required"))
		return
	}

	result, err := h.svc.TopUp(r.Context(), principal, domain.TopUpParams{
		AdminID:    principal.UserID,
		UserID:     req.UserID,
		Coins:      req.Coins,
		AmountPaid: req.AmountPaid,
		Reason:     req.Reason,
	}, r.Header.Get("Idempotency-Key"))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, result)
}
