package handler

import (
	"net/http"

	"github.com/arcadia/loyalty/internal/service"
	"github.com/go-chi/chi/v5"
)

// PromotionHandler handles the public and player promotion endpoints.
type PromotionHandler struct {
	svc *service.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(svc *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{svc: svc}
}

// ListActive handles GET /promotions: currently redeemable promotions only.
func (h *PromotionHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	promos, err := h.svc.ListActive(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, promos)
}

// Redeem handles POST /promotions/redeem/{id}.
func (h *PromotionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	principal, err := PrincipalFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	promoID, err := ParseUUIDParam(chi.URLParam(r, "id"), "promotion id")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.svc.Redeem(r.Context(), principal, promoID)
	if err != nil {
		RespondError(w, err)
		return
	}

	// 201: the redemption row is a created resource, same as reward redeem.
	RespondJSON(w, http.StatusCreated, result)
}
