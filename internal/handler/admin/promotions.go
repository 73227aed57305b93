package admin

import (
	"net/http"

	"github.com/arcadia/loyalty/internal/handler"
	"github.com/arcadia/loyalty/internal/service"
	"github.com/go-chi/chi/v5"
)

// PromotionHandler serves the admin promotion CRUD surface.
type PromotionHandler struct {
	svc *service.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(svc *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{svc: svc}
}

// List handles GET /admin/promotions: every promotion, active or not.
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	promos, err := h.svc.ListAll(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, promos)
}

// Create handles POST /admin/promotions.
func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.PromotionInput
	if err := handler.DecodeJSON(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}

	promo, err := h.svc.Create(r.Context(), in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, promo)
}

// Update handles PUT /admin/promotions/{id}.
func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseUUIDParam(chi.URLParam(r, "id"), "promotion id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var in service.PromotionInput
	if err := handler.DecodeJSON(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}

	promo, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, promo)
}

// Delete handles DELETE /admin/promotions/{id}.
func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseUUIDParam(chi.URLParam(r, "id"), "promotion id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
