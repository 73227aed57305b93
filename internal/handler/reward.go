package handler

import (
	"net/http"

	"github.com/arcadia/loyalty/internal/service"
	"github.com/go-chi/chi/v5"
)

// RewardHandler handles the public and player reward endpoints.
type RewardHandler struct {
	svc *service.RewardService
}

// NewRewardHandler creates a new RewardHandler.
func NewRewardHandler(svc *service.RewardService) *RewardHandler {
	return &RewardHandler{svc: svc}
}

// List handles GET /rewards: active catalog entries.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.svc.List(r.Context(), true)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, rewards)
}

// Get handles GET /rewards/{id}.
func (h *RewardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseUUIDParam(chi.URLParam(r, "id"), "reward id")
	if err != nil {
		RespondError(w, err)
		return
	}

	reward, err := h.svc.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, reward)
}

// Redeem handles POST /rewards/redeem/{id}.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	principal, err := PrincipalFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	rewardID, err := ParseUUIDParam(chi.URLParam(r, "id"), "reward id")
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.svc.Redeem(r.Context(), principal, rewardID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}
