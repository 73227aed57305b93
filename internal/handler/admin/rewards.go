package admin

import (
	"net/http"
	"strconv"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/handler"
	"github.com/arcadia/loyalty/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RewardHandler serves the admin reward catalog and fulfillment surface.
type RewardHandler struct {
	svc *service.RewardService
}

// NewRewardHandler creates a new RewardHandler.
func NewRewardHandler(svc *service.RewardService) *RewardHandler {
	return &RewardHandler{svc: svc}
}

// List handles GET /admin/rewards: every reward, retired ones included.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.svc.List(r.Context(), false)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, rewards)
}

// Create handles POST /admin/rewards.
func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.RewardInput
	if err := handler.DecodeJSON(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}

	reward, err := h.svc.Create(r.Context(), in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, reward)
}

// Update handles PUT /admin/rewards/{id}.
func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseUUIDParam(chi.URLParam(r, "id"), "reward id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var in service.RewardInput
	if err := handler.DecodeJSON(r, &in); err != nil {
		handler.RespondError(w, err)
		return
	}

	reward, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, reward)
}

// Delete handles DELETE /admin/rewards/{id}.
func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseUUIDParam(chi.URLParam(r, "id"), "reward id")
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

type claimRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	RewardID uuid.UUID `json:"reward_id"`
}

// Claim handles POST /admin/rewards/claim: a counter-side redemption on a
// player's behalf, completed immediately.
func (h *RewardHandler) Claim(w http.ResponseWriter, r *http.Request) {
	principal, err := handler.PrincipalFromRequest(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var req claimRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}
	if req.UserID == uuid.Nil || req.RewardID == uuid.Nil {
		handler.RespondError(w, domain.ErrValidation("user_id and reward_id are required"))
		return
	}

	result, err := h.svc.ClaimForUser(r.Context(), principal, req.UserID, req.RewardID)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, result)
}

// ListRedemptions handles GET /admin/rewards/redemptions, optionally narrowed
// to one user via ?user_id=.
func (h *RewardHandler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := handler.ParseUUIDParam(raw, "user_id")
		if err != nil {
			handler.RespondError(w, err)
			return
		}
		userID = &id
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	redemptions, err := h.svc.ListRedemptions(r.Context(), userID, limit)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, redemptions)
}

type statusUpdateRequest struct {
	Status domain.RedemptionStatus `json:"status"`
	Notes  *string                 `json:"notes,omitempty"`
}

// UpdateRedemptionStatus handles PUT /admin/rewards/redemptions/{id}/status.
func (h *RewardHandler) UpdateRedemptionStatus(w http.ResponseWriter, r *http.Request) {
	principal, err := handler.PrincipalFromRequest(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	id, err := handler.ParseUUIDParam(chi.URLParam(r, "id"), "redemption id")
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var req statusUpdateRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondError(w, err)
		return
	}

	red, err := h.svc.UpdateRedemptionStatus(r.Context(), principal, id, req.Status, req.Notes)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, red)
}
