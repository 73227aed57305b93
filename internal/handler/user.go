package handler

import (
	"net/http"
	"strconv"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/service"
	"github.com/google/uuid"
)

// UserHandler serves the authenticated player's balance and history endpoints.
type UserHandler struct {
	users      *service.UserService
	promotions *service.PromotionService
	rewards    *service.RewardService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, promotions *service.PromotionService, rewards *service.RewardService) *UserHandler {
	return &UserHandler{users: users, promotions: promotions, rewards: rewards}
}

// Balance handles GET /user/balance.
func (h *UserHandler) Balance(w http.ResponseWriter, r *http.Request) {
	principal, err := PrincipalFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	balances, err := h.users.Balance(r.Context(), principal.UserID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, balances)
}

// Transactions handles GET /user/transactions with cursor pagination.
func (h *UserHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	principal, err := PrincipalFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		// The cursor is a transaction ID from a previous page. Reject junk
		// here rather than letting it fail inside the query.
		if _, err := uuid.Parse(c); err != nil {
			RespondError(w, domain.ErrValidation("invalid cursor: must be a transaction id"))
			return
		}
		cursor = &c
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	page, err := h.users.Transactions(r.Context(), principal.UserID, cursor, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, page)
}

// RedeemedPromotions handles GET /user/promotions/redeemed.
func (h *UserHandler) RedeemedPromotions(w http.ResponseWriter, r *http.Request) {
	principal, err := PrincipalFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	redemptions, err := h.promotions.ListUserRedemptions(r.Context(), principal.UserID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, redemptions)
}

// RewardRedemptions handles GET /user/rewards/redemptions.
func (h *UserHandler) RewardRedemptions(w http.ResponseWriter, r *http.Request) {
	principal, err := PrincipalFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	redemptions, err := h.rewards.ListRedemptions(r.Context(), &principal.UserID, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, redemptions)
}
