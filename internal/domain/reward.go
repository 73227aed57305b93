package domain

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionStatus enumerates reward redemption fulfillment states.
type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionCompleted RedemptionStatus = "completed"
	RedemptionCancelled RedemptionStatus = "cancelled"
)

// ValidStatusTransition reports whether a redemption may move from one status to
// another. Only forward moves out of pending are allowed.
func ValidStatusTransition(from, to RedemptionStatus) bool {
	return from == RedemptionPending &&
		(to == RedemptionCompleted || to == RedemptionCancelled)
}

// Reward represents a rewards row. Stock is only decremented through the
// redemption engine's conditional update.
type Reward struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	ImageURL       string    `json:"image_url,omitempty"`
	PointsRequired int64     `json:"points_required"`
	Stock          int       `json:"stock"`
	IsActive       bool      `json:"is_active"`
	Category       string    `json:"category,omitempty"`
	Emoji          string    `json:"emoji,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RewardRedemption represents a reward_redemptions row. PointsSpent is a snapshot
// of the price at claim time; the code is the human-presentable claim ticket.
type RewardRedemption struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	RewardID       uuid.UUID        `json:"reward_id"`
	PointsSpent    int64            `json:"points_spent"`
	Status         RedemptionStatus `json:"status"`
	RedemptionCode string           `json:"redemption_code"`
	Notes          *string          `json:"notes,omitempty"`
	ClaimedAt      time.Time        `json:"claimed_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

// RedeemRewardParams is the input to ExecuteRedeemReward.
type RedeemRewardParams struct {
	UserID   uuid.UUID
	RewardID uuid.UUID
	// AdminClaim marks an admin-originated claim: the redemption starts in
	// completed status and the code carries the admin prefix.
	AdminClaim bool
}

// RedeemRewardResult is returned on a successful reward redemption.
type RedeemRewardResult struct {
	Redemption  *RewardRedemption `json:"redemption"`
	Transaction *Transaction      `json:"transaction"`
	User        *User             `json:"user"`
}
