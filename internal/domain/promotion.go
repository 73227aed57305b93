package domain

import (
	"time"

	"github.com/google/uuid"
)

// PromotionType enumerates promotion grant kinds.
type PromotionType string

const (
	PromoBonusPoints PromotionType = "bonus_points"
	PromoExtraCoins  PromotionType = "extra_coins"

	// Declared but never given grant semantics in the venue's catalog; creation
	// rejects them and the redemption engine refuses them outright rather than
	// silently granting nothing.
	PromoDiscount    PromotionType = "discount"
	PromoFreeCredits PromotionType = "free_credits"
)

// Promotion represents a promotions row. The redemption engine only ever touches
// current_redemptions; everything else is admin-owned.
type Promotion struct {
	ID                 uuid.UUID     `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Type               PromotionType `json:"type"`
	Value              int64         `json:"value"`
	IsActive           bool          `json:"is_active"`
	StartDate          time.Time     `json:"start_date"`
	EndDate            time.Time     `json:"end_date"`
	MaxRedemptions     *int          `json:"max_redemptions,omitempty"`
	CurrentRedemptions int           `json:"current_redemptions"`
	Emoji              string        `json:"emoji,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
}

// ActiveAt reports whether the promotion window covers the given instant.
func (p *Promotion) ActiveAt(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// Grant computes the coins and points a redemption of this promotion awards.
func (p *Promotion) Grant() (BalanceUpdate, error) {
	switch p.Type {
	case PromoBonusPoints:
		return BalanceUpdate{Points: p.Value}, nil
	case PromoExtraCoins:
		return BalanceUpdate{Coins: p.Value}, nil
	default:
		return BalanceUpdate{}, ErrValidation("promotion type " + string(p.Type) + " has no grant semantics")
	}
}

// PromotionRedemption represents a promotion_redemptions row. The granted amounts
// are snapshots; later promotion edits do not rewrite them.
type PromotionRedemption struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	PromotionID  uuid.UUID `json:"promotion_id"`
	PointsEarned int64     `json:"points_earned"`
	CoinsEarned  int64     `json:"coins_earned"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}

// RedeemPromotionParams is the input to ExecuteRedeemPromotion.
type RedeemPromotionParams struct {
	UserID      uuid.UUID
	PromotionID uuid.UUID
}

// RedeemPromotionResult is returned on a successful promotion redemption.
type RedeemPromotionResult struct {
	Redemption  *PromotionRedemption `json:"redemption"`
	Transaction *Transaction         `json:"transaction"`
	User        *User                `json:"user"`
}
