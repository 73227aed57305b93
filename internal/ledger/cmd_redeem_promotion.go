package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExecuteRedeemPromotion grants a promotion's reward to a user, at most once per
// (user, promotion) pair. Pattern: Lock → Eligibility → Redemption insert →
// Counter increment → PostLedgerEntry, all inside the caller's transaction so a
// failure at any step rolls back the whole redemption.
//
// At-most-once is enforced by the unique constraint on promotion_redemptions
// (user_id, promotion_id), not by a pre-query, so two concurrent requests for
// the same pair cannot both succeed. The redemption cap check lives inside the
// counter UPDATE itself for the same reason.
func (e *Engine) ExecuteRedeemPromotion(ctx context.Context, tx pgx.Tx, params domain.RedeemPromotionParams) (*domain.RedeemPromotionResult, error) {
	if _, err := e.LockUserForUpdate(ctx, tx, params.UserID); err != nil {
		return nil, fmt.Errorf("redeem promotion: %w", err)
	}

	promo, err := e.promotions.FindByID(ctx, tx, params.PromotionID)
	if err != nil {
		return nil, fmt.Errorf("find promotion: %w", err)
	}
	if promo == nil {
		return nil, domain.ErrNotFound("promotion", params.PromotionID.String())
	}
	if !promo.ActiveAt(time.Now()) {
		return nil, domain.ErrPromotionNotActive(promo.ID.String())
	}

	grant, err := promo.Grant()
	if err != nil {
		return nil, err
	}

	redemption := &domain.PromotionRedemption{
		ID:           uuid.New(),
		UserID:       params.UserID,
		PromotionID:  promo.ID,
		PointsEarned: grant.Points,
		CoinsEarned:  grant.Coins,
	}
	if err := e.promotions.InsertRedemption(ctx, tx, redemption); err != nil {
		return nil, err
	}

	bumped, err := e.promotions.IncrementRedemptions(ctx, tx, promo.ID)
	if err != nil {
		return nil, fmt.Errorf("increment redemptions: %w", err)
	}
	if !bumped {
		return nil, domain.ErrPromotionExhausted(promo.ID.String())
	}

	meta := mergeMeta(nil, map[string]interface{}{
		"promotion_id":  promo.ID.String(),
		"redemption_id": redemption.ID.String(),
	})

	entry, updatedUser, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:        params.UserID,
		Type:          domain.TxPromotion,
		BalanceUpdate: grant,
		Description:   "promotion: " + promo.Title,
		Status:        domain.TxStatusCompleted,
		Metadata:      meta,
	})
	if err != nil {
		return nil, fmt.Errorf("redeem promotion post: %w", err)
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewPromotionRedeemedEvent(redemption)); err != nil {
		return nil, fmt.Errorf("insert redemption event: %w", err)
	}

	return &domain.RedeemPromotionResult{
		Redemption:  redemption,
		Transaction: entry,
		User:        updatedUser,
	}, nil
}
