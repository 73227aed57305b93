package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExecuteRedeemReward exchanges loyalty points for a stock-limited catalog
// reward. All six steps (reward check, points check, redemption insert, point
// deduction, stock decrement, ledger entry) commit or roll back together.
//
// The points check runs after LockUserForUpdate so a concurrent redemption
// cannot spend the same points twice, and the stock decrement is conditional
// (stock > 0 in the UPDATE) so two requests cannot both take the last unit.
func (e *Engine) ExecuteRedeemReward(ctx context.Context, tx pgx.Tx, params domain.RedeemRewardParams) (*domain.RedeemRewardResult, error) {
	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("redeem reward: %w", err)
	}

	reward, err := e.rewards.FindByID(ctx, tx, params.RewardID)
	if err != nil {
		return nil, fmt.Errorf("find reward: %w", err)
	}
	if reward == nil {
		return nil, domain.ErrNotFound("reward", params.RewardID.String())
	}
	if !params.AdminClaim && !reward.IsActive {
		return nil, domain.ErrNotFound("reward", params.RewardID.String())
	}
	if reward.Stock <= 0 {
		return nil, domain.ErrOutOfStock(reward.ID.String())
	}

	if user.PointBalance < reward.PointsRequired {
		return nil, domain.ErrInsufficientPoints(reward.PointsRequired, user.PointBalance)
	}

	taken, err := e.rewards.DecrementStock(ctx, tx, reward.ID)
	if err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	if !taken {
		return nil, domain.ErrOutOfStock(reward.ID.String())
	}

	status := domain.RedemptionPending
	var completedAt *time.Time
	if params.AdminClaim {
		status = domain.RedemptionCompleted
		now := time.Now()
		completedAt = &now
	}

	redemption := &domain.RewardRedemption{
		ID:             uuid.New(),
		UserID:         params.UserID,
		RewardID:       reward.ID,
		PointsSpent:    reward.PointsRequired,
		Status:         status,
		RedemptionCode: NewRedemptionCode(params.AdminClaim),
		CompletedAt:    completedAt,
	}
	if err := e.rewards.InsertRedemption(ctx, tx, redemption); err != nil {
		return nil, err
	}

	meta := mergeMeta(nil, map[string]interface{}{
		"reward_id":     reward.ID.String(),
		"redemption_id": redemption.ID.String(),
	})

	entry, updatedUser, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:        params.UserID,
		Type:          domain.TxRewardRedemption,
		BalanceUpdate: domain.BalanceUpdate{Points: -reward.PointsRequired},
		Description:   "reward: " + reward.Title,
		Status:        domain.TxStatusCompleted,
		Metadata:      meta,
	})
	if err != nil {
		return nil, fmt.Errorf("redeem reward post: %w", err)
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewRewardRedeemedEvent(redemption)); err != nil {
		return nil, fmt.Errorf("insert redemption event: %w", err)
	}

	return &domain.RedeemRewardResult{
		Redemption:  redemption,
		Transaction: entry,
		User:        updatedUser,
	}, nil
}
