package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/ledger"
	"github.com/arcadia/loyalty/internal/metrics"
	"github.com/arcadia/loyalty/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RewardService orchestrates the reward catalog and its redemptions.
type RewardService struct {
	pool    *pgxpool.Pool
	rewards repository.RewardRepository
	actions repository.AdminActionRepository
	outbox  repository.OutboxRepository
	engine  *ledger.Engine
	logger  *slog.Logger
}

// NewRewardService creates a new RewardService.
func NewRewardService(pool *pgxpool.Pool, rewards repository.RewardRepository, actions repository.AdminActionRepository, outbox repository.OutboxRepository, engine *ledger.Engine, logger *slog.Logger) *RewardService {
	return &RewardService{pool: pool, rewards: rewards, actions: actions, outbox: outbox, engine: engine, logger: logger}
}

// List returns the catalog; activeOnly hides retired rewards on the public surface.
func (s *RewardService) List(ctx context.Context, activeOnly bool) ([]domain.Reward, error) {
	rewards, err := s.rewards.List(ctx, s.pool, activeOnly)
	if err != nil {
		return nil, domain.ErrInternal("list rewards", err)
	}
	return rewards, nil
}

// Get returns a single reward.
func (s *RewardService) Get(ctx context.Context, id uuid.UUID) (*domain.Reward, error) {
	rw, err := s.rewards.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find reward", err)
	}
	if rw == nil {
		return nil, domain.ErrNotFound("reward", id.String())
	}
	return rw, nil
}

// Redeem runs the self-service reward redemption engine in one transaction.
func (s *RewardService) Redeem(ctx context.Context, principal domain.Principal, rewardID uuid.UUID) (result *domain.RedeemRewardResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRedemption("reward", redemptionResultLabel(err), time.Since(start).Seconds())
	}()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err = s.engine.ExecuteRedeemReward(ctx, tx, domain.RedeemRewardParams{
		UserID:   principal.UserID,
		RewardID: rewardID,
	})
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("reward redeemed",
		"user_id", principal.UserID,
		"reward_id", rewardID,
		"points_spent", result.Redemption.PointsSpent,
		"code", result.Redemption.RedemptionCode,
	)
	return result, nil
}

// ClaimForUser redeems a reward on a user's behalf at the counter. The
// redemption starts completed and the action lands in the admin audit trail.
// The audit write happens after the mutation commits and is best-effort: a
// failed audit insert is logged but does not mask a successful claim.
func (s *RewardService) ClaimForUser(ctx context.Context, admin domain.Principal, userID, rewardID uuid.UUID) (result *domain.RedeemRewardResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRedemption("reward", redemptionResultLabel(err), time.Since(start).Seconds())
	}()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err = s.engine.ExecuteRedeemReward(ctx, tx, domain.RedeemRewardParams{
		UserID:     userID,
		RewardID:   rewardID,
		AdminClaim: true,
	})
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	meta, _ := json.Marshal(map[string]string{
		"reward_id":       rewardID.String(),
		"redemption_id":   result.Redemption.ID.String(),
		"redemption_code": result.Redemption.RedemptionCode,
	})
	action := &domain.AdminAction{
		ID:           uuid.New(),
		AdminID:      admin.UserID,
		TargetUserID: &userID,
		Action:       "claim_reward",
		Description:  fmt.Sprintf("claimed reward %s for user %s", rewardID, userID),
		Metadata:     meta,
	}
	if auditErr := s.actions.Insert(ctx, s.pool, action); auditErr != nil {
		s.logger.Error("audit log write failed", "action", "claim_reward", "error", auditErr)
	}

	return result, nil
}

// ListRedemptions returns redemptions, optionally narrowed to one user.
func (s *RewardService) ListRedemptions(ctx context.Context, userID *uuid.UUID, limit int) ([]domain.RewardRedemption, error) {
	reds, err := s.rewards.ListRedemptions(ctx, s.pool, userID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list reward redemptions", err)
	}
	return reds, nil
}

// UpdateRedemptionStatus transitions a redemption's fulfillment status.
// Only forward moves out of pending are legal; completing stamps completed_at.
func (s *RewardService) UpdateRedemptionStatus(ctx context.Context, admin domain.Principal, id uuid.UUID, status domain.RedemptionStatus, notes *string) (*domain.RewardRedemption, error) {
	if err := domain.ValidateRedemptionStatus(status); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	red, err := s.rewards.FindRedemptionByID(ctx, tx, id)
	if err != nil {
		return nil, domain.ErrInternal("find redemption", err)
	}
	if red == nil {
		return nil, domain.ErrNotFound("reward redemption", id.String())
	}
	if !domain.ValidStatusTransition(red.Status, status) {
		return nil, domain.ErrConflict(fmt.Sprintf("cannot transition redemption from %s to %s", red.Status, status))
	}

	var completedAt *time.Time
	if status == domain.RedemptionCompleted {
		now := time.Now()
		completedAt = &now
	}

	if err := s.rewards.UpdateRedemptionStatus(ctx, tx, id, status, notes, completedAt); err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, domain.ErrInternal("update redemption status", err)
	}

	red.Status = status
	red.CompletedAt = completedAt
	if notes != nil {
		red.Notes = notes
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewRedemptionResolvedEvent(red)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	meta, _ := json.Marshal(map[string]string{
		"redemption_id": id.String(),
		"status":        string(status),
	})
	action := &domain.AdminAction{
		ID:           uuid.New(),
		AdminID:      admin.UserID,
		TargetUserID: &red.UserID,
		Action:       "update_redemption_status",
		Description:  fmt.Sprintf("redemption %s marked %s", id, status),
		Metadata:     meta,
	}
	if auditErr := s.actions.Insert(ctx, s.pool, action); auditErr != nil {
		s.logger.Error("audit log write failed", "action", "update_redemption_status", "error", auditErr)
	}

	return red, nil
}

// RewardInput holds the admin reward CRUD fields.
type RewardInput struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	ImageURL       string `json:"image_url,omitempty"`
	PointsRequired int64  `json:"points_required"`
	Stock          int    `json:"stock"`
	IsActive       bool   `json:"is_active"`
	Category       string `json:"category,omitempty"`
	Emoji          string `json:"emoji,omitempty"`
}

func (in *RewardInput) validate() error {
	if in.Title == "" {
		return errors.New("title is required")
	}
	if err := domain.ValidatePositiveAmount(in.PointsRequired); err != nil {
		return err
	}
	if in.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	return nil
}

// Create inserts a new catalog reward.
func (s *RewardService) Create(ctx context.Context, in RewardInput) (*domain.Reward, error) {
	if err := in.validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	rw := &domain.Reward{
		ID:             uuid.New(),
		Title:          in.Title,
		Description:    in.Description,
		ImageURL:       in.ImageURL,
		PointsRequired: in.PointsRequired,
		Stock:          in.Stock,
		IsActive:       in.IsActive,
		Category:       in.Category,
		Emoji:          in.Emoji,
	}
	if err := s.rewards.Create(ctx, s.pool, rw); err != nil {
		return nil, domain.ErrInternal("create reward", err)
	}
	return rw, nil
}

// Update rewrites a reward's admin-owned fields.
func (s *RewardService) Update(ctx context.Context, id uuid.UUID, in RewardInput) (*domain.Reward, error) {
	if err := in.validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	rw := &domain.Reward{
		ID:             id,
		Title:          in.Title,
		Description:    in.Description,
		ImageURL:       in.ImageURL,
		PointsRequired: in.PointsRequired,
		Stock:          in.Stock,
		IsActive:       in.IsActive,
		Category:       in.Category,
		Emoji:          in.Emoji,
	}
	if err := s.rewards.Update(ctx, s.pool, rw); err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, domain.ErrInternal("update reward", err)
	}
	return rw, nil
}

// Delete removes a reward from the catalog.
func (s *RewardService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.rewards.Delete(ctx, s.pool, id); err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return domain.ErrInternal("delete reward", err)
	}
	return nil
}
