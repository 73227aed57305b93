package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/ledger"
	"github.com/arcadia/loyalty/internal/metrics"
	"github.com/arcadia/loyalty/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PromotionService orchestrates promotion reads and redemptions.
type PromotionService struct {
	pool       *pgxpool.Pool
	promotions repository.PromotionRepository
	engine     *ledger.Engine
	logger     *slog.Logger
}

// NewPromotionService creates a new PromotionService.
func NewPromotionService(pool *pgxpool.Pool, promotions repository.PromotionRepository, engine *ledger.Engine, logger *slog.Logger) *PromotionService {
	return &PromotionService{pool: pool, promotions: promotions, engine: engine, logger: logger}
}

// ListActive returns promotions currently open for redemption.
func (s *PromotionService) ListActive(ctx context.Context) ([]domain.Promotion, error) {
	promos, err := s.promotions.ListActive(ctx, s.pool, time.Now())
	if err != nil {
		return nil, domain.ErrInternal("list active promotions", err)
	}
	return promos, nil
}

// Redeem runs the promotion redemption engine inside one database transaction.
func (s *PromotionService) Redeem(ctx context.Context, principal domain.Principal, promotionID uuid.UUID) (result *domain.RedeemPromotionResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRedemption("promotion", redemptionResultLabel(err), time.Since(start).Seconds())
	}()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err = s.engine.ExecuteRedeemPromotion(ctx, tx, domain.RedeemPromotionParams{
		UserID:      principal.UserID,
		PromotionID: promotionID,
	})
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("promotion redeemed",
		"user_id", principal.UserID,
		"promotion_id", promotionID,
		"points_earned", result.Redemption.PointsEarned,
		"coins_earned", result.Redemption.CoinsEarned,
	)
	return result, nil
}

// ListUserRedemptions returns the caller's redemption history.
func (s *PromotionService) ListUserRedemptions(ctx context.Context, userID uuid.UUID) ([]domain.PromotionRedemption, error) {
	reds, err := s.promotions.ListRedemptionsByUser(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("list promotion redemptions", err)
	}
	return reds, nil
}

// ListAll returns every promotion for the admin surface.
func (s *PromotionService) ListAll(ctx context.Context) ([]domain.Promotion, error) {
	promos, err := s.promotions.ListAll(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("list promotions", err)
	}
	return promos, nil
}

// CreateInput holds the admin promotion-creation fields.
type PromotionInput struct {
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Type           domain.PromotionType `json:"type"`
	Value          int64                `json:"value"`
	IsActive       bool                 `json:"is_active"`
	StartDate      time.Time            `json:"start_date"`
	EndDate        time.Time            `json:"end_date"`
	MaxRedemptions *int                 `json:"max_redemptions,omitempty"`
	Emoji          string               `json:"emoji,omitempty"`
}

func (in *PromotionInput) validate() error {
	if in.Title == "" {
		return errors.New("title is required")
	}
	if err := domain.ValidatePromotionType(in.Type); err != nil {
		return err
	}
	if err := domain.ValidatePositiveAmount(in.Value); err != nil {
		return err
	}
	if err := domain.ValidatePromotionWindow(in.StartDate, in.EndDate); err != nil {
		return err
	}
	if in.MaxRedemptions != nil && *in.MaxRedemptions <= 0 {
		return errors.New("max redemptions must be positive when set")
	}
	return nil
}

// Create inserts a new promotion after validating type and window.
func (s *PromotionService) Create(ctx context.Context, in PromotionInput) (*domain.Promotion, error) {
	if err := in.validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	p := &domain.Promotion{
		ID:             uuid.New(),
		Title:          in.Title,
		Description:    in.Description,
		Type:           in.Type,
		Value:          in.Value,
		IsActive:       in.IsActive,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		MaxRedemptions: in.MaxRedemptions,
		Emoji:          in.Emoji,
	}
	if err := s.promotions.Create(ctx, s.pool, p); err != nil {
		return nil, domain.ErrInternal("create promotion", err)
	}
	return p, nil
}

// Update rewrites an existing promotion's admin-owned fields.
func (s *PromotionService) Update(ctx context.Context, id uuid.UUID, in PromotionInput) (*domain.Promotion, error) {
	if err := in.validate(); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	p := &domain.Promotion{
		ID:             id,
		Title:          in.Title,
		Description:    in.Description,
		Type:           in.Type,
		Value:          in.Value,
		IsActive:       in.IsActive,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		MaxRedemptions: in.MaxRedemptions,
		Emoji:          in.Emoji,
	}
	if err := s.promotions.Update(ctx, s.pool, p); err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, domain.ErrInternal("update promotion", err)
	}
	return p, nil
}

// Delete removes a promotion.
func (s *PromotionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.promotions.Delete(ctx, s.pool, id); err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return domain.ErrInternal("delete promotion", err)
	}
	return nil
}

// redemptionResultLabel maps an operation outcome to a metric label.
func redemptionResultLabel(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Status < 500 {
		return "conflict"
	}
	return "failed"
}
