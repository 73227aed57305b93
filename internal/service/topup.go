package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/guard"
	"github.com/arcadia/loyalty/internal/ledger"
	"github.com/arcadia/loyalty/internal/metrics"
	"github.com/arcadia/loyalty/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// idempotencyTTL bounds how long a processed Idempotency-Key blocks a
// resubmit. Long enough to absorb a double-clicked counter terminal,
// short enough that the in-memory key set stays small.
const idempotencyTTL = 24 * time.Hour

// TopUpService orchestrates manual cashier top-ups.
type TopUpService struct {
	pool        *pgxpool.Pool
	actions     repository.AdminActionRepository
	engine      *ledger.Engine
	idempotency *guard.IdempotencyGuard
	logger      *slog.Logger
}

// NewTopUpService creates a new TopUpService.
func NewTopUpService(pool *pgxpool.Pool, actions repository.AdminActionRepository, engine *ledger.Engine, logger *slog.Logger) *TopUpService {
	return &TopUpService{
		pool:        pool,
		actions:     actions,
		engine:      engine,
		idempotency: guard.NewIdempotencyGuard(idempotencyTTL),
		logger:      logger,
	}
}

// TopUp credits a user with coins and cash-derived points inside one
// transaction, then records the admin audit row. The audit write follows the
// committed mutation and is best-effort: its failure is logged, never surfaced
// as a top-up failure.
//
// An optional idempotency key shields double-submitted counter top-ups; the
// key is released when the top-up fails so the cashier can retry.
func (s *TopUpService) TopUp(ctx context.Context, admin domain.Principal, params domain.TopUpParams, idempotencyKey string) (*domain.TopUpResult, error) {
	if result := s.idempotency.Check(ctx, idempotencyKey); !result.Allowed {
		return nil, domain.ErrDuplicateRequest(result.Reason)
	}

	params.AdminID = admin.UserID

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.idempotency.Remove(idempotencyKey)
		metrics.TopUpsTotal.WithLabelValues("failed").Inc()
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.engine.ExecuteTopUp(ctx, tx, params)
	if err != nil {
		s.idempotency.Remove(idempotencyKey)
		metrics.TopUpsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.idempotency.Remove(idempotencyKey)
		metrics.TopUpsTotal.WithLabelValues("failed").Inc()
		return nil, domain.ErrInternal("commit tx", err)
	}

	metrics.TopUpsTotal.WithLabelValues("success").Inc()
	metrics.CoinsGranted.Add(float64(params.Coins))

	meta, _ := json.Marshal(map[string]interface{}{
		"coins":           params.Coins,
		"amount_paid":     params.AmountPaid,
		"computed_points": result.ComputedPoints,
		"transaction_id":  result.Transaction.ID.String(),
	})
	action := &domain.AdminAction{
		ID:           uuid.New(),
		AdminID:      admin.UserID,
		TargetUserID: &params.UserID,
		Action:       "topup",
		Description:  fmt.Sprintf("topped up user %s: %d coins, %d points (paid %d)", params.UserID, params.Coins, result.ComputedPoints, params.AmountPaid),
		Metadata:     meta,
	}
	if auditErr := s.actions.Insert(ctx, s.pool, action); auditErr != nil {
		s.logger.Error("audit log write failed", "action", "topup", "error", auditErr)
	}

	s.logger.Info("top-up applied",
		"admin_id", admin.UserID,
		"user_id", params.UserID,
		"coins", params.Coins,
		"points", result.ComputedPoints,
	)
	return result, nil
}
