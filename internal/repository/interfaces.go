package repository

import (
	"context"
	"time"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository provides access to users.
type UserRepository interface {
	// FindByID returns a user by ID, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)

	// FindByEmail returns a user by email, or nil if absent.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the user.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)

	// Create inserts a new user.
	Create(ctx context.Context, db DBTX, user *domain.User) error

	// ApplyBalanceDelta updates balance columns with server-side arithmetic and
	// returns the post-update row. The only write path for either balance.
	ApplyBalanceDelta(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta domain.BalanceUpdate) (*domain.User, error)

	// List returns users ordered by creation time, newest first.
	List(ctx context.Context, db DBTX, limit, offset int) ([]domain.User, error)
}

// TransactionRepository provides access to the append-only transactions ledger.
type TransactionRepository interface {
	// Insert creates a new ledger entry carrying the post-update balance snapshot.
	Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, balances domain.Balances) (*domain.Transaction, error)

	// FindByID returns a transaction by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error)

	// ListByUser returns a user's entries, newest first, with cursor pagination.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, cursor *string, limit int) ([]domain.Transaction, error)

	// List returns ledger entries matching the admin filter, newest first.
	List(ctx context.Context, db DBTX, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

// PromotionRepository provides access to promotions and their redemptions.
type PromotionRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Promotion, error)

	// ListActive returns promotions whose window covers now and is_active is set.
	ListActive(ctx context.Context, db DBTX, now time.Time) ([]domain.Promotion, error)

	// ListAll returns every promotion for the admin surface.
	ListAll(ctx context.Context, db DBTX) ([]domain.Promotion, error)

	Create(ctx context.Context, db DBTX, p *domain.Promotion) error
	Update(ctx context.Context, db DBTX, p *domain.Promotion) error
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// IncrementRedemptions bumps current_redemptions iff the cap allows another
	// redemption. Returns false when the promotion is fully redeemed.
	IncrementRedemptions(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)

	// InsertRedemption records a redemption. A duplicate (user, promotion) pair
	// surfaces as ErrAlreadyRedeemed via the unique constraint.
	InsertRedemption(ctx context.Context, tx pgx.Tx, red *domain.PromotionRedemption) error

	// ListRedemptionsByUser returns a user's redemptions, newest first.
	ListRedemptionsByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.PromotionRedemption, error)
}

// RewardRepository provides access to rewards and their redemptions.
type RewardRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Reward, error)

	// List returns rewards, optionally restricted to active ones.
	List(ctx context.Context, db DBTX, activeOnly bool) ([]domain.Reward, error)

	Create(ctx context.Context, db DBTX, rw *domain.Reward) error
	Update(ctx context.Context, db DBTX, rw *domain.Reward) error
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// DecrementStock takes one unit of stock iff any remains. Returns false when
	// the reward is out of stock. The conditional update closes the last-unit race.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)

	InsertRedemption(ctx context.Context, tx pgx.Tx, red *domain.RewardRedemption) error

	FindRedemptionByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.RewardRedemption, error)

	// ListRedemptions returns redemptions, newest first; userID narrows to one user.
	ListRedemptions(ctx context.Context, db DBTX, userID *uuid.UUID, limit int) ([]domain.RewardRedemption, error)

	// UpdateRedemptionStatus transitions a redemption's fulfillment status.
	UpdateRedemptionStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.RedemptionStatus, notes *string, completedAt *time.Time) error
}

// AdminActionRepository provides access to the admin audit trail.
type AdminActionRepository interface {
	Insert(ctx context.Context, db DBTX, action *domain.AdminAction) error
	List(ctx context.Context, db DBTX, limit int) ([]domain.AdminAction, error)
}

// AnalyticsRepository aggregates ledger and user state for reporting.
type AnalyticsRepository interface {
	GetSalesAnalytics(ctx context.Context, db DBTX) (*domain.SalesAnalytics, error)
	GetUserAnalytics(ctx context.Context, db DBTX) (*domain.UserAnalytics, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event within the same transaction as the ledger entry.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps events as delivered.
	MarkPublished(ctx context.Context, db DBTX, eventIDs []uuid.UUID) error
}
