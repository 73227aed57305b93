package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Engine provides the foundational balance-mutation operations:
//  1. LockUserForUpdate: row-level pessimistic lock
//  2. PostLedgerEntry: atomic balance update + append-only insert + outbox event
//
// Every earning/spending command (top-up, promotion redemption, reward
// redemption) composes these inside one database transaction.
type Engine struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
	promotions   repository.PromotionRepository
	rewards      repository.RewardRepository
	outbox       repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	users repository.UserRepository,
	transactions repository.TransactionRepository,
	promotions repository.PromotionRepository,
	rewards repository.RewardRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		users:        users,
		transactions: transactions,
		promotions:   promotions,
		rewards:      rewards,
		outbox:       outbox,
	}
}

// LockUserForUpdate acquires a row-level lock and returns the user.
// Must be called within a transaction.
func (e *Engine) LockUserForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.User, error) {
	user, err := e.users.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return user, nil
}

// PostLedgerEntry atomically adjusts the user's balances and appends the
// matching ledger entry. This is the only sanctioned balance write path; the
// deltas are applied as plain integer addition with no floor, so commands that
// spend must pre-check sufficiency under the row lock before calling it.
//
// Steps, all within the caller's transaction:
//  1. Update balance columns using server-side arithmetic
//  2. Insert the transaction row with the post-update balance snapshot
//  3. Insert the outbox event
func (e *Engine) PostLedgerEntry(ctx context.Context, tx pgx.Tx, params domain.PostLedgerEntryParams) (*domain.Transaction, *domain.User, error) {
	updatedUser, err := e.users.ApplyBalanceDelta(ctx, tx, params.UserID, params.BalanceUpdate)
	if err != nil {
		return nil, nil, fmt.Errorf("apply balance delta: %w", err)
	}
	if updatedUser == nil {
		return nil, nil, domain.ErrNotFound("user", params.UserID.String())
	}

	entry, err := e.transactions.Insert(ctx, tx, params, updatedUser.Balances)
	if err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	event := domain.NewTransactionPostedEvent(entry)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, updatedUser, nil
}

func int64Ptr(v int64) *int64 {
	return &v
}

func ensureJSON(data json.RawMessage) json.RawMessage {
	if data == nil {
		return json.RawMessage(`{}`)
	}
	return data
}

func mergeMeta(base json.RawMessage, extra map[string]interface{}) json.RawMessage {
	merged := make(map[string]interface{})
	if len(base) > 0 {
		_ = json.Unmarshal(base, &merged)
	}
	for k, v := range extra {
		merged[k] = v
	}
	out, _ := json.Marshal(merged)
	return out
}
