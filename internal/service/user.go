package service

import (
	"context"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// UserService serves the player-facing balance and history surface.
type UserService struct {
	pool         *pgxpool.Pool
	users        repository.UserRepository
	transactions repository.TransactionRepository
}

// NewUserService creates a new UserService.
func NewUserService(pool *pgxpool.Pool, users repository.UserRepository, transactions repository.TransactionRepository) *UserService {
	return &UserService{pool: pool, users: users, transactions: transactions}
}

// Balance returns the caller's current coin and point balances.
func (s *UserService) Balance(ctx context.Context, userID uuid.UUID) (*domain.Balances, error) {
	user, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return &user.Balances, nil
}

// TransactionPage is one page of a user's ledger history.
type TransactionPage struct {
	Transactions []domain.Transaction `json:"transactions"`
	NextCursor   *string              `json:"next_cursor,omitempty"`
}

// Transactions returns a page of the caller's ledger entries, newest first.
// The cursor is the ID of the first entry of the requested page, as handed
// out in next_cursor by the previous call.
func (s *UserService) Transactions(ctx context.Context, userID uuid.UUID, cursor *string, limit int) (*TransactionPage, error) {
	limit = clampLimit(limit)

	// Fetch one extra row to learn whether another page exists.
	txs, err := s.transactions.ListByUser(ctx, s.pool, userID, cursor, limit+1)
	if err != nil {
		return nil, domain.ErrInternal("list transactions", err)
	}

	// The extra row, when present, is the inclusive cursor for the next page.
	page := &TransactionPage{Transactions: txs}
	if len(txs) > limit {
		page.Transactions = txs[:limit]
		next := txs[limit].ID.String()
		page.NextCursor = &next
	}
	if page.Transactions == nil {
		page.Transactions = []domain.Transaction{}
	}
	return page, nil
}

// ListUsers returns users for the admin directory, newest first.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, s.pool, limit, offset)
	if err != nil {
		return nil, domain.ErrInternal("list users", err)
	}
	return users, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
