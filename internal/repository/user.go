package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, role, coin_balance, point_balance, level, created_at, updated_at`

type userRepo struct{}

// NewUserRepository returns a pgx-backed UserRepository.
func NewUserRepository() UserRepository {
	return &userRepo{}
}

func (r *userRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *userRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	return scanUser(row)
}

func (r *userRepo) Create(ctx context.Context, db DBTX, user *domain.User) error {
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, coin_balance, point_balance, level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.PasswordHash, string(user.Role),
		user.CoinBalance, user.PointBalance, user.Level,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// ApplyBalanceDelta uses server-side arithmetic with dynamic SET clauses so the
// database, not the application, performs the addition.
func (r *userRepo) ApplyBalanceDelta(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta domain.BalanceUpdate) (*domain.User, error) {
	setClauses := []string{"updated_at = now()"}
	args := []interface{}{}
	argIdx := 1

	if delta.HasCoinDelta() {
		setClauses = append(setClauses, fmt.Sprintf("coin_balance = coin_balance + $%d", argIdx))
		args = append(args, delta.Coins)
		argIdx++
	}
	if delta.HasPointDelta() {
		setClauses = append(setClauses, fmt.Sprintf("point_balance = point_balance + $%d", argIdx))
		args = append(args, delta.Points)
		argIdx++
	}

	args = append(args, userID)
	query := fmt.Sprintf(`
		UPDATE users SET %s
		WHERE id = $%d
		RETURNING `+userColumns,
		strings.Join(setClauses, ", "), argIdx)

	row := tx.QueryRow(ctx, query, args...)
	return scanUser(row)
}

func (r *userRepo) List(ctx context.Context, db DBTX, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUserInto(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role,
		&u.CoinBalance, &u.PointBalance, &u.Level, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func scanUserInto(rows pgx.Rows, u *domain.User) error {
	err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role,
		&u.CoinBalance, &u.PointBalance, &u.Level, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("scan user row: %w", err)
	}
	return nil
}
