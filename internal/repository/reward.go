package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const rewardColumns = `id, title, description, image_url, points_required, stock,
	is_active, category, emoji, created_at, updated_at`

const redemptionColumns = `id, user_id, reward_id, points_spent, status,
	redemption_code, notes, claimed_at, completed_at`

type rewardRepo struct{}

// NewRewardRepository returns a pgx-backed RewardRepository.
func NewRewardRepository() RewardRepository {
	return &rewardRepo{}
}

func (r *rewardRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Reward, error) {
	row := db.QueryRow(ctx,
		`SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, id)
	return scanReward(row)
}

func (r *rewardRepo) List(ctx context.Context, db DBTX, activeOnly bool) ([]domain.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query rewards: %w", err)
	}
	defer rows.Close()

	var rewards []domain.Reward
	for rows.Next() {
		var rw domain.Reward
		err := rows.Scan(&rw.ID, &rw.Title, &rw.Description, &rw.ImageURL,
			&rw.PointsRequired, &rw.Stock, &rw.IsActive, &rw.Category, &rw.Emoji,
			&rw.CreatedAt, &rw.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan reward row: %w", err)
		}
		rewards = append(rewards, rw)
	}
	return rewards, rows.Err()
}

func (r *rewardRepo) Create(ctx context.Context, db DBTX, rw *domain.Reward) error {
	row := db.QueryRow(ctx, `
		INSERT INTO rewards
		  (id, title, description, image_url, points_required, stock, is_active, category, emoji)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		rw.ID, rw.Title, rw.Description, rw.ImageURL,
		rw.PointsRequired, rw.Stock, rw.IsActive, rw.Category, rw.Emoji,
	)
	if err := row.Scan(&rw.CreatedAt, &rw.UpdatedAt); err != nil {
		return fmt.Errorf("insert reward: %w", err)
	}
	return nil
}

func (r *rewardRepo) Update(ctx context.Context, db DBTX, rw *domain.Reward) error {
	tag, err := db.Exec(ctx, `
		UPDATE rewards
		SET title = $2, description = $3, image_url = $4, points_required = $5,
		    stock = $6, is_active = $7, category = $8, emoji = $9, updated_at = now()
		WHERE id = $1`,
		rw.ID, rw.Title, rw.Description, rw.ImageURL,
		rw.PointsRequired, rw.Stock, rw.IsActive, rw.Category, rw.Emoji,
	)
	if err != nil {
		return fmt.Errorf("update reward: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("reward", rw.ID.String())
	}
	return nil
}

func (r *rewardRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `DELETE FROM rewards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("reward", id.String())
	}
	return nil
}

// DecrementStock checks availability and takes a unit in the same statement.
func (r *rewardRepo) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE rewards
		SET stock = stock - 1, updated_at = now()
		WHERE id = $1 AND stock > 0`, id)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *rewardRepo) InsertRedemption(ctx context.Context, tx pgx.Tx, red *domain.RewardRedemption) error {
	row := tx.QueryRow(ctx, `
		INSERT INTO reward_redemptions
		  (id, user_id, reward_id, points_spent, status, redemption_code, notes, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING claimed_at`,
		red.ID, red.UserID, red.RewardID, red.PointsSpent,
		string(red.Status), red.RedemptionCode, red.Notes, red.CompletedAt,
	)
	if err := row.Scan(&red.ClaimedAt); err != nil {
		return fmt.Errorf("insert reward redemption: %w", err)
	}
	return nil
}

func (r *rewardRepo) FindRedemptionByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.RewardRedemption, error) {
	row := db.QueryRow(ctx,
		`SELECT `+redemptionColumns+` FROM reward_redemptions WHERE id = $1`, id)
	return scanRewardRedemption(row)
}

func (r *rewardRepo) ListRedemptions(ctx context.Context, db DBTX, userID *uuid.UUID, limit int) ([]domain.RewardRedemption, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows pgx.Rows
	var err error
	if userID != nil {
		rows, err = db.Query(ctx, `
			SELECT `+redemptionColumns+`
			FROM reward_redemptions
			WHERE user_id = $1
			ORDER BY claimed_at DESC
			LIMIT $2`, *userID, limit)
	} else {
		rows, err = db.Query(ctx, `
			SELECT `+redemptionColumns+`
			FROM reward_redemptions
			ORDER BY claimed_at DESC
			LIMIT $1`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query reward redemptions: %w", err)
	}
	defer rows.Close()

	var reds []domain.RewardRedemption
	for rows.Next() {
		var red domain.RewardRedemption
		err := rows.Scan(&red.ID, &red.UserID, &red.RewardID, &red.PointsSpent,
			&red.Status, &red.RedemptionCode, &red.Notes, &red.ClaimedAt, &red.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("scan reward redemption row: %w", err)
		}
		reds = append(reds, red)
	}
	return reds, rows.Err()
}

func (r *rewardRepo) UpdateRedemptionStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.RedemptionStatus, notes *string, completedAt *time.Time) error {
	tag, err := db.Exec(ctx, `
		UPDATE reward_redemptions
		SET status = $2, notes = COALESCE($3, notes), completed_at = $4
		WHERE id = $1`,
		id, string(status), notes, completedAt)
	if err != nil {
		return fmt.Errorf("update redemption status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("reward redemption", id.String())
	}
	return nil
}

func scanReward(row pgx.Row) (*domain.Reward, error) {
	var rw domain.Reward
	err := row.Scan(&rw.ID, &rw.Title, &rw.Description, &rw.ImageURL,
		&rw.PointsRequired, &rw.Stock, &rw.IsActive, &rw.Category, &rw.Emoji,
		&rw.CreatedAt, &rw.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan reward: %w", err)
	}
	return &rw, nil
}

func scanRewardRedemption(row pgx.Row) (*domain.RewardRedemption, error) {
	var red domain.RewardRedemption
	err := row.Scan(&red.ID, &red.UserID, &red.RewardID, &red.PointsSpent,
		&red.Status, &red.RedemptionCode, &red.Notes, &red.ClaimedAt, &red.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan reward redemption: %w", err)
	}
	return &red, nil
}
