package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const promoColumns = `id, title, description, type, value, is_active, start_date, end_date,
	max_redemptions, current_redemptions, emoji, created_at`

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

type promotionRepo struct{}

// NewPromotionRepository returns a pgx-backed PromotionRepository.
func NewPromotionRepository() PromotionRepository {
	return &promotionRepo{}
}

func (r *promotionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Promotion, error) {
	row := db.QueryRow(ctx,
		`SELECT `+promoColumns+` FROM promotions WHERE id = $1`, id)
	return scanPromotion(row)
}

func (r *promotionRepo) ListActive(ctx context.Context, db DBTX, now time.Time) ([]domain.Promotion, error) {
	rows, err := db.Query(ctx, `
		SELECT `+promoColumns+`
		FROM promotions
		WHERE is_active = true AND start_date <= $1 AND end_date >= $1
		ORDER BY created_at DESC`, now)
	if err != nil {
		return nil, fmt.Errorf("query active promotions: %w", err)
	}
	defer rows.Close()

	return collectPromotions(rows)
}

func (r *promotionRepo) ListAll(ctx context.Context, db DBTX) ([]domain.Promotion, error) {
	rows, err := db.Query(ctx,
		`SELECT `+promoColumns+` FROM promotions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	return collectPromotions(rows)
}

func (r *promotionRepo) Create(ctx context.Context, db DBTX, p *domain.Promotion) error {
	row := db.QueryRow(ctx, `
		INSERT INTO promotions
		  (id, title, description, type, value, is_active, start_date, end_date, max_redemptions, emoji)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		p.ID, p.Title, p.Description, string(p.Type), p.Value,
		p.IsActive, p.StartDate, p.EndDate, p.MaxRedemptions, p.Emoji,
	)
	if err := row.Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}
	return nil
}

func (r *promotionRepo) Update(ctx context.Context, db DBTX, p *domain.Promotion) error {
	tag, err := db.Exec(ctx, `
		UPDATE promotions
		SET title = $2, description = $3, type = $4, value = $5, is_active = $6,
		    start_date = $7, end_date = $8, max_redemptions = $9, emoji = $10
		WHERE id = $1`,
		p.ID, p.Title, p.Description, string(p.Type), p.Value,
		p.IsActive, p.StartDate, p.EndDate, p.MaxRedemptions, p.Emoji,
	)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("promotion", p.ID.String())
	}
	return nil
}

func (r *promotionRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("promotion", id.String())
	}
	return nil
}

// IncrementRedemptions performs the cap check and the counter bump in one
// statement so two concurrent redemptions cannot both take the last slot.
func (r *promotionRepo) IncrementRedemptions(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE promotions
		SET current_redemptions = current_redemptions + 1
		WHERE id = $1
		  AND (max_redemptions IS NULL OR current_redemptions < max_redemptions)`, id)
	if err != nil {
		return false, fmt.Errorf("increment redemptions: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *promotionRepo) InsertRedemption(ctx context.Context, tx pgx.Tx, red *domain.PromotionRedemption) error {
	row := tx.QueryRow(ctx, `
		INSERT INTO promotion_redemptions (id, user_id, promotion_id, points_earned, coins_earned)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING redeemed_at`,
		red.ID, red.UserID, red.PromotionID, red.PointsEarned, red.CoinsEarned,
	)
	if err := row.Scan(&red.RedeemedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrAlreadyRedeemed(red.PromotionID.String())
		}
		return fmt.Errorf("insert promotion redemption: %w", err)
	}
	return nil
}

func (r *promotionRepo) ListRedemptionsByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.PromotionRedemption, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, promotion_id, points_earned, coins_earned, redeemed_at
		FROM promotion_redemptions
		WHERE user_id = $1
		ORDER BY redeemed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query promotion redemptions: %w", err)
	}
	defer rows.Close()

	var reds []domain.PromotionRedemption
	for rows.Next() {
		var red domain.PromotionRedemption
		if err := rows.Scan(&red.ID, &red.UserID, &red.PromotionID,
			&red.PointsEarned, &red.CoinsEarned, &red.RedeemedAt); err != nil {
			return nil, fmt.Errorf("scan promotion redemption: %w", err)
		}
		reds = append(reds, red)
	}
	return reds, rows.Err()
}

func scanPromotion(row pgx.Row) (*domain.Promotion, error) {
	var p domain.Promotion
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Type, &p.Value,
		&p.IsActive, &p.StartDate, &p.EndDate,
		&p.MaxRedemptions, &p.CurrentRedemptions, &p.Emoji, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan promotion: %w", err)
	}
	return &p, nil
}

func collectPromotions(rows pgx.Rows) ([]domain.Promotion, error) {
	var promos []domain.Promotion
	for rows.Next() {
		var p domain.Promotion
		err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Type, &p.Value,
			&p.IsActive, &p.StartDate, &p.EndDate,
			&p.MaxRedemptions, &p.CurrentRedemptions, &p.Emoji, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan promotion row: %w", err)
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}
