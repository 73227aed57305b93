package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arcadia/loyalty/internal/domain"
)

type adminActionRepo struct{}

// NewAdminActionRepository returns a pgx-backed AdminActionRepository.
func NewAdminActionRepository() AdminActionRepository {
	return &adminActionRepo{}
}

func (r *adminActionRepo) Insert(ctx context.Context, db DBTX, action *domain.AdminAction) error {
	meta := action.Metadata
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}

	row := db.QueryRow(ctx, `
		INSERT INTO admin_actions (id, admin_id, target_user_id, action, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		action.ID, action.AdminID, action.TargetUserID,
		action.Action, action.Description, meta,
	)
	if err := row.Scan(&action.CreatedAt); err != nil {
		return fmt.Errorf("insert admin action: %w", err)
	}
	return nil
}

func (r *adminActionRepo) List(ctx context.Context, db DBTX, limit int) ([]domain.AdminAction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := db.Query(ctx, `
		SELECT id, admin_id, target_user_id, action, description, metadata, created_at
		FROM admin_actions
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query admin actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.AdminAction
	for rows.Next() {
		var a domain.AdminAction
		err := rows.Scan(&a.ID, &a.AdminID, &a.TargetUserID,
			&a.Action, &a.Description, &a.Metadata, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan admin action row: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
