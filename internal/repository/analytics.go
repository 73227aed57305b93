package repository

import (
	"context"
	"fmt"

	"github.com/arcadia/loyalty/internal/domain"
)

type analyticsRepo struct{}

// NewAnalyticsRepository returns a pgx-backed AnalyticsRepository. Both queries
// are pure reads over committed ledger state; nothing is cached.
func NewAnalyticsRepository() AnalyticsRepository {
	return &analyticsRepo{}
}

func (r *analyticsRepo) GetSalesAnalytics(ctx context.Context, db DBTX) (*domain.SalesAnalytics, error) {
	var s domain.SalesAnalytics
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0),
		       COUNT(*),
		       COALESCE(AVG(amount), 0)
		FROM transactions
		WHERE type = 'purchase' AND amount IS NOT NULL`).
		Scan(&s.TotalRevenue, &s.TransactionCount, &s.MeanAmount)
	if err != nil {
		return nil, fmt.Errorf("query sales analytics: %w", err)
	}
	return &s, nil
}

func (r *analyticsRepo) GetUserAnalytics(ctx context.Context, db DBTX) (*domain.UserAnalytics, error) {
	var u domain.UserAnalytics
	err := db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE coin_balance >= 1)
		FROM users`).
		Scan(&u.TotalUsers, &u.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("query user analytics: %w", err)
	}
	return &u, nil
}
