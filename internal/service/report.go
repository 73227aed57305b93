package service

import (
	"context"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportService serves the admin analytics and audit surface.
type ReportService struct {
	pool         *pgxpool.Pool
	analytics    repository.AnalyticsRepository
	transactions repository.TransactionRepository
	actions      repository.AdminActionRepository
}

// NewReportService creates a new ReportService.
func NewReportService(pool *pgxpool.Pool, analytics repository.AnalyticsRepository, transactions repository.TransactionRepository, actions repository.AdminActionRepository) *ReportService {
	return &ReportService{pool: pool, analytics: analytics, transactions: transactions, actions: actions}
}

// AnalyticsReport bundles the sales and user aggregates into one response.
type AnalyticsReport struct {
	Sales *domain.SalesAnalytics `json:"sales"`
	Users *domain.UserAnalytics  `json:"users"`
}

// Analytics computes revenue and user-base aggregates from the ledger.
func (s *ReportService) Analytics(ctx context.Context) (*AnalyticsReport, error) {
	sales, err := s.analytics.GetSalesAnalytics(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("sales analytics", err)
	}
	users, err := s.analytics.GetUserAnalytics(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("user analytics", err)
	}
	return &AnalyticsReport{Sales: sales, Users: users}, nil
}

// Transactions returns ledger entries matching the admin filter.
func (s *ReportService) Transactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if filter.Type != nil {
		if err := domain.ValidateTransactionType(*filter.Type); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
	}

	txs, err := s.transactions.List(ctx, s.pool, filter)
	if err != nil {
		return nil, domain.ErrInternal("list transactions", err)
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, nil
}

// AdminActions returns the audit trail, newest first.
func (s *ReportService) AdminActions(ctx context.Context, limit int) ([]domain.AdminAction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	actions, err := s.actions.List(ctx, s.pool, limit)
	if err != nil {
		return nil, domain.ErrInternal("list admin actions", err)
	}
	if actions == nil {
		actions = []domain.AdminAction{}
	}
	return actions, nil
}
