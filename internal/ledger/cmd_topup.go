package ledger

import (
	"context"
	"fmt"

	"github.com/arcadia/loyalty/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ExecuteTopUp credits a user with coins and cash-derived points.
// Pattern: Validate → Lock → PostLedgerEntry.
//
// Points are derived from the cash amount by the fixed exchange rule
// (amountPaid / 50, floored); the admin never supplies a points figure
// directly. The audit-trail AdminAction row is the caller's concern, written
// after this transaction commits.
func (e *Engine) ExecuteTopUp(ctx context.Context, tx pgx.Tx, params domain.TopUpParams) (*domain.TopUpResult, error) {
	if err := domain.ValidateTopUp(params.Coins, params.AmountPaid); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	if _, err := e.LockUserForUpdate(ctx, tx, params.UserID); err != nil {
		return nil, fmt.Errorf("top-up: %w", err)
	}

	points := domain.ComputeTopUpPoints(params.AmountPaid)

	description := params.Reason
	if description == "" {
		description = "manual top-up"
	}

	meta := mergeMeta(nil, map[string]interface{}{
		"admin_id":    params.AdminID.String(),
		"amount_paid": params.AmountPaid,
	})

	entry, updatedUser, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:        params.UserID,
		Type:          domain.TxPurchase,
		Amount:        int64Ptr(params.AmountPaid),
		BalanceUpdate: domain.BalanceUpdate{Coins: params.Coins, Points: points},
		Description:   description,
		Status:        domain.TxStatusCompleted,
		Metadata:      meta,
	})
	if err != nil {
		return nil, fmt.Errorf("top-up post: %w", err)
	}

	return &domain.TopUpResult{
		ComputedPoints: points,
		Transaction:    entry,
		User:           updatedUser,
	}, nil
}
