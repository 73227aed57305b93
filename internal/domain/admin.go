package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TopUpPointsDivisor is the fixed cash-to-points exchange rule: one loyalty
// point per 50 currency units of cash paid, floored.
const TopUpPointsDivisor = 50

// ComputeTopUpPoints derives the loyalty points granted for a cash amount.
func ComputeTopUpPoints(amountPaid int64) int64 {
	if amountPaid <= 0 {
		return 0
	}
	return amountPaid / TopUpPointsDivisor
}

// TopUpParams is the input to ExecuteTopUp.
type TopUpParams struct {
	AdminID    uuid.UUID
	UserID     uuid.UUID
	Coins      int64
	AmountPaid int64
	Reason     string
}

// TopUpResult is returned on a successful manual top-up.
type TopUpResult struct {
	ComputedPoints int64        `json:"computed_points"`
	Transaction    *Transaction `json:"transaction"`
	User           *User        `json:"user"`
}

// AdminAction represents an admin_actions row: the append-only audit trail of
// administrator-initiated operations. Never read by business logic.
type AdminAction struct {
	ID           uuid.UUID       `json:"id"`
	AdminID      uuid.UUID       `json:"admin_id"`
	TargetUserID *uuid.UUID      `json:"target_user_id,omitempty"`
	Action       string          `json:"action"`
	Description  string          `json:"description"`
	Metadata     json.RawMessage `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SalesAnalytics aggregates purchase-type ledger entries.
type SalesAnalytics struct {
	TotalRevenue     int64   `json:"total_revenue"`
	TransactionCount int     `json:"transaction_count"`
	MeanAmount       float64 `json:"mean_amount"`
}

// UserAnalytics partitions the user base by coin holdings.
type UserAnalytics struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
}
