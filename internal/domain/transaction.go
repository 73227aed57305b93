package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates the ledger entry types.
type TransactionType string

const (
	TxPurchase         TransactionType = "purchase"
	TxPromotion        TransactionType = "promotion"
	TxAdminTopup       TransactionType = "admin_topup"
	TxRewardRedemption TransactionType = "reward_redemption"
)

// TransactionStatus enumerates ledger entry statuses.
type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusFailed    TransactionStatus = "failed"
)

// Transaction represents a transactions row (append-only ledger entry).
// Every balance change carries exactly one of these with matching signed deltas.
type Transaction struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	Type              TransactionType   `json:"type"`
	Amount            *int64            `json:"amount,omitempty"`
	CoinsAdded        int64             `json:"coins_added"`
	PointsEarned      int64             `json:"points_earned"`
	CoinBalanceAfter  int64             `json:"coin_balance_after"`
	PointBalanceAfter int64             `json:"point_balance_after"`
	Description       string            `json:"description"`
	Status            TransactionStatus `json:"status"`
	Metadata          json.RawMessage   `json:"metadata"`
	CreatedAt         time.Time         `json:"created_at"`
}

// BalanceUpdate describes the signed deltas to apply to a user's balances.
type BalanceUpdate struct {
	Coins  int64
	Points int64
}

// HasCoinDelta reports whether the coin balance changes.
func (u BalanceUpdate) HasCoinDelta() bool { return u.Coins != 0 }

// HasPointDelta reports whether the point balance changes.
func (u BalanceUpdate) HasPointDelta() bool { return u.Points != 0 }

// PostLedgerEntryParams is the input to the atomic PostLedgerEntry operation.
type PostLedgerEntryParams struct {
	UserID        uuid.UUID
	Type          TransactionType
	Amount        *int64
	BalanceUpdate BalanceUpdate
	Description   string
	Status        TransactionStatus
	Metadata      json.RawMessage
}

// TransactionFilter narrows admin ledger listings.
type TransactionFilter struct {
	UserID *uuid.UUID
	Type   *TransactionType
	Status *TransactionStatus
	From   *time.Time
	To     *time.Time
	Limit  int
}
