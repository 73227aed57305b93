package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the two kinds of authenticated principals.
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// Balances holds the two play currencies tracked per user.
type Balances struct {
	CoinBalance  int64 `json:"coin_balance"`
	PointBalance int64 `json:"point_balance"`
}

// User represents a users row. Balance columns are only ever written through
// ledger.Engine.PostLedgerEntry.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	// PasswordHash never serializes.
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	Balances
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal is the authenticated capability passed into core operations.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
