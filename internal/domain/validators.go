package domain

import (
	"fmt"
	"regexp"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePositiveAmount checks that an amount is strictly positive.
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidatePromotionType checks that a promotion type has grant semantics.
// Types without a grant rule are refused at creation time instead of being
// stored and redeeming as a silent no-op.
func ValidatePromotionType(t PromotionType) error {
	switch t {
	case PromoBonusPoints, PromoExtraCoins:
		return nil
	case PromoDiscount, PromoFreeCredits:
		return fmt.Errorf("promotion type %q has no grant semantics", t)
	default:
		return fmt.Errorf("unknown promotion type %q", t)
	}
}

// ValidatePromotionWindow checks the eligibility window is coherent.
func ValidatePromotionWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if end.Before(start) {
		return fmt.Errorf("end date precedes start date")
	}
	return nil
}

// ValidateRedemptionStatus checks a status string is a known fulfillment state.
func ValidateRedemptionStatus(s RedemptionStatus) error {
	switch s {
	case RedemptionPending, RedemptionCompleted, RedemptionCancelled:
		return nil
	default:
		return fmt.Errorf("unknown redemption status %q", s)
	}
}

// ValidateTransactionType checks a ledger entry type string.
func ValidateTransactionType(t TransactionType) error {
	switch t {
	case TxPurchase, TxPromotion, TxAdminTopup, TxRewardRedemption:
		return nil
	default:
		return fmt.Errorf("unknown transaction type %q", t)
	}
}

// ValidateTopUp checks the top-up input rule: at least one of coins or cash
// amount must be positive, and neither may be negative.
func ValidateTopUp(coins, amountPaid int64) error {
	if coins < 0 {
		return fmt.Errorf("coins must not be negative, got %d", coins)
	}
	if amountPaid < 0 {
		return fmt.Errorf("amount paid must not be negative, got %d", amountPaid)
	}
	if coins == 0 && amountPaid == 0 {
		return fmt.Errorf("at least one of coins or amount paid must be positive")
	}
	return nil
}
