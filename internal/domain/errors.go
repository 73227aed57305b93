package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}

func ErrAccountLocked(msg string) *AppError {
	return &AppError{Code: "ACCOUNT_LOCKED", Message: msg, Status: 429}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Status: 429}
}

func ErrDuplicateRequest(msg string) *AppError {
	return &AppError{Code: "DUPLICATE_REQUEST", Message: msg, Status: 409}
}

// Loyalty-specific error constructors.

func ErrInsufficientPoints(required, have int64) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_POINTS",
		Message: fmt.Sprintf("reward requires %d points, balance is %d", required, have),
		Status:  400,
	}
}

func ErrOutOfStock(rewardID string) *AppError {
	return &AppError{Code: "OUT_OF_STOCK", Message: fmt.Sprintf("reward %s is out of stock", rewardID), Status: 409}
}

func ErrAlreadyRedeemed(promotionID string) *AppError {
	return &AppError{Code: "ALREADY_REDEEMED", Message: fmt.Sprintf("promotion %s already redeemed", promotionID), Status: 409}
}

func ErrPromotionNotActive(promotionID string) *AppError {
	return &AppError{Code: "PROMOTION_NOT_ACTIVE", Message: fmt.Sprintf("promotion %s is not active", promotionID), Status: 404}
}

func ErrPromotionExhausted(promotionID string) *AppError {
	return &AppError{Code: "PROMOTION_EXHAUSTED", Message: fmt.Sprintf("promotion %s has reached its redemption cap", promotionID), Status: 409}
}
