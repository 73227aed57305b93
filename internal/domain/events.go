package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventUserCreated        EventType = "loyalty.user.created"
	EventTransactionPosted  EventType = "loyalty.ledger.transaction.posted"
	EventPromotionRedeemed  EventType = "loyalty.promotion.redeemed"
	EventRewardRedeemed     EventType = "loyalty.reward.redeemed"
	EventRedemptionResolved EventType = "loyalty.reward.redemption.resolved"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateUser      AggregateType = "user"
	AggregateLedger    AggregateType = "ledger"
	AggregatePromotion AggregateType = "promotion"
	AggregateReward    AggregateType = "reward"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewTransactionPostedEvent creates the standard ledger event for an entry.
func NewTransactionPostedEvent(tx *Transaction) OutboxDraft {
	payload, _ := json.Marshal(tx)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateLedger,
		AggregateID:   tx.UserID.String(),
		EventType:     EventTransactionPosted,
		PartitionKey:  tx.UserID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewUserCreatedEvent creates a user lifecycle event.
func NewUserCreatedEvent(userID uuid.UUID, email string, role Role) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"user_id": userID.String(),
		"email":   email,
		"role":    string(role),
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateUser,
		AggregateID:   userID.String(),
		EventType:     EventUserCreated,
		PartitionKey:  userID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewPromotionRedeemedEvent creates a promotion redemption event.
func NewPromotionRedeemedEvent(red *PromotionRedemption) OutboxDraft {
	payload, _ := json.Marshal(red)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregatePromotion,
		AggregateID:   red.PromotionID.String(),
		EventType:     EventPromotionRedeemed,
		PartitionKey:  red.UserID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewRedemptionResolvedEvent creates the event for a fulfillment status
// change on an existing reward redemption.
func NewRedemptionResolvedEvent(red *RewardRedemption) OutboxDraft {
	payload, _ := json.Marshal(red)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateReward,
		AggregateID:   red.RewardID.String(),
		EventType:     EventRedemptionResolved,
		PartitionKey:  red.UserID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewRewardRedeemedEvent creates a reward redemption event.
func NewRewardRedeemedEvent(red *RewardRedemption) OutboxDraft {
	payload, _ := json.Marshal(red)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateReward,
		AggregateID:   red.RewardID.String(),
		EventType:     EventRewardRedeemed,
		PartitionKey:  red.UserID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
