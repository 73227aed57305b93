package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/arcadia/loyalty/internal/guard"
	"github.com/arcadia/loyalty/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxPoller drains the event_outbox table into Kafka. Ledger writes insert
// outbox rows in the same database transaction as the balance change, so a
// published event always corresponds to a committed ledger entry.
type OutboxPoller struct {
	pool      *pgxpool.Pool
	outbox    repository.OutboxRepository
	producer  *KafkaProducer
	breaker   *guard.CircuitBreaker
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(pool *pgxpool.Pool, outbox repository.OutboxRepository, producer *KafkaProducer, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		pool:      pool,
		outbox:    outbox,
		producer:  producer,
		breaker:   guard.NewCircuitBreaker(5, 30*time.Second),
		logger:    logger,
		interval:  500 * time.Millisecond,
		batchSize: 100,
	}
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return
		case <-ticker.C:
			if err := p.poll(ctx); err != nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

func (p *OutboxPoller) poll(ctx context.Context) error {
	events, err := p.outbox.FetchUnpublished(ctx, p.pool, p.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		topic := "loyalty." + string(e.AggregateType)
		key := []byte(e.PartitionKey)

		// Circuit per topic: events for an unhealthy topic stay unpublished
		// and are retried once the breaker resets.
		if result := p.breaker.Check(ctx, topic); !result.Allowed {
			continue
		}

		msg, _ := json.Marshal(e)
		if err := p.producer.Publish(ctx, topic, key, msg); err != nil {
			p.breaker.RecordFailure(topic)
			p.logger.Error("kafka publish failed", "event_id", e.EventID, "error", err)
			continue
		}
		p.breaker.RecordSuccess(topic)
		published = append(published, e.EventID)
	}

	if err := p.outbox.MarkPublished(ctx, p.pool, published); err != nil {
		return err
	}

	p.logger.Debug("outbox poll complete", "published", len(published))
	return nil
}
