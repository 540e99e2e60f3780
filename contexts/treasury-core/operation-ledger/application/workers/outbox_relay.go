package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	application "seneschal/contexts/treasury-core/operation-ledger/application"
	"seneschal/contexts/treasury-core/operation-ledger/ports"
	"seneschal/internal/shared/events"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, envelope events.Envelope) error
}

const operationsTopic = "treasury.operations"

// OutboxRelay drains pending outbox rows and publishes them on the bus.
// Rows that fail to publish stay pending and are retried on the next cycle.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher Publisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	messages, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox relay list failed",
			"event", "outbox_relay_list_failed",
			"module", "treasury-core/operation-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	for _, message := range messages {
		var envelope events.Envelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Warn("outbox relay payload decode failed",
				"event", "outbox_relay_decode_failed",
				"module", "treasury-core/operation-ledger",
				"layer", "worker",
				"outbox_id", message.ID,
				"error", err.Error(),
			)
			continue
		}
		if err := r.Publisher.Publish(ctx, operationsTopic, envelope); err != nil {
			logger.Warn("outbox relay publish failed",
				"event", "outbox_relay_publish_failed",
				"module", "treasury-core/operation-ledger",
				"layer", "worker",
				"outbox_id", message.ID,
				"error", err.Error(),
			)
			continue
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, message.ID, r.Clock.Now()); err != nil {
			logger.Warn("outbox relay mark published failed",
				"event", "outbox_relay_mark_published_failed",
				"module", "treasury-core/operation-ledger",
				"layer", "worker",
				"outbox_id", message.ID,
				"error", err.Error(),
			)
		}
	}
	return nil
}
