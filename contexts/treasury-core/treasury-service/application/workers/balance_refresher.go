package workers

import (
	"context"
	"log/slog"

	application "seneschal/contexts/treasury-core/treasury-service/application"
	"seneschal/internal/shared/events"
)

type Subscriber interface {
	Subscribe(ctx context.Context, topic string, group string, handler func(context.Context, events.Envelope) error) error
}

const operationsTopic = "treasury.operations"

// BalanceRefresher re-reads treasury balances whenever an operation
// completes, keeping the cache roughly current without putting a remote
// read on the request path.
type BalanceRefresher struct {
	Subscriber    Subscriber
	Service       application.Service
	ConsumerGroup string
	Logger        *slog.Logger
}

func (r BalanceRefresher) Start(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	group := r.ConsumerGroup
	if group == "" {
		group = "treasury-balance-refresher"
	}
	return r.Subscriber.Subscribe(ctx, operationsTopic, group, func(ctx context.Context, envelope events.Envelope) error {
		if envelope.EventType != events.TypeOperationCompleted {
			return nil
		}
		if _, err := r.Service.RefreshBalances(ctx); err != nil {
			logger.Warn("balance refresh after operation failed",
				"event", "balance_refresh_after_operation_failed",
				"module", "treasury-core/treasury-service",
				"layer", "worker",
				"entity_id", envelope.EntityID,
				"error", err.Error(),
			)
			// Cache staleness is tolerable; do not poison the subscription.
			return nil
		}
		return nil
	})
}
