package outbound

import (
	"context"

	"github.com/fastorder/server/internal/model"
)

// EventPublisherPort defines event publishing operations.
type EventPublisherPort interface {
	// Publish publishes an order status change.
	Publish(ctx context.Context, event *model.OrderStatusChangedEvent) error

	// Close flushes pending messages.
	Close() error
}
