package outbound

import (
	"context"

	"github.com/fastorder/server/internal/model"
)

// OrderDatabasePort defines the interface for order aggregate persistence.
// Lookups return nil, nil when the order does not exist.
type OrderDatabasePort interface {
	// Create persists a new order and assigns its code.
	Create(ctx context.Context, order *model.Order) error

	// GetByCode loads the full aggregate (items, combos, payments).
	GetByCode(ctx context.Context, code int64) (*model.Order, error)

	// List returns orders matching the filter, newest first.
	List(ctx context.Context, filter *model.OrderFilter, page, pageSize int) ([]*model.Order, int64, error)

	// ListByStatus returns orders in any of the given statuses, oldest first.
	ListByStatus(ctx context.Context, statuses []model.OrderStatus) ([]*model.Order, error)

	// Save writes the whole aggregate atomically.
	Save(ctx context.Context, order *model.Order) error

	PaymentRecordReaderPort
}

// PaymentRecordReaderPort gives read-only access to payment records.
type PaymentRecordReaderPort interface {
	// GetPaymentByCode returns the record carrying the code, or nil, nil.
	GetPaymentByCode(ctx context.Context, code string) (*model.PaymentRecord, error)
}

// OrderLockerPort serializes mutations of a single order.
type OrderLockerPort interface {
	// Lock blocks until the order lock is held or ctx is done.
	// The returned function releases the lock.
	Lock(ctx context.Context, orderCode int64) (unlock func(), err error)
}

// OrderMetricsPort receives lifecycle observations.
type OrderMetricsPort interface {
	RecordOrderTransition(from, to string)
	RecordSettlement(method, result string)
}
