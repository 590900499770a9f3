package order

import (
	"context"
	"time"

	"github.com/fastorder/server/internal/model"
	"go.uber.org/zap"
)

// ExpireAwaitingPayment cancels orders whose latest payment attempt is older
// than the configured TTL. It returns the number of cancelled orders.
func (d *orderDomain) ExpireAwaitingPayment(ctx context.Context) (int, error) {
	if d.cfg.AwaitingPaymentTTL <= 0 {
		return 0, nil
	}

	orders, err := d.orderDB.ListByStatus(ctx, []model.OrderStatus{model.OrderStatusAwaitingPayment})
	if err != nil {
		return 0, err
	}

	cutoff := d.now().Add(-d.cfg.AwaitingPaymentTTL)
	expired := 0
	for _, candidate := range orders {
		if !isStale(candidate, cutoff) {
			continue
		}

		cancelled := false
		_, err := d.mutate(ctx, candidate.Code, func(o *model.Order) error {
			// Settled or superseded since the listing.
			if o.Status != model.OrderStatusAwaitingPayment || !isStale(o, cutoff) {
				return errUnchanged
			}
			cancelled = true
			return d.transition(o, model.OrderStatusCancelled)
		})
		if err != nil {
			d.logger.Error("failed to expire order", zap.Error(err), zap.Int64("order_code", candidate.Code))
			continue
		}
		if cancelled {
			expired++
			d.logger.Info("order expired", zap.Int64("order_code", candidate.Code))
		}
	}

	return expired, nil
}

// isStale reports whether the order's active payment attempt started before cutoff.
func isStale(o *model.Order, cutoff time.Time) bool {
	started := o.UpdatedAt
	if p := o.ActivePayment(); p != nil {
		started = p.CreatedAt
	}
	return started.Before(cutoff)
}
