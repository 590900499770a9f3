package app

import (
	"context"
	"sync"
	"time"

	"github.com/fastorder/server/internal/domain/order"
	"go.uber.org/zap"
)

type expiryMetrics interface {
	RecordOrdersExpired(n int)
}

// expirySweeper periodically cancels orders stuck awaiting payment.
type expirySweeper struct {
	orders   order.OrderDomain
	interval time.Duration
	metrics  expiryMetrics
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newExpirySweeper(orders order.OrderDomain, interval time.Duration, metrics expiryMetrics, logger *zap.Logger) *expirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &expirySweeper{
		orders:   orders,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
	}
}

// Start runs the sweep loop until Stop is called or ctx is done.
func (s *expirySweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()

	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))
}

// Stop stops the loop and waits for an in-flight sweep.
func (s *expirySweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Info("expiry sweeper stopped")
}

func (s *expirySweeper) sweep(ctx context.Context) {
	n, err := s.orders.ExpireAwaitingPayment(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired orders awaiting payment", zap.Int("count", n))
		if s.metrics != nil {
			s.metrics.RecordOrdersExpired(n)
		}
	}
}
