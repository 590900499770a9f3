package acquirer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fastorder/server/internal/domain/payment"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerConfig contains circuit breaker configuration.
type BreakerConfig struct {
	FailureThreshold uint32
	Interval         time.Duration
	Timeout          time.Duration
	MaxHalfOpen      uint32
}

// DefaultBreakerConfig returns the default circuit breaker configuration.
func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		FailureThreshold: 5,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		MaxHalfOpen:      1,
	}
}

// breakerGateway guards another gateway with a circuit breaker.
type breakerGateway struct {
	next    outbound.PaymentGatewayPort
	breaker *gobreaker.CircuitBreaker[any]
	metrics outbound.GatewayMetricsPort
	logger  *zap.Logger
}

// NewBreakerGateway wraps next so repeated failures fail fast as unavailable.
func NewBreakerGateway(next outbound.PaymentGatewayPort, config *BreakerConfig, metrics outbound.GatewayMetricsPort, logger *zap.Logger) outbound.PaymentGatewayPort {
	if config == nil {
		config = DefaultBreakerConfig()
	}
	g := &breakerGateway{next: next, metrics: metrics, logger: logger}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: config.MaxHalfOpen,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		// Caller mistakes must not trip the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, payment.ErrUnknownPaymentCode) || errors.Is(err, payment.ErrMalformedCode)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("payment gateway breaker state changed",
				zap.String("gateway", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if metrics != nil {
				metrics.SetGatewayBreakerState(name, int(to))
			}
		},
	}
	g.breaker = gobreaker.NewCircuitBreaker[any](settings)
	return g
}

func (g *breakerGateway) Name() string {
	return g.next.Name()
}

func (g *breakerGateway) InitiatePayment(ctx context.Context, order *model.Order, amount int64, method model.PaymentMethod) (*model.ProviderPayment, error) {
	result, err := g.execute("initiate", func() (any, error) {
		return g.next.InitiatePayment(ctx, order, amount, method)
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.ProviderPayment), nil
}

func (g *breakerGateway) ResolveProviderReference(ctx context.Context, reference string, method model.PaymentMethod) (int64, error) {
	result, err := g.execute("resolve", func() (any, error) {
		return g.next.ResolveProviderReference(ctx, reference, method)
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// State returns the current breaker state.
func (g *breakerGateway) State() gobreaker.State {
	return g.breaker.State()
}

func (g *breakerGateway) execute(operation string, fn func() (any, error)) (any, error) {
	start := time.Now()
	result, err := g.breaker.Execute(fn)
	if g.metrics != nil {
		g.metrics.RecordGatewayCall(g.next.Name(), operation, callResult(err), time.Since(start))
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s circuit %v", payment.ErrPaymentProviderUnavailable, g.next.Name(), err)
	}
	return result, err
}

func callResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "error"
	}
}

// Compile-time check
var _ outbound.PaymentGatewayPort = (*breakerGateway)(nil)
