//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Domains
	"github.com/fastorder/server/internal/domain/order"
	"github.com/fastorder/server/internal/domain/payment"

	// Ports
	"github.com/fastorder/server/internal/port/outbound"

	// Infrastructure
	"github.com/fastorder/server/internal/shared/config"

	// Utils
	"github.com/fastorder/server/internal/utils/metrics"
	"github.com/fastorder/server/internal/utils/middleware"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       goredis.UniversalClient
	RateLimiter outbound.RateLimiterPort
	Validator   middleware.JWTValidator
	Logger      *zap.Logger
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics

	// Storage
	OrderStore  outbound.OrderDatabasePort
	OrderLocker outbound.OrderLockerPort

	// Payment
	PaymentGateway outbound.PaymentGatewayPort
	EventPublisher outbound.EventPublisherPort
	WebhookArchive outbound.WebhookArchivePort

	// Domains
	OrderDomain   order.OrderDomain
	PaymentDomain payment.PaymentDomain
}

// InitializeDependencies creates all dependencies using Wire.
func InitializeDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	wire.Build(
		AppSet,
		wire.Struct(new(Dependencies), "*"),
	)
	return nil, nil, nil
}
