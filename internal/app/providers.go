package app

import (
	"context"
	"fmt"

	"github.com/fastorder/server/internal/adapter/outbound/acquirer"
	"github.com/fastorder/server/internal/adapter/outbound/kafka"
	"github.com/fastorder/server/internal/adapter/outbound/memory"
	"github.com/fastorder/server/internal/adapter/outbound/postgres"
	redisadapter "github.com/fastorder/server/internal/adapter/outbound/redis"
	s3adapter "github.com/fastorder/server/internal/adapter/outbound/s3"
	"github.com/fastorder/server/internal/domain/order"
	"github.com/fastorder/server/internal/domain/payment"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/fastorder/server/internal/shared/cache"
	"github.com/fastorder/server/internal/shared/config"
	"github.com/fastorder/server/internal/shared/database"
	"github.com/fastorder/server/internal/shared/logger"
	"github.com/fastorder/server/internal/utils/metrics"
	"github.com/fastorder/server/internal/utils/middleware"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideMetricsRegistry,
	ProvideMetrics,
	ProvideRateLimiter,
	ProvideJWTValidator,
)

// ProvideLogger creates the process logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideDatabase creates a database connection, or nil when no database is configured.
func ProvideDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	if !cfg.Database.Enabled() {
		return nil, func() {}, nil
	}
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = database.Close(db) }, nil
}

// ProvideRedisClient creates a Redis client, or nil when Redis is not configured.
func ProvideRedisClient(cfg *config.Config) (goredis.UniversalClient, func(), error) {
	if cfg.Redis.Address == "" {
		return nil, func() {}, nil
	}
	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = cache.Close(client) }, nil
}

// ProvideMetricsRegistry creates the registry served on /metrics.
func ProvideMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) *metrics.Metrics {
	return metrics.NewWithRegistry(cfg.Metrics.Namespace, reg)
}

// ProvideRateLimiter creates a rate limiter, or nil without Redis.
func ProvideRateLimiter(redis goredis.UniversalClient) outbound.RateLimiterPort {
	if redis == nil {
		return nil
	}
	return redisadapter.NewRateLimiter(redis)
}

// ProvideJWTValidator creates the bearer token validator, or nil when auth is disabled.
func ProvideJWTValidator(cfg *config.Config) (middleware.JWTValidator, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, nil
	}
	return middleware.NewHMACValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
}

// ===== Order Storage Providers =====

// StorageSet provides order persistence and locking.
var StorageSet = wire.NewSet(
	ProvideOrderStore,
	ProvidePaymentRecordReader,
	ProvideOrderLocker,
)

// ProvideOrderStore selects Postgres when configured, otherwise the in-memory store.
func ProvideOrderStore(db *gorm.DB) outbound.OrderDatabasePort {
	if db == nil {
		return memory.NewOrderStore()
	}
	return postgres.NewOrderAdapter(db)
}

// ProvidePaymentRecordReader exposes the store's payment record lookup.
func ProvidePaymentRecordReader(store outbound.OrderDatabasePort) outbound.PaymentRecordReaderPort {
	return store
}

// ProvideOrderLocker selects the Redis lock when Redis is available, otherwise a process-local lock.
func ProvideOrderLocker(cfg *config.Config, redis goredis.UniversalClient, zapLog *zap.Logger) outbound.OrderLockerPort {
	if redis == nil {
		return memory.NewLocker()
	}
	return redisadapter.NewOrderLocker(redis, &redisadapter.OrderLockConfig{
		TTL:           cfg.Redis.LockTTL,
		RetryInterval: cfg.Redis.LockRetry,
	}, zapLog)
}

// ===== Payment Providers =====

// PaymentSet provides payment domain dependencies.
var PaymentSet = wire.NewSet(
	ProvidePaymentCodec,
	ProvidePaymentGateway,
	ProvidePaymentDomain,
)

// ProvidePaymentCodec creates the self-contained payment code codec.
func ProvidePaymentCodec(cfg *config.Config) (*payment.Codec, error) {
	return payment.NewCodec(cfg.Payment.CodeSecret)
}

// ProvidePaymentGateway routes credit card to Stripe when a key is configured
// and everything else to the simulated acquirer. Each route is guarded by a
// circuit breaker.
func ProvidePaymentGateway(cfg *config.Config, m *metrics.Metrics, zapLog *zap.Logger) outbound.PaymentGatewayPort {
	breakerCfg := &acquirer.BreakerConfig{
		FailureThreshold: cfg.Payment.Breaker.FailureThreshold,
		Interval:         cfg.Payment.Breaker.Interval,
		Timeout:          cfg.Payment.Breaker.Timeout,
		MaxHalfOpen:      cfg.Payment.Breaker.MaxHalfOpen,
	}

	simulated := acquirer.NewBreakerGateway(acquirer.NewSimulatedGateway(), breakerCfg, m, zapLog)
	card := simulated
	if cfg.Payment.Stripe.SecretKey != "" {
		stripeCfg := &acquirer.StripeConfig{APIKey: cfg.Payment.Stripe.SecretKey}
		if cfg.Payment.Stripe.APIBase != "" {
			stripeCfg.Backend = stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
				URL: stripe.String(cfg.Payment.Stripe.APIBase),
			})
		}
		card = acquirer.NewBreakerGateway(acquirer.NewStripeGateway(stripeCfg), breakerCfg, m, zapLog)
	}

	return acquirer.NewRouterGateway(map[model.PaymentMethod]outbound.PaymentGatewayPort{
		model.PaymentMethodCreditCard: card,
		model.PaymentMethodPix:        simulated,
	})
}

// ProvidePaymentDomain creates the payment domain.
func ProvidePaymentDomain(
	cfg *config.Config,
	codec *payment.Codec,
	gateway outbound.PaymentGatewayPort,
	records outbound.PaymentRecordReaderPort,
	zapLog *zap.Logger,
) (payment.PaymentDomain, error) {
	methods := make([]model.PaymentMethod, 0, len(cfg.Payment.SimplifiedMethods))
	for _, raw := range cfg.Payment.SimplifiedMethods {
		m := model.PaymentMethod(raw)
		if !m.IsValid() {
			return nil, fmt.Errorf("%w: %q in payment.simplified_methods", payment.ErrUnsupportedPaymentMethod, raw)
		}
		methods = append(methods, m)
	}
	return payment.NewPaymentDomain(codec, gateway, records, &payment.Config{
		SimplifiedMethods: methods,
		Currency:          cfg.Payment.Currency,
	}, zapLog), nil
}

// ===== Order Providers =====

// OrderSet provides order domain dependencies.
var OrderSet = wire.NewSet(
	ProvideEventPublisher,
	ProvideWebhookArchive,
	ProvideOrderDomain,
)

// ProvideEventPublisher publishes to Kafka when brokers are configured.
func ProvideEventPublisher(cfg *config.Config) (outbound.EventPublisherPort, func()) {
	if len(cfg.Kafka.Brokers) == 0 {
		return kafka.NewNoopPublisher(), func() {}
	}
	pub := kafka.NewEventPublisher(&kafka.PublisherConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		WriteTimeout: cfg.Kafka.WriteTimeout,
	})
	return pub, func() { _ = pub.Close() }
}

// ProvideWebhookArchive archives webhook payloads to S3 when a bucket is configured.
func ProvideWebhookArchive(cfg *config.Config) (outbound.WebhookArchivePort, error) {
	if cfg.Storage.Bucket == "" {
		return nil, nil
	}
	client, err := s3adapter.NewClient(context.Background(), &s3adapter.ClientConfig{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return s3adapter.NewWebhookArchive(client, cfg.Storage.Bucket, cfg.Storage.Prefix), nil
}

// ProvideOrderDomain creates the order domain.
func ProvideOrderDomain(
	cfg *config.Config,
	store outbound.OrderDatabasePort,
	locker outbound.OrderLockerPort,
	payments payment.PaymentDomain,
	events outbound.EventPublisherPort,
	archive outbound.WebhookArchivePort,
	m *metrics.Metrics,
	zapLog *zap.Logger,
) order.OrderDomain {
	return order.NewOrderDomain(store, locker, payments, events, archive, m, &order.Config{
		AwaitingPaymentTTL: cfg.Payment.AwaitingPaymentTTL,
		Currency:           cfg.Payment.Currency,
	}, zapLog)
}

// AppSet is the full provider set.
var AppSet = wire.NewSet(
	InfraSet,
	StorageSet,
	PaymentSet,
	OrderSet,
)
