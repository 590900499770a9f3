package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "github.com/fastorder/server/cmd/server/docs" // swagger docs
	ginadapter "github.com/fastorder/server/internal/adapter/inbound/gin"
	"github.com/fastorder/server/internal/adapter/outbound/acquirer"
	"github.com/fastorder/server/internal/domain/order"
	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/fastorder/server/internal/shared/config"
	"github.com/fastorder/server/internal/shared/database"
	"github.com/fastorder/server/internal/utils/metrics"
	"github.com/fastorder/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App represents the application.
type App struct {
	config *config.Config
	logger *zap.Logger
	router *gin.Engine

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	db          *gorm.DB
	redis       goredis.UniversalClient
	rateLimiter outbound.RateLimiterPort
	validator   middleware.JWTValidator

	orderDomain order.OrderDomain
	sweeper     *expirySweeper

	cleanupFuncs []func()
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	app := &App{config: cfg}
	if err := app.init(); err != nil {
		app.cleanup()
		return nil, err
	}
	app.router = app.setupRouter()
	app.registerRoutes()
	return app, nil
}

func (a *App) init() error {
	cfg := a.config

	zapLog, err := ProvideLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = zapLog

	db, closeDB, err := ProvideDatabase(cfg, zapLog)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	a.addCleanup(closeDB)
	a.db = db

	redis, closeRedis, err := ProvideRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	a.addCleanup(closeRedis)
	a.redis = redis

	a.registry = ProvideMetricsRegistry()
	a.metrics = ProvideMetrics(cfg, a.registry)
	a.rateLimiter = ProvideRateLimiter(redis)

	validator, err := ProvideJWTValidator(cfg)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}
	a.validator = validator

	store := ProvideOrderStore(db)
	locker := ProvideOrderLocker(cfg, redis, zapLog)

	codec, err := ProvidePaymentCodec(cfg)
	if err != nil {
		return fmt.Errorf("init payment codec: %w", err)
	}
	gateway := ProvidePaymentGateway(cfg, a.metrics, zapLog)
	payments, err := ProvidePaymentDomain(cfg, codec, gateway, ProvidePaymentRecordReader(store), zapLog)
	if err != nil {
		return fmt.Errorf("init payment domain: %w", err)
	}

	events, closeEvents := ProvideEventPublisher(cfg)
	a.addCleanup(closeEvents)

	archive, err := ProvideWebhookArchive(cfg)
	if err != nil {
		return err
	}

	a.orderDomain = ProvideOrderDomain(cfg, store, locker, payments, events, archive, a.metrics, zapLog)
	if cfg.Payment.AwaitingPaymentTTL > 0 {
		a.sweeper = newExpirySweeper(a.orderDomain, cfg.Payment.SweepInterval, a.metrics, zapLog)
	}

	zapLog.Info("application initialized",
		zap.Bool("database", db != nil),
		zap.Bool("redis", redis != nil),
		zap.Bool("auth", validator != nil),
		zap.Bool("webhook_archive", archive != nil),
	)
	return nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(a.config.Server.CORSOrigins))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/health", a.health)

	if a.config.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

// health reports ok when every configured backing store answers.
func (a *App) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true
	if a.db != nil {
		checks["database"] = "ok"
		if err := database.Ping(ctx, a.db); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
	}
	if a.redis != nil {
		checks["redis"] = "ok"
		if err := a.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}

// registerRoutes registers the order, board and payment routes.
func (a *App) registerRoutes() {
	v1 := a.router.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(a.validator))
	if a.rateLimiter != nil && a.config.Server.APIRateLimit > 0 {
		v1.Use(middleware.RateLimit(a.rateLimiter, a.config.Server.APIRateLimit, time.Minute, middleware.KeyByClient))
	}

	var staff []gin.HandlerFunc
	if a.validator != nil {
		staff = append(staff, middleware.RequireAuth(a.validator), middleware.RequireRole(middleware.RoleStaff))
	}

	var confirm []gin.HandlerFunc
	if a.redis != nil {
		idem := middleware.DefaultIdempotencyConfig()
		if a.config.Redis.IdempotencyTTL > 0 {
			idem.TTL = a.config.Redis.IdempotencyTTL
		}
		confirm = append(confirm, middleware.Idempotency(a.redis, idem))
	}

	ginadapter.RegisterOrderRoutes(v1, ginadapter.NewOrderHandler(a.orderDomain), staff...)
	ginadapter.RegisterBoardRoutes(v1, ginadapter.NewBoardHandler(a.orderDomain), staff...)

	var paymentOpts []ginadapter.PaymentHandlerOption
	if secret := a.config.Payment.Stripe.WebhookSecret; secret != "" {
		paymentOpts = append(paymentOpts, ginadapter.WithWebhookVerifier(model.PaymentMethodCreditCard, acquirer.NewStripeWebhookVerifier(secret)))
	} else if a.config.Payment.Stripe.SecretKey != "" {
		a.logger.Warn("stripe webhook secret not set, card deliveries are not signature-checked")
	}
	paymentHandler := ginadapter.NewPaymentHandler(a.orderDomain, paymentOpts...)
	ginadapter.RegisterPaymentRoutes(v1, paymentHandler, confirm...)

	// Acquirer deliveries carry no bearer token.
	var webhook []gin.HandlerFunc
	if a.rateLimiter != nil && a.config.Server.WebhookRateLimit > 0 {
		webhook = append(webhook, middleware.RateLimitByIP(a.rateLimiter, a.config.Server.WebhookRateLimit, time.Minute))
	}
	ginadapter.RegisterWebhookRoutes(a.router.Group(""), paymentHandler, webhook...)
}

// Start starts background workers.
func (a *App) Start(ctx context.Context) {
	if a.sweeper != nil {
		a.sweeper.Start(ctx)
	}
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// OrderDomain returns the order domain.
func (a *App) OrderDomain() order.OrderDomain {
	return a.orderDomain
}

// Stop stops the application and releases resources.
func (a *App) Stop() {
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	a.cleanup()
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *App) addCleanup(fn func()) {
	if fn != nil {
		a.cleanupFuncs = append(a.cleanupFuncs, fn)
	}
}

// cleanup runs cleanup functions in reverse order of registration.
func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}
