package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`

	// WebhookRateLimit is requests per minute per IP on the webhook route; zero disables.
	WebhookRateLimit int `mapstructure:"webhook_rate_limit"`
	// APIRateLimit is requests per minute per client (or IP when anonymous)
	// on /api/v1; zero disables.
	APIRateLimit int `mapstructure:"api_rate_limit"`
}

// DatabaseConfig holds database configuration.
// An empty Host selects the in-memory order store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
// An empty Address disables Redis locking, rate limiting and idempotency.
type RedisConfig struct {
	Address        string        `mapstructure:"address"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	PoolSize       int           `mapstructure:"pool_size"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
	LockRetry      time.Duration `mapstructure:"lock_retry"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

// AuthConfig holds bearer token configuration.
// An empty JWTSecret accepts every request as anonymous.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// PaymentConfig holds payment code and acquirer configuration.
type PaymentConfig struct {
	CodeSecret         string        `mapstructure:"code_secret"`
	SimplifiedMethods  []string      `mapstructure:"simplified_methods"`
	Currency           string        `mapstructure:"currency"`
	AwaitingPaymentTTL time.Duration `mapstructure:"awaiting_payment_ttl"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
	Stripe             StripeConfig  `mapstructure:"stripe"`
	Breaker            BreakerConfig `mapstructure:"breaker"`
}

// StripeConfig holds Stripe credentials. An empty SecretKey selects the simulated acquirer.
// A non-empty WebhookSecret makes card deliveries require a valid Stripe-Signature.
type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	APIBase       string `mapstructure:"api_base"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// BreakerConfig holds acquirer circuit breaker settings.
type BreakerConfig struct {
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxHalfOpen      uint32        `mapstructure:"max_half_open"`
}

// KafkaConfig holds event publishing configuration. No brokers disables publishing.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StorageConfig holds object storage configuration for the webhook archive.
// An empty Bucket disables archiving.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

// MetricsConfig holds Prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from path, or from the default search paths
// when path is empty.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/fastorder")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// FASTORDER_PAYMENT_CODE_SECRET overrides payment.code_secret, and so on.
	v.SetEnvPrefix("FASTORDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if secret := os.Getenv("FASTORDER_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv("FASTORDER_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv("FASTORDER_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if key := os.Getenv("FASTORDER_STRIPE_SECRET_KEY"); key != "" {
		cfg.Payment.Stripe.SecretKey = key
	}
	if secret := os.Getenv("FASTORDER_STRIPE_WEBHOOK_SECRET"); secret != "" {
		cfg.Payment.Stripe.WebhookSecret = secret
	}
	if key := os.Getenv("FASTORDER_STORAGE_SECRET_KEY"); key != "" {
		cfg.Storage.SecretAccessKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.Payment.CodeSecret == "" {
		return fmt.Errorf("payment.code_secret is required")
	}
	if c.Payment.AwaitingPaymentTTL < 0 {
		return fmt.Errorf("payment.awaiting_payment_ttl must not be negative")
	}
	if c.Payment.AwaitingPaymentTTL > 0 && c.Payment.SweepInterval <= 0 {
		return fmt.Errorf("payment.sweep_interval must be positive when expiry is enabled")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.webhook_rate_limit", 600)
	v.SetDefault("server.api_rate_limit", 300)

	// Database defaults
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "fastorder")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)

	// Redis defaults
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.lock_ttl", 10*time.Second)
	v.SetDefault("redis.lock_retry", 25*time.Millisecond)
	v.SetDefault("redis.idempotency_ttl", 24*time.Hour)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "fastorder")

	// Payment defaults
	v.SetDefault("payment.code_secret", "")
	v.SetDefault("payment.simplified_methods", []string{"pix"})
	v.SetDefault("payment.currency", "brl")
	v.SetDefault("payment.awaiting_payment_ttl", 0)
	v.SetDefault("payment.sweep_interval", time.Minute)
	v.SetDefault("payment.stripe.webhook_secret", "")
	v.SetDefault("payment.breaker.failure_threshold", 5)
	v.SetDefault("payment.breaker.interval", time.Minute)
	v.SetDefault("payment.breaker.timeout", 30*time.Second)
	v.SetDefault("payment.breaker.max_half_open", 1)

	// Kafka defaults
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "order-events")
	v.SetDefault("kafka.write_timeout", 5*time.Second)

	// Storage defaults
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.prefix", "webhooks")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "fastorder")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
