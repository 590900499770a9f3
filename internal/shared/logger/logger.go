package logger

import (
	"context"
	"io"
	"strings"

	"github.com/fastorder/server/internal/utils/requestctx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// New builds the process logger. Text format uses the development encoder;
// a non-nil Output replaces stdout.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	text := strings.EqualFold(cfg.Format, "text")

	var zcfg zap.Config
	if text {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "time"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	if cfg.Output == nil {
		return zcfg.Build()
	}

	encoder := zapcore.NewJSONEncoder(zcfg.EncoderConfig)
	if text {
		encoder = zapcore.NewConsoleEncoder(zcfg.EncoderConfig)
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(cfg.Output), zcfg.Level)
	return zap.New(core, zap.AddCaller()), nil
}

// ParseLevel maps a config level to zap, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// WithRequest tags l with the request and client ids carried by ctx.
func WithRequest(ctx context.Context, l *zap.Logger) *zap.Logger {
	var fields []zap.Field
	if id := requestctx.RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := requestctx.ClientID(ctx); id != "" {
		fields = append(fields, zap.String("client_id", id))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
