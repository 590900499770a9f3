package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fastorder/server/internal/model"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader carries the caller-chosen idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader is set on responses served from the store.
	IdempotentReplayHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 255
)

// IdempotencyConfig holds idempotency middleware configuration.
type IdempotencyConfig struct {
	// TTL is how long a completed response is replayed.
	TTL time.Duration
	// LockTTL bounds how long an in-flight request holds its key.
	LockTTL time.Duration
	// KeyPrefix namespaces the Redis keys.
	KeyPrefix string
}

// DefaultIdempotencyConfig returns the default idempotency configuration.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:       24 * time.Hour,
		LockTTL:   30 * time.Second,
		KeyPrefix: "idempotency:",
	}
}

// storedResponse is the replayable outcome of a keyed request.
type storedResponse struct {
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first response for a repeated Idempotency-Key.
// Keys are scoped to the caller, method and concrete path; reusing a key with
// a different body or query is rejected with 422. Server errors are not stored
// so the caller can retry them. A nil client disables the middleware.
func Idempotency(redis goredis.UniversalClient, cfg IdempotencyConfig) gin.HandlerFunc {
	defaults := DefaultIdempotencyConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaults.LockTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaults.KeyPrefix
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if redis == nil || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			abortIdempotency(c, http.StatusBadRequest, "invalid_idempotency_key", "Idempotency key is too long")
			return
		}

		fingerprint, err := requestFingerprint(c)
		if err != nil {
			abortIdempotency(c, http.StatusBadRequest, "invalid_body", "Request body could not be read")
			return
		}

		ctx := c.Request.Context()
		storeKey := cfg.KeyPrefix + scopeKey(c, key)

		stored, err := loadResponse(ctx, redis, storeKey)
		if err != nil && !errors.Is(err, goredis.Nil) {
			_ = c.Error(err)
		}
		if stored != nil {
			if stored.Fingerprint != fingerprint {
				abortIdempotency(c, http.StatusUnprocessableEntity, "idempotency_key_reused",
					"Idempotency key was already used with a different request")
				return
			}
			c.Header(IdempotentReplayHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		lockKey := storeKey + ":lock"
		acquired, err := redis.SetNX(ctx, lockKey, fingerprint, cfg.LockTTL).Result()
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}
		if !acquired {
			abortIdempotency(c, http.StatusConflict, "request_in_progress",
				"A request with this idempotency key is already being processed")
			return
		}

		background := context.WithoutCancel(ctx)
		defer redis.Del(background, lockKey)

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if w.Status() >= http.StatusInternalServerError {
			return
		}
		resp := &storedResponse{
			Fingerprint: fingerprint,
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.buf.Bytes(),
		}
		if err := saveResponse(background, redis, storeKey, resp, cfg.TTL); err != nil {
			_ = c.Error(err)
		}
	}
}

func abortIdempotency(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{Code: code, Message: message})
}

// scopeKey binds a caller key to the client, method and concrete path.
func scopeKey(c *gin.Context, key string) string {
	scope := strings.Join([]string{c.GetString(ClientIDKey), c.Request.Method, c.Request.URL.Path, key}, "\x00")
	sum := sha256.Sum256([]byte(scope))
	return hex.EncodeToString(sum[:])
}

// requestFingerprint hashes the query and body, restoring the body for the handler.
func requestFingerprint(c *gin.Context) (string, error) {
	h := sha256.New()
	h.Write([]byte(c.Request.URL.RawQuery))
	h.Write([]byte{0})

	if c.Request.Body != nil {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func loadResponse(ctx context.Context, redis goredis.UniversalClient, key string) (*storedResponse, error) {
	data, err := redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var resp storedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func saveResponse(ctx context.Context, redis goredis.UniversalClient, key string, resp *storedResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return redis.Set(ctx, key, data, ttl).Err()
}
