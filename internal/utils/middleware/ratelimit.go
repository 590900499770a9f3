package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/port/outbound"
	"github.com/gin-gonic/gin"
)

// Rate limit response headers.
const (
	RateLimitLimit     = "X-RateLimit-Limit"
	RateLimitRemaining = "X-RateLimit-Remaining"
	RetryAfter         = "Retry-After"
)

// KeyFunc derives the bucket a request is counted against.
type KeyFunc func(*gin.Context) string

// KeyByIP counts requests per client IP.
func KeyByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// KeyByClient counts requests per authenticated client, falling back to IP.
func KeyByClient(c *gin.Context) string {
	if clientID := GetClientID(c); clientID != nil {
		return "client:" + *clientID
	}
	return KeyByIP(c)
}

// RateLimit rejects requests beyond limit per window with 429. Limiter errors
// let the request through; a nil limiter disables the middleware.
func RateLimit(limiter outbound.RateLimiterPort, limit int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = KeyByIP
	}

	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		decision, err := limiter.Take(c.Request.Context(), key(c), limit, window)
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}

		c.Header(RateLimitLimit, strconv.Itoa(limit))
		c.Header(RateLimitRemaining, strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			c.Header(RetryAfter, retryAfterSeconds(decision.RetryAfter, window))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
				Code:    "rate_limit_exceeded",
				Message: "Too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}

// retryAfterSeconds rounds up to whole seconds, never below one.
func retryAfterSeconds(d, window time.Duration) string {
	if d <= 0 {
		d = window
	}
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// RateLimitByIP limits requests per client IP.
func RateLimitByIP(limiter outbound.RateLimiterPort, limit int, window time.Duration) gin.HandlerFunc {
	return RateLimit(limiter, limit, window, KeyByIP)
}
