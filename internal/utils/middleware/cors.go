package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows browser clients from origins; an empty list allows any origin.
// Request ids, idempotency keys and rate limit headers cross the boundary.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", AuthorizationHeader, RequestIDHeader, IdempotencyKeyHeader,
		},
		ExposeHeaders: []string{
			"Content-Length", RequestIDHeader, IdempotentReplayHeader,
			RateLimitLimit, RateLimitRemaining, RetryAfter,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
