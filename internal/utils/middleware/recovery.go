package middleware

import (
	"net/http"

	"github.com/fastorder/server/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 and logs it with a stack trace.
// A nil logger falls back to zap's global logger.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.Error("Panic recovered",
				zap.Any("panic", rec),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c)),
				zap.Stack("stack"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
				Code:    "internal_error",
				Message: "internal server error",
			})
		}()
		c.Next()
	}
}
