package middleware

import (
	"net/http"
	"strings"

	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/utils/requestctx"
	"github.com/gin-gonic/gin"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// ClientIDKey is the context key for the authenticated client id.
	ClientIDKey = "client_id"
	// RoleKey is the context key for the caller role.
	RoleKey = "role"
)

// Roles carried in access tokens.
const (
	RoleClient = "client"
	RoleStaff  = "staff"
)

// Claims is the identity extracted from a validated token.
type Claims struct {
	ClientID string
	Role     string
}

// JWTValidator defines the interface for JWT token validation.
type JWTValidator interface {
	ValidateToken(token string) (*Claims, error)
}

// Auth returns a middleware that validates JWT tokens.
// If the token is valid, it sets client_id and role in the context.
// If optional is true, the middleware will not abort on missing/invalid tokens.
func Auth(validator JWTValidator, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator == nil {
			c.Next()
			return
		}

		token := extractBearerToken(c)
		if token == "" {
			if !optional {
				c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
					Code:    "unauthorized",
					Message: "Authorization header required",
				})
				return
			}
			c.Next()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			if !optional {
				c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
					Code:    "invalid_token",
					Message: "Invalid or expired token",
				})
				return
			}
			c.Next()
			return
		}

		c.Set(ClientIDKey, claims.ClientID)
		c.Set(RoleKey, claims.Role)
		c.Request = c.Request.WithContext(requestctx.WithClientID(c.Request.Context(), claims.ClientID))

		c.Next()
	}
}

// RequireAuth returns a middleware that requires a valid JWT token.
func RequireAuth(validator JWTValidator) gin.HandlerFunc {
	return Auth(validator, false)
}

// OptionalAuth returns a middleware that optionally validates JWT tokens.
func OptionalAuth(validator JWTValidator) gin.HandlerFunc {
	return Auth(validator, true)
}

// RequireRole aborts with 403 unless the authenticated caller has one of roles.
// It must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(RoleKey)] {
			c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse{
				Code:    "forbidden",
				Message: "Insufficient role for this operation",
			})
			return
		}
		c.Next()
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
	}
	return ""
}

// GetClientID returns the authenticated client id, or nil for anonymous callers.
func GetClientID(c *gin.Context) *string {
	id := c.GetString(ClientIDKey)
	if id == "" {
		return nil
	}
	return &id
}
