package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessClaims is the token payload: sub holds the client id.
type accessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// HMACValidator validates HS256 access tokens.
type HMACValidator struct {
	secret []byte
	issuer string
}

// NewHMACValidator creates a validator for tokens signed with secret.
// An empty issuer skips the issuer check.
func NewHMACValidator(secret, issuer string) (*HMACValidator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &HMACValidator{secret: []byte(secret), issuer: issuer}, nil
}

// ValidateToken implements JWTValidator.
func (v *HMACValidator) ValidateToken(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	role := claims.Role
	if role == "" {
		role = RoleClient
	}
	return &Claims{ClientID: claims.Subject, Role: role}, nil
}

// IssueToken signs an access token. It is used by tooling and tests.
func (v *HMACValidator) IssueToken(clientID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &accessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Compile-time check
var _ JWTValidator = (*HMACValidator)(nil)
