package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgerrors "pingwards-backend/pkg/errors"
)

// Claims holds the authenticated user identity carried by a bearer token.
// The identity is used only to scope which reminders belong to the caller.
type Claims struct {
	UserID string   `json:"sub"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig configures token validation
type JWTConfig struct {
	SigningMethod string
	SecretKey     string
	Issuer        string
	Audience      []string
}

// JWTValidator validates bearer tokens
type JWTValidator struct {
	config JWTConfig
}

// NewJWTValidator creates a validator for the given configuration
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("jwt secret key is required")
	}
	if config.SigningMethod == "" {
		config.SigningMethod = "HS256"
	}
	if config.SigningMethod != "HS256" {
		return nil, fmt.Errorf("unsupported signing method: %s", config.SigningMethod)
	}
	return &JWTValidator{config: config}, nil
}

// Validate parses and verifies a token string and returns its claims
func (v *JWTValidator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.config.SecretKey), nil
	},
		jwt.WithIssuer(v.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, pkgerrors.NewUnauthorizedError("invalid token").WithCause(err)
	}

	if !token.Valid {
		return nil, pkgerrors.NewUnauthorizedError("invalid token")
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, pkgerrors.NewUnauthorizedError("token missing subject")
	}

	return claims, nil
}

type contextKey string

const userContextKey contextKey = "auth_user"

// UserContext is the authenticated caller attached to a request context
type UserContext struct {
	UserID string
	Email  string
	Roles  []string
}

// WithUser attaches an authenticated user to the context
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, pkgerrors.NewUnauthorizedError("no authenticated user in context")
	}
	return user, nil
}
