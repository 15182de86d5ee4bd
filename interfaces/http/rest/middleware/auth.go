package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"pingwards-backend/pkg/auth"
	"pingwards-backend/pkg/common"
)

// Authenticate validates the bearer token and attaches the caller to
// the request context. IP and per-user rate limits run here too so an
// unauthenticated flood never reaches a handler.
func Authenticate(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(100)     // per minute per IP
	userLimiter := auth.NewUserRateLimiter(200) // per minute per user

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := ipLimiter.Allow(r.Context(), clientIP)
			if err != nil {
				logger.Error("rate limiter error", zap.Error(err))
				common.RespondError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
				return
			}
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMIT", "Rate limit exceeded")
				return
			}

			token := extractToken(r)
			if token == "" {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authentication token")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.Warn("invalid token",
					zap.Error(err),
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path),
				)
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
				return
			}

			allowed, err = userLimiter.Allow(r.Context(), claims.UserID)
			if err != nil {
				logger.Error("user rate limiter error", zap.Error(err))
				common.RespondError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
				return
			}
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMIT", "User rate limit exceeded")
				return
			}

			ctx := auth.WithUser(r.Context(), &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the JWT from the Authorization header or the
// auth_token cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
		return authHeader
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}

	return ""
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

