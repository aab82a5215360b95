package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"tristar/fitness-hub/internal/apperr"
	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/metrics"
	"tristar/fitness-hub/internal/service"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
	ContextUsernameKey = "username"
	ContextNameKey     = "userName"
)

// Legacy stub tokens. Anything with this prefix authenticates as the demo
// owner when demo tokens are allowed. Not a security mechanism.
const (
	demoTokenPrefix = "demo-token-"
	demoUserID      = "demo-owner"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string, allowDemoTokens bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, apperr.KindUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, apperr.KindUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}
		tokenString := parts[1]

		if allowDemoTokens && strings.HasPrefix(tokenString, demoTokenPrefix) {
			c.Set(ContextUserIDKey, demoUserID)
			c.Set(ContextUserRoleKey, domain.RoleOwner)
			c.Set(ContextUsernameKey, "demo")
			c.Set(ContextNameKey, "Demo Owner")
			c.Next()
			return
		}

		claims := &service.Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			// Validate the alg is what we expect:
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, apperr.KindUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, apperr.KindUnauthorized, "Invalid token")
			}
			return
		}
		if !token.Valid || claims.UserID == "" || claims.Role == "" {
			abortWithError(c, http.StatusUnauthorized, apperr.KindUnauthorized, "Invalid token or missing claims")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Set(ContextUsernameKey, claims.Subject)
		c.Set(ContextNameKey, claims.Name)
		c.Next()
	}
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := getUserRoleFromContext(c)
		if err != nil {
			// AuthMiddleware did not run or set the wrong type.
			abortWithError(c, http.StatusInternalServerError, apperr.KindInternal, err.Error())
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, apperr.KindForbidden,
			fmt.Sprintf("Access denied: Role '%s' does not have permission", userRole))
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// Helper function to get User Role from context (used by handlers)
func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

// RequestLogger writes one structured line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", routeOf(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIp", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// MetricsMiddleware records request counts and latency by route template.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}

// RateLimitMiddleware allows limit requests per client IP in each fixed
// window. A non-positive limit disables it.
func RateLimitMiddleware(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	hits := cache.New(window, 2*window)
	return func(c *gin.Context) {
		key := c.ClientIP()
		count := 1
		if err := hits.Add(key, 1, window); err != nil {
			n, err := hits.IncrementInt(key, 1)
			if err != nil {
				// The window expired between Add and IncrementInt.
				hits.Set(key, 1, window)
				n = 1
			}
			count = n
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if remaining := limit - count; remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		} else {
			c.Header("X-RateLimit-Remaining", "0")
		}
		if count > limit {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			abortWithError(c, http.StatusTooManyRequests, apperr.KindRateLimited, "Too many requests, try again later")
			return
		}
		c.Next()
	}
}
