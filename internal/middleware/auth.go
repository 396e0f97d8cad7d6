package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"autovision/backend/internal/config"
	"autovision/backend/internal/models"
	"autovision/backend/internal/repository"
	"autovision/backend/internal/security"
)

const (
	ContextKeyClaims = "access_claims"
	ContextKeyUser   = "current_user"
)

// Auth validates the bearer token and loads the backing session and user.
// AllowQueryToken additionally accepts ?token= for endpoints that browsers
// hit without headers, like a <video> source.
type AuthOptions struct {
	AllowQueryToken bool
}

func Auth(cfg *config.AppConfig, users *repository.UserRepository, sessions *repository.SessionRepository) gin.HandlerFunc {
	return AuthWithOptions(cfg, users, sessions, AuthOptions{})
}

func AuthWithOptions(cfg *config.AppConfig, users *repository.UserRepository, sessions *repository.SessionRepository, opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" && opts.AllowQueryToken {
			tokenStr = c.Query("token")
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTAccessSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		session, err := sessions.GetByID(c.Request.Context(), claims.SessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_not_found"})
			return
		}

		if session.UserID != claims.UserID || session.DeviceID != claims.DeviceID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_mismatch"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		if user.Status != models.UserStatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
			return
		}

		_ = sessions.Touch(c.Request.Context(), session.ID, c.ClientIP(), c.GetHeader("User-Agent"))

		c.Set(ContextKeyClaims, *claims)
		c.Set(ContextKeyUser, user)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// CurrentUser returns the user loaded by Auth. The bool is false on routes
// that skipped the middleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

func CurrentClaims(c *gin.Context) (security.AccessClaims, bool) {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return security.AccessClaims{}, false
	}
	claims, ok := val.(security.AccessClaims)
	return claims, ok
}
