package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-advisor/internal/core/auth"
	"agro-advisor/internal/domain"
	"agro-advisor/internal/transport/http/ez"
	resp "agro-advisor/internal/transport/http/response"
)

// SessionSource loads the stored account behind a token subject.
type SessionSource interface {
	Get(ctx context.Context, username string) (*domain.SessionUser, error)
}

// AuthJWT verifies the bearer token, reloads the account it was issued for
// and stores that account in both the gin context and the request context.
// Tokens of deleted (or deleted and re-registered) accounts are rejected, and
// roles come from the stored account. requireRole "" admits any role.
func AuthJWT(j *auth.JWTer, users SessionSource, log *zap.Logger, requireRole string) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	unauthorized := func(c *gin.Context, msg string) {
		c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, msg))
	}
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			unauthorized(c, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}
		s, err := users.Get(c.Request.Context(), claims.Username)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			unauthorized(c, "invalid token")
			return
		case err != nil:
			ez.Fail(c, log, err)
			c.Abort()
			return
		case !claims.Matches(s):
			log.Info("stale token", zap.String("username", claims.Username))
			unauthorized(c, "invalid token")
			return
		}
		if requireRole != "" && s.Role != requireRole {
			ez.Fail(c, log, domain.ErrInsufficientPrivilege)
			c.Abort()
			return
		}
		c.Set(ez.KeySession, s)
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), s))
		c.Next()
	}
}
