package middleware

import (
	"errors"

	"moondev-backend/config"
	"moondev-backend/internal/domain"
	"moondev-backend/pkg/auth"
	"moondev-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SessionMiddleware resolves the session for page routes without ever
// rejecting the request. An unverifiable or absent token leaves the
// request anonymous; a verified token with no matching user row is
// recorded as a session without a role so the route guard can force a
// sign-out instead of looping redirects.
func SessionMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(domain.KeyAuthenticated), false)

		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		id, err := verifyToken(tokenString, jwksProvider, cfg)
		if err != nil {
			c.Next()
			return
		}

		c.Set(string(domain.KeyAuthenticated), true)
		c.Set(string(domain.KeyUserID), id.UserID)
		c.Set(string(domain.KeyUserEmail), id.Email)

		user, err := authUC.GetCurrentUser(c.Request.Context(), id.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Verified token with no local row. Leave the role unset
				// so the guard signs the session out instead of looping.
				c.Next()
				return
			}
			// Transient store failure. Degrade to unauthenticated and
			// keep the cookie; the session is still valid.
			logger.Log.Warn("session role lookup failed", "user_id", id.UserID, "error", err)
			c.Set(string(domain.KeyAuthenticated), false)
			c.Next()
			return
		}
		c.Set(string(domain.KeyUserRole), user.Role)

		c.Next()
	}
}
