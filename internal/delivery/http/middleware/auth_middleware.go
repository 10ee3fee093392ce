package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"moondev-backend/config"
	"moondev-backend/internal/delivery/http/response"
	"moondev-backend/internal/domain"
	"moondev-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// identity is the verified token subject before the role lookup
type identity struct {
	UserID string
	Email  string
}

// extractToken pulls the bearer token from the Authorization header or
// the auth_token cookie set at login
func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// verifyToken parses and verifies a Supabase access token. HS256 tokens
// are checked against the shared project secret, RS256 against the
// project JWKS.
func verifyToken(tokenString string, jwksProvider *auth.Provider, cfg *config.Config) (*identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			if cfg.SupabaseJWTSecret == "" {
				return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_KEY is not configured")
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			return jwksProvider.KeyFunc(token)
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return &identity{UserID: sub, Email: email}, nil
}

// AuthMiddleware rejects requests that do not carry a verifiable token.
// The role is always read fresh from the users table; the JWT role
// claim is never trusted since Supabase stamps 'authenticated' there.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		id, err := verifyToken(tokenString, jwksProvider, cfg)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid token", err.Error())
			c.Abort()
			return
		}

		user, err := authUC.GetCurrentUser(c.Request.Context(), id.UserID)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}

		role := user.Role
		if role == "" {
			role = domain.RoleDeveloper
		}

		c.Set(string(domain.KeyUserID), id.UserID)
		c.Set(string(domain.KeyUserEmail), id.Email)
		c.Set(string(domain.KeyUserRole), role)
		c.Set(string(domain.KeyAuthenticated), true)

		c.Next()
	}
}

// RequireRole allows only the given role through. Must run after
// AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := c.GetString(string(domain.KeyUserRole))
		if current != role {
			response.Error(c, http.StatusForbidden, "You do not have access to this resource", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
