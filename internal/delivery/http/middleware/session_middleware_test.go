package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moondev-backend/config"
	"moondev-backend/internal/delivery/http/middleware"
	"moondev-backend/internal/domain"
	"moondev-backend/pkg/apperror"
	"moondev-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	logger.Init()
	gin.SetMode(gin.TestMode)
}

type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) EnsureUserExists(ctx context.Context, userID, email string) (*domain.User, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

const testJWTSecret = "session-test-secret"

func signSessionToken(t *testing.T, userID, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	assert.NoError(t, err)
	return signed
}

// newGuardedPage wires the session resolver and route guard in front of
// a /submit page, the same order the page router uses.
func newGuardedPage(authUC domain.AuthUsecase) *gin.Engine {
	cfg := &config.Config{SupabaseJWTSecret: testJWTSecret}
	r := gin.New()
	r.Use(middleware.SessionMiddleware(nil, cfg, authUC))
	r.Use(middleware.RouteGuard())
	r.GET("/submit", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func clearsAuthCookie(res *http.Response) bool {
	for _, cookie := range res.Cookies() {
		if cookie.Name == "auth_token" && cookie.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestSessionMiddlewareRoleLookupFailures(t *testing.T) {
	t.Run("transient store failure keeps the cookie and redirects home", func(t *testing.T) {
		authUC := new(MockAuthUsecase)
		authUC.On("GetCurrentUser", mock.Anything, "user-1").
			Return(nil, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"))

		req := httptest.NewRequest(http.MethodGet, "/submit", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: signSessionToken(t, "user-1", "dev@example.com")})
		w := httptest.NewRecorder()
		newGuardedPage(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.False(t, clearsAuthCookie(w.Result()), "a valid session must survive a store outage")
		authUC.AssertExpectations(t)
	})

	t.Run("verified token with no user row is signed out", func(t *testing.T) {
		authUC := new(MockAuthUsecase)
		authUC.On("GetCurrentUser", mock.Anything, "user-2").
			Return(nil, apperror.New(http.StatusNotFound, "User not found", domain.ErrNotFound))

		req := httptest.NewRequest(http.MethodGet, "/submit", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: signSessionToken(t, "user-2", "dev@example.com")})
		w := httptest.NewRecorder()
		newGuardedPage(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.True(t, clearsAuthCookie(w.Result()), "an orphaned token must be cleared")
		authUC.AssertExpectations(t)
	})

	t.Run("resolved developer reaches the submit page", func(t *testing.T) {
		authUC := new(MockAuthUsecase)
		authUC.On("GetCurrentUser", mock.Anything, "user-3").
			Return(&domain.User{ID: "user-3", Email: "dev@example.com", Role: domain.RoleDeveloper}, nil)

		req := httptest.NewRequest(http.MethodGet, "/submit", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: signSessionToken(t, "user-3", "dev@example.com")})
		w := httptest.NewRecorder()
		newGuardedPage(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		authUC.AssertExpectations(t)
	})

	t.Run("garbage token degrades to anonymous without clearing the cookie", func(t *testing.T) {
		authUC := new(MockAuthUsecase)

		req := httptest.NewRequest(http.MethodGet, "/submit", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "not-a-jwt"})
		w := httptest.NewRecorder()
		newGuardedPage(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.False(t, strings.Contains(w.Header().Get("Set-Cookie"), "auth_token="))
		authUC.AssertNotCalled(t, "GetCurrentUser")
	})
}
