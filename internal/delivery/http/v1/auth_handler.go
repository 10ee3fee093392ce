package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"moondev-backend/config"
	"moondev-backend/internal/delivery/http/response"
	"moondev-backend/internal/domain"
	"moondev-backend/pkg/apperror"
	"moondev-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// authCookieMaxAge matches the Supabase access token lifetime
const authCookieMaxAge = 3600

type AuthHandler struct {
	authUC domain.AuthUsecase
	config *config.Config
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, authUC domain.AuthUsecase, cfg *config.Config, loginLimiter gin.HandlerFunc) {
	handler := &AuthHandler{
		authUC: authUC,
		config: cfg,
	}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/login", loginLimiter, handler.Login)
		publicAuth.POST("/register", loginLimiter, handler.Register)
		publicAuth.POST("/logout", handler.Logout)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// supabaseAuthURL joins the project URL with a GoTrue path
func (h *AuthHandler) supabaseAuthURL(path string) string {
	base := h.config.SupabaseUrl
	if len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + path
}

// callSupabase posts a JSON body to GoTrue with the project api key,
// forwarding the client IP and user agent
func (h *AuthHandler) callSupabase(c *gin.Context, url string, body map[string]interface{}) (*http.Response, error) {
	jsonBody, _ := json.Marshal(body)

	httpReq, err := http.NewRequestWithContext(c.Request.Context(), "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("apikey", h.config.SupabaseKey)
	httpReq.Header.Set("X-Forwarded-For", c.ClientIP())
	httpReq.Header.Set("User-Agent", c.Request.UserAgent())

	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(httpReq)
}

// supabaseErrorMessage digs the human-readable message out of a GoTrue
// error body
func supabaseErrorMessage(resp *http.Response, fallback string) string {
	var errResp map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	if m, ok := errResp["msg"].(string); ok && m != "" {
		return m
	}
	if m, ok := errResp["error_description"].(string); ok && m != "" {
		return m
	}
	return fallback
}

// setAuthCookie stores the access token so page navigation carries the
// session without the frontend attaching headers
func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("auth_token", token, authCookieMaxAge, "/", "", true, true)
}

// Register godoc
// @Summary      User Registration
// @Description  Register a new developer account with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      RegisterRequest  true  "Registration Details"
// @Success      201    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	resp, err := h.callSupabase(c, h.supabaseAuthURL("/auth/v1/signup"), map[string]interface{}{
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil {
		logger.Log.Error("supabase signup request failed", "error", err)
		c.Error(apperror.Upstream("Registration service unavailable", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.Error(apperror.BadRequest(supabaseErrorMessage(resp, "Registration failed")))
		return
	}

	var signup struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signup); err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	// With email confirmation enabled GoTrue returns no token; the local
	// user row is created on first login instead.
	if signup.AccessToken == "" {
		response.Success(c, http.StatusCreated, "Registration successful. Please check your email to confirm.", nil)
		return
	}

	user, err := h.authUC.EnsureUserExists(c.Request.Context(), signup.ID, req.Email)
	if err != nil {
		c.Error(err)
		return
	}
	h.setAuthCookie(c, signup.AccessToken)

	response.Success(c, http.StatusCreated, "Registration successful", gin.H{
		"token": signup.AccessToken,
		"user":  user,
	})
}

// Login godoc
// @Summary      User Login
// @Description  Login with email and password via Supabase
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Login Credentials"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	resp, err := h.callSupabase(c, h.supabaseAuthURL("/auth/v1/token?grant_type=password"), map[string]interface{}{
		"email":    req.Email,
		"password": req.Password,
	})
	if err != nil {
		logger.Log.Error("supabase login request failed", "error", err)
		c.Error(apperror.Upstream("Login service unavailable", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := "Wrong password or account not found"
		if m := supabaseErrorMessage(resp, ""); m == "Email not confirmed" {
			msg = m
		}
		c.Error(apperror.Unauthorized(msg))
		return
	}

	var session struct {
		User        domain.User `json:"user"`
		AccessToken string      `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	if session.User.ID == "" {
		c.Error(apperror.Internal(fmt.Errorf("login response carried no user id")))
		return
	}

	// First login creates the local row with the default role; the role
	// returned to the client always comes from our table, never claims.
	user, err := h.authUC.EnsureUserExists(c.Request.Context(), session.User.ID, session.User.Email)
	if err != nil {
		c.Error(err)
		return
	}
	h.setAuthCookie(c, session.AccessToken)

	response.Success(c, http.StatusOK, "Login successful", gin.H{
		"token": session.AccessToken,
		"user":  user,
	})
}

// Logout godoc
// @Summary      User Logout
// @Description  Clear the session cookie
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("auth_token", "", -1, "/", "", true, true)
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// Me godoc
// @Summary      Current user
// @Description  Return the authenticated user with the role from the database
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User details", gin.H{"user": user})
}
