package middleware

import (
	"net/http"

	"moondev-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// GuardAction is the outcome of a route guard check
type GuardAction int

const (
	GuardAllow GuardAction = iota
	GuardRedirect
	// GuardSignOut clears the session before redirecting. Used when a
	// valid token maps to no usable role, where a plain redirect would
	// loop forever.
	GuardSignOut
)

// GuardDecision tells the guard middleware what to do with a page request
type GuardDecision struct {
	Action   GuardAction
	Location string
}

// homeRoute maps a role to its workspace page
func homeRoute(role string) string {
	switch role {
	case domain.RoleDeveloper:
		return "/submit"
	case domain.RoleEvaluator:
		return "/evaluate"
	}
	return "/"
}

// ResolveRoute decides whether a session may stay on a page. The
// landing page is open to everyone; each workspace page admits exactly
// one role and bounces the other to its own workspace. A session with
// a role that matches neither workspace is signed out rather than
// redirected, since no page would ever accept it.
func ResolveRoute(authenticated bool, role, path string) GuardDecision {
	if !authenticated {
		if path == "/" {
			return GuardDecision{Action: GuardAllow}
		}
		return GuardDecision{Action: GuardRedirect, Location: "/"}
	}

	switch role {
	case domain.RoleDeveloper:
		if path == "/" || path == "/submit" {
			return GuardDecision{Action: GuardAllow}
		}
		return GuardDecision{Action: GuardRedirect, Location: "/submit"}
	case domain.RoleEvaluator:
		if path == "/" || path == "/evaluate" {
			return GuardDecision{Action: GuardAllow}
		}
		return GuardDecision{Action: GuardRedirect, Location: "/evaluate"}
	}

	return GuardDecision{Action: GuardSignOut, Location: "/"}
}

// RouteGuard enforces ResolveRoute on page routes. Must run after
// SessionMiddleware.
func RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticated := c.GetBool(string(domain.KeyAuthenticated))
		role := c.GetString(string(domain.KeyUserRole))

		decision := ResolveRoute(authenticated, role, c.Request.URL.Path)
		switch decision.Action {
		case GuardRedirect:
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
		case GuardSignOut:
			c.SetCookie("auth_token", "", -1, "/", "", true, true)
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
		default:
			c.Next()
		}
	}
}
