package middleware_test

import (
	"testing"

	"moondev-backend/internal/delivery/http/middleware"
	"moondev-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestResolveRoute(t *testing.T) {
	cases := []struct {
		name          string
		authenticated bool
		role          string
		path          string
		want          middleware.GuardDecision
	}{
		{"anonymous on landing page", false, "", "/", middleware.GuardDecision{Action: middleware.GuardAllow}},
		{"anonymous on submit", false, "", "/submit", middleware.GuardDecision{Action: middleware.GuardRedirect, Location: "/"}},
		{"anonymous on evaluate", false, "", "/evaluate", middleware.GuardDecision{Action: middleware.GuardRedirect, Location: "/"}},

		{"developer on landing page", true, domain.RoleDeveloper, "/", middleware.GuardDecision{Action: middleware.GuardAllow}},
		{"developer on submit", true, domain.RoleDeveloper, "/submit", middleware.GuardDecision{Action: middleware.GuardAllow}},
		{"developer on evaluate", true, domain.RoleDeveloper, "/evaluate", middleware.GuardDecision{Action: middleware.GuardRedirect, Location: "/submit"}},

		{"evaluator on landing page", true, domain.RoleEvaluator, "/", middleware.GuardDecision{Action: middleware.GuardAllow}},
		{"evaluator on evaluate", true, domain.RoleEvaluator, "/evaluate", middleware.GuardDecision{Action: middleware.GuardAllow}},
		{"evaluator on submit", true, domain.RoleEvaluator, "/submit", middleware.GuardDecision{Action: middleware.GuardRedirect, Location: "/evaluate"}},

		{"authenticated without role is signed out", true, "", "/submit", middleware.GuardDecision{Action: middleware.GuardSignOut, Location: "/"}},
		{"authenticated with unknown role is signed out", true, "admin", "/", middleware.GuardDecision{Action: middleware.GuardSignOut, Location: "/"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := middleware.ResolveRoute(tc.authenticated, tc.role, tc.path)
			assert.Equal(t, tc.want, got)
		})
	}
}
