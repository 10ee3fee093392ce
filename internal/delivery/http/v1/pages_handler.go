package v1

import (
	"net/http"

	"moondev-backend/internal/delivery/http/response"
	"moondev-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// PagesHandler serves the page shell data behind the guarded routes.
// The frontend asks these endpoints whether the session may stay on a
// page; the route guard answers with a redirect or sign-out before the
// handler ever runs.
type PagesHandler struct{}

func NewPagesHandler(pages *gin.RouterGroup) {
	handler := &PagesHandler{}
	pages.GET("/", handler.page("home"))
	pages.GET("/submit", handler.page("submit"))
	pages.GET("/evaluate", handler.page("evaluate"))
}

func (h *PagesHandler) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, "Page resolved", gin.H{
			"page":          name,
			"authenticated": c.GetBool(string(domain.KeyAuthenticated)),
			"email":         c.GetString(string(domain.KeyUserEmail)),
			"role":          c.GetString(string(domain.KeyUserRole)),
		})
	}
}
