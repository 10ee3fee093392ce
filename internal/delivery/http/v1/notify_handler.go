package v1

import (
	"net/http"

	"moondev-backend/internal/delivery/http/middleware"
	"moondev-backend/internal/delivery/http/response"
	"moondev-backend/internal/domain"
	"moondev-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type NotifyHandler struct {
	notificationUC domain.NotificationUsecase
}

func NewNotifyHandler(protected *gin.RouterGroup, notificationUC domain.NotificationUsecase) {
	handler := &NotifyHandler{notificationUC: notificationUC}
	protected.POST("/notify", middleware.RequireRole(domain.RoleEvaluator), handler.Notify)
}

type NotifyRequest struct {
	SubmissionID string `json:"submission_id" binding:"required"`
	Action       string `json:"action" binding:"required,oneof=accepted rejected"`
	Feedback     string `json:"feedback"`
}

// Notify godoc
// @Summary      Resend a decision notification
// @Description  Send the decision email for a submission again, for when the automatic dispatch failed
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        notify  body  NotifyRequest  true  "Notification details"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /notify [post]
func (h *NotifyHandler) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.notificationUC.NotifyDecision(c.Request.Context(), req.SubmissionID, req.Action, req.Feedback); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Notification sent", nil)
}
