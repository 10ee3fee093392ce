package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"moondev-backend/internal/delivery/http/response"
	"moondev-backend/internal/domain"
	"moondev-backend/internal/realtime"
	"moondev-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// keepAliveInterval is how often a comment line is written so proxies
// do not reap an idle stream
const keepAliveInterval = 15 * time.Second

type StreamHandler struct {
	hub *realtime.Hub
}

func NewStreamHandler(protected *gin.RouterGroup, hub *realtime.Hub) {
	handler := &StreamHandler{hub: hub}
	protected.GET("/submissions/stream", handler.Stream)
}

// Stream godoc
// @Summary      Submission event stream
// @Description  Server-sent events with submission created/updated payloads. Evaluators receive every submission; developers only their own.
// @Tags         submissions
// @Produce      text/event-stream
// @Success      200
// @Failure      401  {object}  response.Response
// @Router       /submissions/stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	role := c.GetString(string(domain.KeyUserRole))
	userID := c.GetString(string(domain.KeyUserID))

	// Scope the subscription by role. Developers never see other
	// developers' submissions regardless of query params.
	var filter realtime.EventFilter
	switch role {
	case domain.RoleEvaluator:
		filter = realtime.AllSubmissions
		if c.Query("mine") == "1" {
			filter = realtime.ForUser(userID)
		}
	default:
		filter = realtime.ForUser(userID)
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, "Streaming not supported", nil)
		return
	}

	events, cancel := h.hub.Subscribe(filter)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Log.Warn("failed to encode submission event", "error", err)
				continue
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
