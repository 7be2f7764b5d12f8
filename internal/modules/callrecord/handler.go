package callrecord

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/call_events", h.CallEvent)
	rg.POST("/webhooks/inbound", h.Inbound)
}

// CallEvent always acknowledges with 204. The platform retries on any other
// status, and a malformed payload will never become well formed, so dropping
// it with a log line is the only useful move.
func (h *Handler) CallEvent(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		log.Printf("webhook_body_unreadable error=%q", err)
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.service.RecordEvent(c.Request.Context(), json.RawMessage(raw)); err != nil {
		log.Printf("webhook_event_failed error=%q", err)
	}
	c.Status(http.StatusNoContent)
}

// Inbound answers the pre-call routing question with the metadata the
// platform stamps onto the call.
func (h *Handler) Inbound(c *gin.Context) {
	var payload InboundPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Fail(c, http.StatusOK, "INVALID_REQUEST", "Invalid inbound payload.")
		return
	}

	metadata, err := h.service.MapInbound(c.Request.Context(), &payload)
	if err != nil {
		response.Fail(c, http.StatusOK, "BUSINESS_NOT_FOUND", "No business is mapped to this number or agent.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"metadata": metadata})
}
