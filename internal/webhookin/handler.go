package webhookin

import (
	"net/http"
	"time"

	"pulsecapture_backend/internal/leads/service"
	"pulsecapture_backend/internal/leads/transport"
	"pulsecapture_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler applies workflow engine callbacks to the lead store.
type Handler struct {
	leads *service.Service
}

func NewHandler(leads *service.Service) *Handler {
	return &Handler{leads: leads}
}

func (h *Handler) leadProcessing(c *gin.Context) {
	var req transport.ScoringResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.RecordCallback("lead_processing", false)
		httpkit.Error(c, http.StatusBadRequest, "Validation error", []string{"invalid JSON body"})
		return
	}

	lead, err := h.leads.ApplyScoring(c.Request.Context(), req)
	if err != nil {
		httpkit.RecordCallback("lead_processing", false)
		httpkit.HandleError(c, err)
		return
	}

	httpkit.RecordCallback("lead_processing", true)
	httpkit.OK(c, gin.H{
		"success": true,
		"message": "Scoring results applied",
		"lead":    lead,
	})
}

func (h *Handler) sendOutreach(c *gin.Context) {
	var req transport.OutreachResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.RecordCallback("send_outreach", false)
		httpkit.Error(c, http.StatusBadRequest, "Validation error", []string{"invalid JSON body"})
		return
	}

	lead, err := h.leads.ApplyOutreach(c.Request.Context(), req)
	if err != nil {
		httpkit.RecordCallback("send_outreach", false)
		httpkit.HandleError(c, err)
		return
	}

	httpkit.RecordCallback("send_outreach", true)
	httpkit.OK(c, gin.H{
		"success": true,
		"message": "Outreach recorded",
		"lead":    lead,
	})
}

func (h *Handler) test(c *gin.Context) {
	httpkit.OK(c, gin.H{
		"success":   true,
		"message":   "Webhook endpoint is working",
		"timestamp": time.Now().UTC(),
	})
}
