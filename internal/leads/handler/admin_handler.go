package handler

import (
	"net/http"

	"pulsecapture_backend/internal/leads/service"
	"pulsecapture_backend/internal/leads/transport"
	"pulsecapture_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the authenticated lead-management endpoints.
type AdminHandler struct {
	svc *service.Service
}

func NewAdminHandler(svc *service.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// RegisterRoutes mounts the admin lead routes.
func (h *AdminHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/leads", h.list)
	admin.GET("/leads/:id", h.get)
	admin.PUT("/leads/:id", h.update)
	admin.GET("/leads/:id/events", h.events)
	admin.GET("/leads/:id/outreach", h.latestOutreach)
	admin.POST("/leads/:id/outreach", h.triggerOutreach)
	admin.GET("/stats", h.stats)
}

func (h *AdminHandler) list(c *gin.Context) {
	var query transport.ListLeadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Validation error", []string{"invalid query parameters"})
		return
	}

	resp, err := h.svc.List(c.Request.Context(), query)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *AdminHandler) get(c *gin.Context) {
	resp, err := h.svc.Detail(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *AdminHandler) update(c *gin.Context) {
	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Validation error", []string{"invalid JSON body"})
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *AdminHandler) events(c *gin.Context) {
	resp, err := h.svc.Events(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"events": resp})
}

func (h *AdminHandler) latestOutreach(c *gin.Context) {
	resp, err := h.svc.LatestOutreach(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *AdminHandler) triggerOutreach(c *gin.Context) {
	result, err := h.svc.TriggerOutreach(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"success": true,
		"message": "Outreach triggered",
		"result":  result,
	})
}

func (h *AdminHandler) stats(c *gin.Context) {
	resp, err := h.svc.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
