// Package handler exposes the leads module over HTTP.
package handler

import (
	"net/http"

	"pulsecapture_backend/internal/leads/service"
	"pulsecapture_backend/internal/leads/transport"
	"pulsecapture_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the unauthenticated capture and status endpoints.
type PublicHandler struct {
	svc *service.Service
}

func NewPublicHandler(svc *service.Service) *PublicHandler {
	return &PublicHandler{svc: svc}
}

// RegisterRoutes mounts the public lead routes.
func (h *PublicHandler) RegisterRoutes(api *gin.RouterGroup, submitLimiter gin.HandlerFunc) {
	leads := api.Group("/leads")
	leads.POST("", submitLimiter, h.create)
	leads.GET("/:id", h.get)
}

func (h *PublicHandler) create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Validation error", []string{"invalid JSON body"})
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, resp)
}

func (h *PublicHandler) get(c *gin.Context) {
	resp, err := h.svc.GetPublic(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
