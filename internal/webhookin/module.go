package webhookin

import (
	apphttp "pulsecapture_backend/internal/http"
	"pulsecapture_backend/internal/leads/service"
	"pulsecapture_backend/platform/config"
	"pulsecapture_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module is the inbound webhook bounded context implementing http.Module.
type Module struct {
	handler *Handler
	verify  gin.HandlerFunc
	deduper *Deduper
}

// NewModule wires the callback endpoints with signature verification and
// delivery deduplication.
func NewModule(leads *service.Service, cfg config.WebhookAuthConfig, deduper *Deduper, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(leads),
		verify:  SignatureVerifier(cfg, log),
		deduper: deduper,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhookin"
}

// RegisterRoutes mounts the callback routes. The test endpoint stays open so
// workflow authors can probe connectivity without signing.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	webhooks := ctx.API.Group("/webhooks")
	webhooks.GET("/test", m.handler.test)

	callbacks := webhooks.Group("")
	callbacks.Use(m.verify, m.deduper.Middleware())
	callbacks.POST("/lead-processing", m.handler.leadProcessing)
	callbacks.POST("/send-outreach", m.handler.sendOutreach)
}
