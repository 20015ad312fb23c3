package settings

import (
	apphttp "pulsecapture_backend/internal/http"
	"pulsecapture_backend/platform/validator"
)

// Module is the settings bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule wires the settings endpoints. The service must be loaded by the
// composition root before the server starts.
func NewModule(svc *Service, val *validator.Validator, slack SlackTester, mail EmailSender, smtpEnabled bool, engine EngineTester) *Module {
	return &Module{
		handler: NewHandler(svc, val, slack, mail, smtpEnabled, engine),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "settings"
}

// Service returns the settings service for cross-module use.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the settings routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}
