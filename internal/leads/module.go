// Package leads provides the lead capture and management bounded context.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"pulsecapture_backend/internal/events"
	apphttp "pulsecapture_backend/internal/http"
	"pulsecapture_backend/internal/leads/handler"
	"pulsecapture_backend/internal/leads/repository"
	"pulsecapture_backend/internal/leads/service"
	"pulsecapture_backend/internal/workflow"
	"pulsecapture_backend/platform/logger"
	"pulsecapture_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	public  *handler.PublicHandler
	admin   *handler.AdminHandler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, dispatcher *workflow.Dispatcher, client *workflow.Client, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, dispatcher, client, eventBus, val, log)

	return &Module{
		public:  handler.NewPublicHandler(svc),
		admin:   handler.NewAdminHandler(svc),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service for cross-module use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the public and admin lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.public.RegisterRoutes(ctx.API, ctx.PublicRateLimiter.RateLimit())
	m.admin.RegisterRoutes(ctx.Admin)
}
