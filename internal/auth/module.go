package auth

import (
	"pulsecapture_backend/internal/auth/handler"
	"pulsecapture_backend/internal/auth/repository"
	"pulsecapture_backend/internal/auth/service"
	apphttp "pulsecapture_backend/internal/http"
	"pulsecapture_backend/platform/config"
	"pulsecapture_backend/platform/logger"
	"pulsecapture_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	jwtCfg  config.JWTConfig
	log     *logger.Logger
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, jwtCfg config.JWTConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, jwtCfg, val, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
		jwtCfg:  jwtCfg,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for composition-root use (bootstrap admin).
func (m *Module) Service() *service.Service {
	return m.service
}

// AuthMiddleware returns the token-validating middleware backed by this
// module's user store.
func (m *Module) AuthMiddleware() gin.HandlerFunc {
	return Middleware(m.jwtCfg, m.service, m.log)
}

// RegisterRoutes mounts login, the current-user endpoint and user management.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.API, ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterProtectedRoutes(ctx.Protected)
	m.handler.RegisterAdminRoutes(ctx.Admin)
}
