// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"pulsecapture_backend/internal/events"
	"pulsecapture_backend/platform/config"
	"pulsecapture_backend/platform/httpkit"
	"pulsecapture_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (e.g., DB ping).
	Health HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// AuthMiddleware authenticates requests and loads the current user.
	AuthMiddleware gin.HandlerFunc
	// AdminMiddleware restricts routes to users with the admin role.
	AdminMiddleware gin.HandlerFunc
	// AuthRateLimiter throttles login attempts per IP.
	AuthRateLimiter *httpkit.AuthRateLimiter
	// PublicRateLimiter throttles the public lead submission endpoint.
	PublicRateLimiter *httpkit.IPRateLimiter
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
