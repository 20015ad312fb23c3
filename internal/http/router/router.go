// Package router assembles the Gin engine from the application modules.
package router

import (
	"net/http"

	apphttp "pulsecapture_backend/internal/http"
	"pulsecapture_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New builds the HTTP engine, mounts global middleware and registers every
// module's routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(httpkit.Metrics())
	engine.Use(corsMiddleware(app))

	engine.GET("/api/health", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "up"
		if err := app.Health.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "down"
		}
		c.JSON(status, gin.H{"status": "ok", "database": dbStatus})
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	protected := engine.Group("/api")
	protected.Use(app.AuthMiddleware)
	admin := engine.Group("/api/admin")
	admin.Use(app.AuthMiddleware, app.AdminMiddleware)

	routerCtx := &apphttp.RouterContext{
		Engine:            engine,
		API:               api,
		Protected:         protected,
		Admin:             admin,
		Config:            app.Config,
		AuthMiddleware:    app.AuthMiddleware,
		AuthRateLimiter:   app.AuthRateLimiter,
		PublicRateLimiter: app.PublicRateLimiter,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Info("module routes registered", "module", module.Name())
	}

	return engine
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Webhook-Signature", "X-Delivery-ID"},
		AllowCredentials: app.Config.GetCORSAllowCreds(),
	}

	if app.Config.GetCORSAllowAll() {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = app.Config.GetCORSOrigins()
	}

	return cors.New(cfg)
}
