// Package server assembles the HTTP router for the standalone process.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/folio-dev/portfolio-api/config"
	"github.com/folio-dev/portfolio-api/internal/handlers"
	"github.com/folio-dev/portfolio-api/internal/middleware"
	"github.com/folio-dev/portfolio-api/internal/services"
)

// Deps are the services the routes are served from
type Deps struct {
	ContactService services.ContactServiceInterface
}

// NewRouter builds the gin engine: panic recovery, tracing, request
// observability, a permissive cross-origin policy and the API routes.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(cors.New(corsConfig()))

	contactHandler := handlers.NewContactHandler(deps.ContactService)
	healthHandler := handlers.NewHealthHandler()

	api := router.Group("/api")
	api.Any("/contact", middleware.BodySizeLimitMiddleware(cfg.Server.MaxBodyBytes), contactHandler.HandleContact)
	api.GET("/healthcheck", healthHandler.Healthcheck)
	api.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// corsConfig allows any origin. Preflights are answered here with the same
// 200 the contact handler would give.
func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "OPTIONS", "PATCH", "DELETE", "POST", "PUT"},
		AllowHeaders:              []string{"Content-Type"},
		AllowCredentials:          true,
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
}
