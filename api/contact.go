// Package api is the serverless entry point: the platform invokes Handler for
// each request to /api/contact.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-dev/portfolio-api/config"
	"github.com/folio-dev/portfolio-api/internal/handlers"
	"github.com/folio-dev/portfolio-api/internal/middleware"
	"github.com/folio-dev/portfolio-api/internal/models"
	"github.com/folio-dev/portfolio-api/internal/notify"
	"github.com/folio-dev/portfolio-api/internal/services"
	"github.com/folio-dev/portfolio-api/pkg/httpclient"
	"github.com/folio-dev/portfolio-api/pkg/logger"
)

var (
	initOnce sync.Once
	engine   *gin.Engine
	initErr  error
)

// Handler serves one invocation. Configuration is read on the first call and
// reused for the life of the instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() {
		engine, initErr = build()
	})

	if initErr != nil {
		logger.Error("Contact function not initialized", zap.Error(initErr))
		respondInitFailure(w)
		return
	}

	engine.ServeHTTP(w, r)
}

// respondInitFailure answers with the same headers and body as a failed delivery.
func respondInitFailure(w http.ResponseWriter) {
	handlers.SetCORSHeaders(w.Header())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Failed to send message"})
}

func build() (*gin.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.IsDevelopment(),
		ServiceName: cfg.Observability.ServiceName,
	}); err != nil {
		return nil, err
	}

	return newEngine(cfg, nil), nil
}

// newEngine wires the configured channels into the contact engine. A nil
// sender mails over SMTP.
func newEngine(cfg *config.Config, sender notify.MailSender) *gin.Engine {
	httpClient := httpclient.NewStandardClient(2 * cfg.Notify.ChannelTimeout)
	dispatcher := notify.NewDispatcher(cfg.Notify.ChannelTimeout,
		notify.NewChannelsFromConfig(cfg.Notify, httpClient, sender)...)
	return contactEngine(cfg, services.NewContactService(dispatcher))
}

// contactEngine serves the contact handler alone. The handler sets its own CORS
// headers, so no CORS middleware is installed.
func contactEngine(cfg *config.Config, service services.ContactServiceInterface) *gin.Engine {
	contactHandler := handlers.NewContactHandler(service)

	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(middleware.RecoveryMiddleware())
	e.Use(middleware.ObservabilityMiddleware())
	e.Use(middleware.SecurityHeadersMiddleware())

	limit := middleware.BodySizeLimitMiddleware(cfg.Server.MaxBodyBytes)
	// Platforms differ in the path they forward; every path reaches the handler.
	e.Any("/api/contact", limit, contactHandler.HandleContact)
	e.NoRoute(limit, contactHandler.HandleContact)

	return e
}
