package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"complitracker/internal/config"
	"complitracker/internal/handler"
	"complitracker/internal/middleware"
	"complitracker/internal/service"
)

// Handlers bundles the handlers the router wires up.
type Handlers struct {
	Health    *handler.HealthHandler
	Webhook   *handler.WebhookHandler
	Signature *handler.SignatureHandler
}

// New builds the gin engine with all routes and middleware.
func New(cfg *config.Config, validator service.TokenValidator, h Handlers) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Provider callbacks authenticate with HMAC signatures, not bearer tokens.
	v1.POST("/webhooks/signature/:provider", h.Webhook.Receive)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(validator))
	{
		authed.POST("/signature-requests", h.Signature.Create)
		authed.GET("/signature-requests/pending", h.Signature.ListPending)
		authed.GET("/signature-requests/:id", h.Signature.GetByID)
		authed.POST("/signature-requests/:id/cancel", h.Signature.Cancel)
		authed.GET("/signature-requests/:id/audit", h.Signature.ListAudit)
		authed.GET("/signature-requests/:id/audit/export", h.Signature.ExportAudit)
	}

	return r
}
