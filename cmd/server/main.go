package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "complitracker/docs"
	"complitracker/internal/config"
	"complitracker/internal/handler"
	"complitracker/internal/notify/noop"
	"complitracker/internal/notify/ses"
	"complitracker/internal/port"
	"complitracker/internal/repository/postgres"
	"complitracker/internal/router"
	"complitracker/internal/service"
	"complitracker/internal/signing"
	_ "complitracker/internal/signing/adobesign"
	_ "complitracker/internal/signing/docusign"
	s3storage "complitracker/internal/storage/s3"
)

// @title           CompliTracker Signature API
// @version         1.0
// @description     E-signature workflow coordination across DocuSign and Adobe Sign.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: loading config: %v", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		log.Fatalf("main: connecting to database: %v", err)
	}
	defer db.Close()

	reqRepo := postgres.NewSignatureRequestRepo(db)
	auditRepo := postgres.NewSignatureAuditRepo(db)
	docRepo := postgres.NewDocumentRepo(db)

	registry, err := signing.NewRegistry(&cfg.Signing)
	if err != nil {
		log.Fatalf("main: building provider registry: %v", err)
	}

	urlSigner, err := s3storage.NewURLSigner(&cfg.S3)
	if err != nil {
		log.Fatalf("main: building s3 url signer: %v", err)
	}

	var notifier port.Notifier
	switch cfg.Notify.Provider {
	case "ses":
		notifier, err = ses.NewSESNotifier(cfg.Notify.Region, cfg.Notify.FromAddress, cfg.Notify.FromName)
		if err != nil {
			log.Fatalf("main: building ses notifier: %v", err)
		}
	default:
		notifier = noop.NewNoopNotifier()
	}

	signatures := service.NewSignatureService(
		reqRepo, auditRepo, docRepo, registry, notifier, urlSigner, cfg.Signing.RequestTTL,
	)
	exports := service.NewAuditExportService(reqRepo, auditRepo)
	validator := service.NewTokenValidator(cfg.JWT)

	engine := router.New(cfg, validator, router.Handlers{
		Health:    handler.NewHealthHandler(db),
		Webhook:   handler.NewWebhookHandler(signatures, registry),
		Signature: handler.NewSignatureHandler(signatures, exports),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("main: listening on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main: server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("main: shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("main: forced shutdown: %v", err)
	}
	log.Println("main: stopped")
}
