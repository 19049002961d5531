package main

import (
	"fmt"
	"log"
	"net/http"

	"partnerhub/internal/api"
	"partnerhub/internal/api/handlers"
	"partnerhub/internal/api/middleware"
	"partnerhub/internal/engine/activation"
	"partnerhub/internal/engine/licenses"
	"partnerhub/internal/engine/notify"
	"partnerhub/internal/pkg/logger"
	"partnerhub/internal/platform/audit"
	"partnerhub/internal/platform/auth"
	"partnerhub/internal/platform/config"
	"partnerhub/internal/platform/database"
	"partnerhub/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	dbWrapper := database.NewWrapper(db)

	// Repositories
	adminRepo := repositories.NewAdminRepository(db)
	partnerRepo := repositories.NewPartnerRepository(db)
	teamRepo := repositories.NewTeamRepository(db)
	invitationRepo := repositories.NewInvitationRepository(db)
	licenseRepo := repositories.NewLicenseRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditor := audit.NewLogger(db)

	var sender notify.Sender
	sender, err = notify.NewSESSender(cfg.Email)
	if err != nil {
		log.Printf("Email sending disabled: %v", err)
		sender = notify.DisabledSender{}
	}
	dispatcher := notify.NewDispatcher(sender, cfg.App, cfg.Branding)

	activationClient := activation.NewClient(cfg.Activation)
	licenseSvc := licenses.NewService(licenseRepo, dispatcher, activationClient, auditor)

	// Handlers
	authHandler := handlers.NewAuthHandler(adminRepo, partnerRepo, tokenSvc)
	licenseHandler := handlers.NewLicenseHandler(licenseSvc, licenseRepo, dispatcher, auditor)
	teamHandler := handlers.NewTeamHandler(teamRepo, adminRepo, licenseRepo, auditor)
	invitationHandler := handlers.NewInvitationHandler(invitationRepo, adminRepo, dispatcher)
	partnerHandler := handlers.NewPartnerHandler(partnerRepo, adminRepo)
	activityHandler := handlers.NewActivityHandler(auditor)
	healthHandler := handlers.NewHealthHandler(dbWrapper)
	metricsHandler := handlers.NewMetricsHandler()

	// Middleware
	middleware.ConfigureRateLimits(cfg.RateLimit)
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	identityMiddleware := middleware.NewIdentityMiddleware(adminRepo, partnerRepo, teamRepo)

	// Router
	deps := &api.Dependencies{
		AuthHandler:        authHandler,
		LicenseHandler:     licenseHandler,
		TeamHandler:        teamHandler,
		InvitationHandler:  invitationHandler,
		PartnerHandler:     partnerHandler,
		ActivityHandler:    activityHandler,
		HealthHandler:      healthHandler,
		MetricsHandler:     metricsHandler,
		AuthMiddleware:     authMiddleware,
		IdentityMiddleware: identityMiddleware,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
