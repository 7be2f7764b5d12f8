package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"voiceagent/internal/config"
	"voiceagent/internal/database"
	"voiceagent/internal/integrations/calendar"
	"voiceagent/internal/middleware"
	"voiceagent/internal/modules/admin"
	"voiceagent/internal/modules/availability"
	"voiceagent/internal/modules/booking"
	"voiceagent/internal/modules/callrecord"
	"voiceagent/internal/modules/tenant"
	"voiceagent/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	businessRepo := repository.NewBusinessRepository(db)
	bookingStore := repository.NewBookingStore(db)
	callStore := repository.NewCallStore(db)
	credentialRepo := repository.NewOAuthCredentialRepository(db)

	resolver := tenant.NewResolver(businessRepo, cfg.DemoFallback)

	var calendarSync booking.CalendarSync
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		calendarSync = calendar.NewGoogleClient(credentialRepo, cfg.GoogleClientID, cfg.GoogleClientSecret)
	}

	availabilityService := availability.NewService(bookingStore)
	availabilityHandler := availability.NewHandler(availabilityService, resolver)

	bookingService := booking.NewService(bookingStore, calendarSync)
	bookingHandler := booking.NewHandler(bookingService, resolver)

	callService := callrecord.NewService(callStore, resolver, businessRepo)
	callHandler := callrecord.NewHandler(callService)

	adminService := admin.NewService(businessRepo)
	adminHandler := admin.NewHandler(adminService)

	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		tools := v1.Group("/")
		tools.Use(middleware.APIKeyAuth("X-Api-Key", cfg.ToolAPIKey))
		{
			availabilityHandler.RegisterRoutes(tools)
			bookingHandler.RegisterRoutes(tools)
		}

		webhooks := v1.Group("/")
		webhooks.Use(middleware.APIKeyAuth("X-Webhook-Key", cfg.WebhookKey))
		{
			callHandler.RegisterRoutes(webhooks)
		}

		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.APIKeyAuth("X-Admin-Key", cfg.AdminAPIKey))
		{
			adminHandler.RegisterRoutes(adminGroup)
		}
	}

	log.Printf("listening addr=%s env=%s", cfg.ListenAddr, cfg.AppEnv)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
