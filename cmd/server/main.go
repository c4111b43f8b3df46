package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kiloutout/service-booking/internal/application"
	"github.com/kiloutout/service-booking/internal/auth"
	"github.com/kiloutout/service-booking/internal/calendar"
	"github.com/kiloutout/service-booking/internal/config"
	"github.com/kiloutout/service-booking/internal/database"
	bookingDomain "github.com/kiloutout/service-booking/internal/domain/booking"
	bookingEvents "github.com/kiloutout/service-booking/internal/events"
	"github.com/kiloutout/service-booking/internal/geo"
	"github.com/kiloutout/service-booking/internal/handler"
	"github.com/kiloutout/service-booking/internal/health"
	"github.com/kiloutout/service-booking/internal/kafka"
	"github.com/kiloutout/service-booking/internal/logger"
	"github.com/kiloutout/service-booking/internal/mailer"
	"github.com/kiloutout/service-booking/internal/middleware"
	"github.com/kiloutout/service-booking/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB.DSN(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.ServiceModel{},
			&repository.NotificationModel{},
			&repository.SettingsModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DB.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 15*time.Minute)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	serviceRepo := repository.NewGormServiceRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	settingsRepo := repository.NewGormSettingsRepository(db)

	// Initialize external collaborators
	var geocoder geo.Geocoder
	if cfg.GeocoderBaseURL != "" {
		geocoder = geo.NewNominatimGeocoderWithOptions(cfg.GeocoderUserAgent, cfg.GeocoderBaseURL, nil)
	} else {
		geocoder = geo.NewNominatimGeocoder(cfg.GeocoderUserAgent)
	}
	calendarClient := calendar.NewGoogleClient(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.Google.RedirectURL,
	)

	// Initialize application services
	policy := bookingDomain.TransitionPolicy{AllowCompletionFromPending: cfg.AllowPendingCompletion}
	bookingService := application.NewBookingService(
		bookingRepo,
		serviceRepo,
		settingsRepo,
		notificationRepo,
		geocoder,
		calendarClient,
		kafkaProducer,
		policy,
		log,
	)
	catalogService := application.NewCatalogService(serviceRepo, log)
	notificationService := application.NewNotificationService(notificationRepo)
	settingsService := application.NewSettingsService(settingsRepo, log)

	// Initialize and start the email consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	smtpMailer := mailer.NewSMTPMailer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
		log,
	)
	groupID := cfg.Kafka.GroupPrefix + "booking-emails"
	emailConsumer := bookingEvents.NewEmailConsumer(cfg.Kafka.Brokers, groupID, smtpMailer, log)
	defer func() { _ = emailConsumer.Close() }()

	go func() {
		log.Info("starting email consumer")
		if err := emailConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("email consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	adminHandler := handler.NewAdminHandler(bookingService, settingsService, calendarClient)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	catalogHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	notificationHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
