package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"taskorganizer/internal/config"
	"taskorganizer/internal/handlers"
	"taskorganizer/internal/pdf"
	"taskorganizer/internal/reminders"
	"taskorganizer/internal/repositories"
	"taskorganizer/internal/routes"
	"taskorganizer/internal/scheduler"
	"taskorganizer/internal/services"
)

func Run() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	subscriptionRepo := repositories.NewPushSubscriptionRepository(db)

	// === Services ===
	authService := services.NewAuthService(
		[]byte(cfg.Auth.JWTSecret),
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLDays)*24*time.Hour,
	)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	webpushService := services.NewWebPushService(
		cfg.WebPush.VAPIDPublicKey,
		cfg.WebPush.VAPIDPrivateKey,
		cfg.WebPush.Subscriber,
	)

	// === Reminder pipeline ===
	sched := scheduler.New()
	dispatcher := reminders.NewDispatcher(
		taskRepo, userRepo, notificationRepo, subscriptionRepo,
		emailService, webpushService,
	)
	coordinator := reminders.NewCoordinator(sched, taskRepo, dispatcher.Dispatch)

	taskService := services.NewTaskService(taskRepo, coordinator)
	analyticsService := services.NewAnalyticsService(taskRepo)
	suggestService := services.NewSuggestService(taskRepo)
	reportService := services.NewReportService(taskRepo, userRepo, pdf.NewReportGenerator())

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userRepo, authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	suggestHandler := handlers.NewSuggestHandler(suggestService)
	notificationHandler := handlers.NewNotificationHandler(subscriptionRepo, notificationRepo, webpushService)
	reportHandler := handlers.NewReportHandler(reportService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The scheduler loop must be running, and the schedule rebuilt, before the
	// API starts taking mutations.
	go sched.Run(ctx)
	if err := coordinator.RebuildAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to rebuild reminder jobs")
	}

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.Frontend.Origin))

	routes.SetupRoutes(
		router,
		[]byte(cfg.Auth.JWTSecret),
		authHandler,
		taskHandler,
		analyticsHandler,
		suggestHandler,
		notificationHandler,
		reportHandler,
	)

	// === Run ===
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	sched.Stop()
}

func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
