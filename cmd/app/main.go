package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "rowmatch/docs"
	"rowmatch/internal/activity"
	"rowmatch/internal/auth"
	"rowmatch/internal/config"
	"rowmatch/internal/db"
	"rowmatch/internal/email"
	"rowmatch/internal/logger"
	"rowmatch/internal/notification"
	"rowmatch/internal/server"
	"rowmatch/internal/user"

	"github.com/redis/go-redis/v9"
)

// @title Rowmatch API
// @version 1.0
// @description Matching rowers to trainings and competitions.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Info("Starting rowmatch")

	if cfg.InsecureSecret() {
		logger.Warn("JWT_SECRET is not set, using the development default")
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	emailService := email.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), email.Options{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
	})
	defer emailService.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go emailService.Start(ctx)
	go watchQueue(ctx, emailService)

	var dispatcher notification.Dispatcher = notification.Discard{}
	if cfg.NotificationURL != "" {
		dispatcher = notification.NewHTTPDispatcher(cfg.NotificationURL, cfg.NotificationTimeout,
			auth.ServiceTokenSource("activity", cfg.JWTSecret))
		logger.Info("Notification dispatch enabled", "url", cfg.NotificationURL)
	} else {
		logger.Warn("NOTIFICATION_URL is empty, status notifications are dropped")
	}

	userRepo := user.NewRepository(database)
	deps := server.Deps{
		Users: user.NewService(userRepo, cfg.JWTSecret),
		Activities: activity.NewService(
			activity.NewUnitOfWork(database),
			userRepo,
			dispatcher,
			activity.NewWorkflow(cfg.CoxCertificates),
		),
		Notifications: notification.NewService(userRepo, emailService),
		Queue:         emailService,
	}

	srv := server.New(cfg, deps)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		logger.WithError(err).Error("Server error")
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

// watchQueue refreshes the email queue gauge.
func watchQueue(ctx context.Context, s *email.Service) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.QueueLength(ctx)
		}
	}
}
