package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"reservation-backend/config"
	"reservation-backend/controllers"
	"reservation-backend/metrics"
	"reservation-backend/queue"
	"reservation-backend/routes"
	"reservation-backend/services"
	"reservation-backend/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	lg, logCloser, err := utils.NewLogger(settings.Log)
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(lg)
	gin.SetMode(utils.EnvOrDefault("GIN_MODE", gin.ReleaseMode))

	metrics.Register()

	db, err := config.ConnectDatabase(settings.Database, lg)
	if err != nil {
		lg.Error("database connect failed", "error", err)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if settings.RateLimit.Enabled {
		rdb, err = config.NewRedisClient(rootCtx, settings.Redis)
		if err != nil {
			lg.Warn("redis unavailable, rate limiting disabled", "error", err)
		}
	}

	notifier, notifierCloser := buildNotifier(settings.Notifications, lg)
	svc := services.NewReservationService(db, settings.Reservations, notifier, lg)

	if settings.Notifications.ConsumerEnabled {
		mailer := utils.NewMailer(settings.Notifications.SMTP, lg)
		consumer := queue.NewConsumer(settings.Notifications.RabbitURL, mailer, lg)
		go func() {
			if err := consumer.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("reservation consumer stopped", "error", err)
			}
		}()
	}

	rc := controllers.NewReservationController(svc)
	router := routes.SetupRouter(rc, routes.RouterOptions{
		CORSOrigins: settings.CORSOrigins,
		RateLimit:   settings.RateLimit,
		Redis:       rdb,
		Logger:      lg,
	})

	addr := ":" + settings.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		lg.Info("server starting", "addr", addr, "notification_transport", settings.Notifications.Transport)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Error("listen failed", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	lg.Info("shutdown signal received, shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("server forced to shutdown", "error", err)
	}
	if err := svc.WaitNotifications(ctx); err != nil {
		lg.Warn("pending notifications abandoned", "error", err)
	}
	if err := notifierCloser.Close(); err != nil {
		lg.Warn("notifier close failed", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	lg.Info("server stopped gracefully")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// buildNotifier selects the publisher of reservation events.
func buildNotifier(s config.NotificationSettings, lg *slog.Logger) (services.Notifier, io.Closer) {
	switch s.Transport {
	case config.TransportRabbitMQ:
		return queue.NewRabbitPublisher(s.RabbitURL, lg), nopCloser{}
	case config.TransportKafka:
		p := queue.NewKafkaPublisher(s.KafkaBrokers, s.KafkaTopic, lg)
		return p, p
	default:
		return queue.NewLogNotifier(lg), nopCloser{}
	}
}
