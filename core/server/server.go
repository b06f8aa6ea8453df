package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family-calendar-api/core/cache"
	"family-calendar-api/core/config"
	"family-calendar-api/core/constants"
	"family-calendar-api/core/database"
	"family-calendar-api/core/logger"
	"family-calendar-api/core/middleware"
	"family-calendar-api/core/storage"
	"family-calendar-api/core/tasks"
	"family-calendar-api/modules/event"
	"family-calendar-api/modules/family"
	"family-calendar-api/modules/notification"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run wires up every dependency and blocks until the process is asked to
// shut down.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.LogLevel)

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
	if err != nil {
		return err
	}

	appCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache", "error", err)
		appCache = cache.NewNoop()
	}

	taskClient := tasks.NewClient(cfg.RedisAddr, cfg.RedisPassword)
	defer taskClient.Close()

	uploader := storage.NewS3Uploader(cfg)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())

	mw := middleware.New(cfg)

	v1 := e.Group("/api/v1")
	private := v1.Group("/private")

	event.Init(private, db, appCache, taskClient, uploader, mw)
	family.Init(private, db, mw)
	notifService := notification.Init(private, db, mw)

	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Background worker consuming scheduled reminder tasks
	if cfg.WorkerEnabled {
		srv, mux := tasks.NewServer(cfg.RedisAddr, cfg.RedisPassword, cfg.WorkerConcurrency)
		mux.HandleFunc(constants.TaskTypeEventReminder, notifService.HandleEventReminder)
		go func() {
			if err := srv.Run(mux); err != nil {
				logger.Error("Task worker stopped", "error", err)
			}
		}()
		defer srv.Shutdown()
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
