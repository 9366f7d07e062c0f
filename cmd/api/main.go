// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/budgetcast/internal/api"
	"github.com/andresuchdata/budgetcast/internal/cache"
	"github.com/andresuchdata/budgetcast/internal/config"
	"github.com/andresuchdata/budgetcast/internal/repository/postgres"
	"github.com/andresuchdata/budgetcast/internal/service"
	"github.com/andresuchdata/budgetcast/internal/storage"
	"github.com/andresuchdata/budgetcast/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize cache
	budgetCache, err := cache.NewBudgetCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, running without it")
		budgetCache = cache.NewNoopBudgetCache()
	}

	// Initialize snapshot archive
	var archive storage.ObjectStorage
	if cfg.Archive.Enabled {
		client, err := storage.NewS3Client(cfg.Archive)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Archive unavailable, snapshots disabled")
		} else {
			archive = client
		}
	}

	// Initialize services
	salesRepo := postgres.NewSalesRepository(db)
	budgetService := service.NewBudgetService(salesRepo, budgetCache, archive, cfg.Archive.Prefix)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{BudgetService: budgetService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
