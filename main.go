package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"therapy-admin-server/internal/config"
	"therapy-admin-server/internal/logging"
	"therapy-admin-server/internal/metrics"
	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/routes"
	"therapy-admin-server/internal/storage"
)

func main() {
	// Load environment variables; a missing .env file is fine in containers
	envErr := godotenv.Load()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, os.Stdout)
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		logger.Error("error connecting to database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}

	// Initialize object storage
	store, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("error creating object storage client", "error", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = store.EnsureBucket(ctx, logging.Component(logger, "storage"))
	cancel()
	if err != nil {
		logger.Error("error preparing bucket", "bucket", cfg.MinIO.Bucket, "error", err)
		os.Exit(1)
	}

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes - routes.go builds the services and handlers
	routes.SetupRoutes(router, routes.Dependencies{
		DB:       db,
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Metrics:  m,
		Gatherer: registry,
	})

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("server running", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(serverAddr); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
