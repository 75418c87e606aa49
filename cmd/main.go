package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"product-import-service/internal/config"
	"product-import-service/internal/handlers"
	"product-import-service/internal/importer"
	"product-import-service/internal/middleware"
	"product-import-service/internal/queue"
	"product-import-service/internal/repository"
	"product-import-service/internal/webhooks"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize repositories
	productsRepo := repository.NewProductsRepository(db)
	jobsRepo := repository.NewImportJobsRepository(db)
	webhooksRepo := repository.NewWebhooksRepository(db)

	// Initialize webhook dispatcher and importer
	dispatcher := webhooks.NewDispatcher(webhooksRepo, logger)
	imp := importer.NewImporter(jobsRepo, productsRepo, dispatcher, logger)

	// Initialize the import queue
	var jobQueue queue.Queue
	switch cfg.QueueMode {
	case "inline":
		jobQueue = queue.NewInlineQueue(imp, logger)
		log.Println("Using inline import queue")
	default:
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to parse Redis URL:", err)
		}
		redisClient := redis.NewClient(redisOpts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING: Failed to connect to Redis: %v (imports will stall until it is reachable)", err)
		} else {
			log.Println("Redis connected successfully")
		}
		cancel()

		jobQueue = queue.NewRedisQueue(redisClient, imp, cfg.QueueWorkers, logger)
	}
	jobQueue.Start()

	// Initialize handlers
	handlers.SetDB(db)
	productsHandler := handlers.NewProductsHandler(productsRepo)
	uploadsHandler := handlers.NewUploadsHandler(jobsRepo, jobQueue, cfg.UploadDir, logger)
	jobsHandler := handlers.NewJobsHandler(jobsRepo)
	webhooksHandler := handlers.NewWebhooksHandler(webhooksRepo, dispatcher)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// Health check endpoints
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)

	// API routes
	v1 := router.Group("/api/v1")
	{
		uploads := v1.Group("/uploads")
		{
			uploads.POST("", uploadsHandler.UploadCSV)
			uploads.GET("/template", uploadsHandler.DownloadTemplate)
		}

		jobs := v1.Group("/jobs")
		{
			jobs.GET("", jobsHandler.ListJobs)
			jobs.GET("/:jobId", jobsHandler.GetJob)
		}

		products := v1.Group("/products")
		{
			products.GET("", productsHandler.ListProducts)
			products.GET("/:id", productsHandler.GetProduct)
			products.POST("", productsHandler.CreateProduct)
			products.PUT("/:id", productsHandler.UpdateProduct)
			products.DELETE("/:id", productsHandler.DeleteProduct)
			products.POST("/bulk-delete", productsHandler.BulkDeleteProducts)
		}

		webhookRoutes := v1.Group("/webhooks")
		{
			webhookRoutes.GET("", webhooksHandler.ListWebhooks)
			webhookRoutes.POST("", webhooksHandler.CreateWebhook)
			webhookRoutes.PUT("/:id", webhooksHandler.UpdateWebhook)
			webhookRoutes.DELETE("/:id", webhooksHandler.DeleteWebhook)
			webhookRoutes.POST("/:id/test", webhooksHandler.TestWebhook)
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Product import service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down product-import-service...")
	jobQueue.Stop()
	log.Println("Shutdown complete")
}
