package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/config"
	"catalog-service/internal/events"
	"catalog-service/internal/handlers"
	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"catalog-service/internal/services"
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

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.Product{},
		&models.StockHistory{},
		&models.AdminUser{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize logrus logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis cache (optional)
	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		log.Printf("Warning: %v, continuing without cache", err)
		redisClient = nil
	}

	// Initialize NATS event publisher (optional - graceful degradation if NATS unavailable)
	var eventPublisher *events.StockEventPublisher
	if cfg.NATSURL != "" {
		eventPublisher, err = events.NewStockEventPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("Warning: Failed to initialize NATS event publisher: %v", err)
			log.Println("Continuing without event publishing...")
			eventPublisher = nil
		} else {
			log.Println("✓ Connected to NATS JetStream for event publishing")
			defer eventPublisher.Close()
		}
	} else {
		log.Println("NATS_URL not configured, event publishing disabled")
	}

	// Initialize repositories
	productRepo := repository.NewGormProductRepository(db, redisClient)
	historyRepo := repository.NewGormHistoryRepository(db)
	userRepo := repository.NewGormUserRepository(db)

	// Initialize services
	auditor := services.NewStockAuditor(historyRepo, eventPublisher, logger)
	importService := services.NewImportService(productRepo, auditor, logger)
	productService := services.NewProductService(productRepo, historyRepo, auditor, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, cfg, logger)
	productHandler := handlers.NewProductHandler(productService, cfg)
	importHandler := handlers.NewImportHandler(importService, productService)
	healthHandler := handlers.NewHealthHandler(productRepo, eventPublisher)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// CORS with credentials so the browser sends the auth cookie
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/health/extended", healthHandler.ExtendedHealthCheck)

	// Public auth routes
	users := router.Group("/api/users")
	{
		users.POST("/register", authHandler.Register)
		users.POST("/login", authHandler.Login)
		users.POST("/signout", authHandler.Signout)
	}

	// Protected catalog routes
	products := router.Group("/api/products")
	products.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/search", productHandler.ListProducts)
		products.POST("", productHandler.CreateProduct)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/export", importHandler.ExportProducts)
		products.POST("/import", importHandler.ImportProducts)
		products.PUT("/update-multiple", productHandler.BulkUpdateProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.PUT("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
		products.GET("/:id/history", productHandler.GetProductHistory)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down catalog-service...")
	log.Println("Catalog service stopped")
}
