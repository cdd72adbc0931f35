package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/stocknexus/backend/internal/api"
	"github.com/stocknexus/backend/internal/db"
	"github.com/stocknexus/backend/internal/logging"
	"github.com/stocknexus/backend/internal/models"
	"github.com/stocknexus/backend/internal/services"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Ensure all log output goes to stdout so the platform captures it
	log.SetOutput(os.Stdout)

	log.Printf("Stock Nexus backend starting (GIT_SHA=%s BUILD_TIME=%s)", os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	// Initialize database connection (non-fatal; allow process to start for /live)
	database, err := db.NewDatabase()
	if err != nil {
		log.Printf("[WARN] Database initialization failed at startup: %v", err)
	}
	if database != nil {
		defer database.Close()
	}

	// AWS config: use the instance role (no static keys in prod)
	awsRegion := os.Getenv("AWS_DEFAULT_REGION")
	if awsRegion == "" {
		awsRegion = "eu-central-1"
	}
	awsCfg, awsErr := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(awsRegion),
	)
	if awsErr != nil {
		log.Printf("[WARN] AWS config load failed: %v", awsErr)
	}

	// Initialize services
	var emailService *services.EmailService
	var smsService *services.SmsService
	if awsErr == nil {
		emailService = services.NewEmailService(awsCfg)
		smsService = services.NewSmsService(awsCfg)
	} else {
		log.Printf("[WARN] Email/SMS services not initialized due to AWS config error")
	}
	whatsappService := services.NewWhatsAppService()
	if !whatsappService.Enabled() {
		log.Println("[WARN] WhatsApp service not configured; whatsapp alerts disabled")
	}
	weatherService := services.NewWeatherService()
	if !weatherService.Enabled() {
		log.Println("[WARN] Weather service not configured; dashboard weather disabled")
	}

	// Initialize handlers (DB may be nil; /ready will report accordingly)
	handler := api.NewHandler(database, emailService, smsService, whatsappService, weatherService)

	// Background alert scheduler (stock digests, event reminders, token cleanup)
	if database != nil {
		alertIntervalMinutes := 15
		if raw := os.Getenv("ALERT_INTERVAL_MINUTES"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				alertIntervalMinutes = parsed
			}
		}
		alertService := services.NewAlertService(database, emailService, smsService, whatsappService, alertIntervalMinutes)
		alertService.Start()
		defer alertService.Stop()
	} else {
		log.Println("[WARN] Database unavailable at startup; alert scheduler disabled")
	}

	// Set up Gin router
	router := setupRouter(handler)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Set up graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

func setupRouter(handler *api.Handler) *gin.Engine {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Serve uploaded files for local development
	router.Static("/uploads", "./uploads")

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", handler.Health)
	router.GET("/health", handler.Health)

	// Authentication routes (public)
	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", handler.Signup)
		auth.POST("/login", handler.Login)
		auth.POST("/refresh", handler.Refresh)
		// Logout is unauthenticated on purpose: a client signing out
		// with an already-expired access token must still get a 200.
		auth.POST("/logout", handler.Logout)
	}

	// API routes
	v1 := router.Group("/api/v1")
	v1.Use(api.AuthMiddleware())
	{
		// Profile and branch context
		v1.GET("/profile", handler.GetProfile)
		v1.PUT("/profile", handler.UpdateProfile)
		v1.PUT("/profile/branch-context", handler.SetBranchContext)
		v1.POST("/profile/photo", handler.UploadProfilePhoto)

		// Org hierarchy
		v1.GET("/regions", handler.ListRegions)
		v1.GET("/regions/:id/districts", handler.ListDistricts)
		v1.GET("/districts/:id/branches", handler.ListDistrictBranches)
		v1.GET("/branches", handler.ListBranches)

		// Items
		v1.GET("/items", handler.GetItems)
		v1.GET("/items/:id", handler.GetItem)
		v1.POST("/items", handler.CreateItem)
		v1.PUT("/items/:id", handler.UpdateItem)
		v1.DELETE("/items/:id", handler.DeleteItem)
		v1.POST("/items/:id/image", handler.UploadItemImage)

		// Stock and movements
		v1.GET("/stock", handler.GetStock)
		v1.GET("/movements", handler.GetMovements)
		v1.POST("/stock/:itemId/movements", handler.RecordMovement)
		v1.GET("/stock/:itemId/movements", handler.GetItemMovements)

		// Calendar
		v1.GET("/calendar/events", handler.GetEvents)
		v1.POST("/calendar/events", handler.CreateEvent)
		v1.PUT("/calendar/events/:id", handler.UpdateEvent)
		v1.DELETE("/calendar/events/:id", handler.DeleteEvent)

		// Activity, analytics, reports, notifications, weather
		v1.GET("/activity", handler.GetActivity)
		v1.GET("/analytics/summary", handler.GetAnalyticsSummary)
		v1.GET("/analytics/trends", handler.GetAnalyticsTrends)
		v1.GET("/reports/stock-movements", handler.GetStockMovementReport)
		v1.GET("/notifications", handler.GetNotifications)
		v1.PUT("/notifications", handler.MarkAllNotificationsRead)
		v1.PUT("/notifications/:id/read", handler.MarkNotificationRead)
		v1.GET("/weather", handler.GetWeather)

		// Staff management (manager and above)
		staff := v1.Group("/staff")
		{
			staff.GET("", handler.ListStaff)
			managed := staff.Group("")
			managed.Use(api.RoleAtLeast(models.RoleManager))
			{
				managed.POST("", handler.CreateStaff)
				managed.PUT("/:id", handler.UpdateStaff)
				managed.DELETE("/:id", handler.DeleteStaff)
			}
		}

		// Branch settings (manager and above)
		settings := v1.Group("/branches/:id/settings")
		settings.Use(api.RoleAtLeast(models.RoleManager))
		{
			settings.GET("", handler.GetBranchSettings)
			settings.PUT("", handler.UpdateBranchSettings)
		}

		// Branch administration (admin only)
		admin := v1.Group("")
		admin.Use(api.AdminMiddleware())
		{
			admin.POST("/branches", handler.CreateBranch)
			admin.PUT("/branches/:id", handler.UpdateBranch)
			admin.DELETE("/branches/:id", handler.DeleteBranch)
		}
	}

	// Root endpoint for basic info
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "stocknexus-backend",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}
