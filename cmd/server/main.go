package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sortyourtrip/hotel-crm-backend/internal/config"
	"github.com/sortyourtrip/hotel-crm-backend/internal/database"
	"github.com/sortyourtrip/hotel-crm-backend/internal/handlers"
	"github.com/sortyourtrip/hotel-crm-backend/internal/middleware"
	"github.com/sortyourtrip/hotel-crm-backend/internal/services"
	"github.com/sortyourtrip/hotel-crm-backend/internal/supplier"
	"github.com/sortyourtrip/hotel-crm-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting SortYourTrip Hotel CRM Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := services.NewAuditService(db)
	supplierClient := supplier.NewClient(&cfg.Supplier, logger)
	bookingRepository := database.NewBookingRepository(db)

	sessionStore := services.NewSessionStore(cfg.Session.TTL, logger)
	sessionStore.StartJanitor(cfg.Session.JanitorInterval)

	roomRateService := services.NewRoomRateService(logger)
	workflowService := services.NewBookingWorkflowService(
		sessionStore,
		roomRateService,
		supplierClient,
		bookingRepository,
		logger,
	)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(&cfg.Auth, jwtService, auditService, logger)
	workflowHandler := handlers.NewBookingWorkflowHandler(workflowService, auditService, logger)
	bookingsHandler := handlers.NewBookingsHandler(workflowService, auditService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db, sessionStore))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// Booking workflow routes (authenticated)
		booking := v1.Group("/booking")
		booking.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			booking.POST("/sessions", workflowHandler.CreateSession)
			booking.GET("/sessions/:session_id", workflowHandler.GetSession)
			booking.DELETE("/sessions/:session_id", workflowHandler.DiscardSession)
			booking.POST("/sessions/:session_id/select-rooms", workflowHandler.SelectRooms)
			booking.POST("/sessions/:session_id/price-decision", workflowHandler.RespondToPriceChange)
			booking.POST("/sessions/:session_id/guests", workflowHandler.SubmitGuests)
			booking.POST("/sessions/:session_id/book", workflowHandler.Book)
		}

		// Stored bookings routes (authenticated)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			bookings.GET("", bookingsHandler.ListBookings)
			bookings.GET("/:booking_id", bookingsHandler.GetBooking)
			bookings.POST("/:booking_id/cancel", bookingsHandler.CancelBooking)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop the session janitor
	sessionStore.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if opCtx, exists := middleware.GetOperatorContext(c); exists {
			fields["operator_id"] = opCtx.OperatorID
		}

		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("Request completed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("Request completed")
		default:
			entry.Info("Request completed")
		}
	}
}

// healthCheckHandler reports database and session store health
func healthCheckHandler(db database.DB, store *services.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "healthy"
		status := http.StatusOK
		if err := db.Ping(); err != nil {
			dbStatus = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":        dbStatus,
			"version":       version,
			"live_sessions": store.Count(),
			"timestamp":     time.Now().UTC(),
		})
	}
}
