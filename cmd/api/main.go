package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pluur/backend/internal/config"
	"github.com/pluur/backend/internal/handlers"
	"github.com/pluur/backend/internal/middleware"
	"github.com/pluur/backend/internal/models"
	"github.com/pluur/backend/internal/services"
	"github.com/pluur/backend/pkg/jwks"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.New()

	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	validator, err := jwks.NewValidator(cfg.JWKSUrl, cfg.JWKSRefreshRate)
	if err != nil {
		log.Fatalf("Failed to initialize token validator: %v", err)
	}

	// Initialize services
	storageService := services.NewStorageService(cfg)
	s3Service, err := services.NewS3Service(cfg)
	if err != nil {
		log.Fatalf("Failed to init S3 service: %v", err)
	}
	emailService := services.NewEmailService(cfg)
	qrService := services.NewQRService(cfg)
	uploadService := services.NewUploadService(db, cfg, s3Service, storageService)
	albumService := services.NewAlbumService(db, cfg, s3Service, storageService)
	userService := services.NewUserService(db)
	reportService := services.NewReportService(db, emailService)
	waitlistService := services.NewWaitlistService(db)

	// Retention sweep: expired albums lose their blobs and rows.
	if cfg.RetentionSweepEnabled {
		go func() {
			for {
				deleted, err := albumService.CleanupExpired(context.Background())
				if err != nil {
					log.Printf("Retention sweep error: %v", err)
				} else if deleted > 0 {
					log.Printf("Retention sweep: deleted %d expired albums", deleted)
				}
				time.Sleep(cfg.RetentionSweepEvery)
			}
		}()
	}

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	// Initialize handlers
	albumHandler := handlers.NewAlbumHandler(albumService, uploadService, userService, qrService)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	imageHandler := handlers.NewImageHandler(cfg, albumService, s3Service, storageService)
	userHandler := handlers.NewUserHandler(albumService, userService)
	reportHandler := handlers.NewReportHandler(reportService)
	waitlistHandler := handlers.NewWaitlistHandler(waitlistService)

	// Health check outside API group (no /api/v1 prefix)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Original upload endpoints kept at their unversioned paths
	legacy := router.Group("/api")
	legacy.Use(middleware.UploadRateLimit(redisClient, cfg))
	{
		legacy.POST("/upload", middleware.Auth(validator), uploadHandler.Upload)
		legacy.POST("/upload-to-album", middleware.OptionalAuth(validator), uploadHandler.UploadToAlbum)
	}

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Album routes; viewing is open to anyone with the join code
		albums := api.Group("/albums")
		{
			albums.GET("/:id", middleware.OptionalAuth(validator), albumHandler.GetAlbum)
			albums.GET("/:id/qr.png", albumHandler.QRCode)
			albums.GET("/:id/qr.pdf", albumHandler.QRCodePDF)
			albums.GET("/:id/images/:imageId/file", imageHandler.ServeImage)
			albums.GET("/:id/images/:imageId/download", imageHandler.DownloadURL)

			albums.POST("", middleware.Auth(validator), middleware.UploadRateLimit(redisClient, cfg), albumHandler.CreateAlbum)
			albums.POST("/:id/images", middleware.OptionalAuth(validator), middleware.UploadRateLimit(redisClient, cfg), albumHandler.AddImages)
			albums.PUT("/:id", middleware.Auth(validator), albumHandler.UpdateAlbum)
			albums.PUT("/:id/images", middleware.Auth(validator), albumHandler.UpdateAlbumImages)
			albums.DELETE("/:id", middleware.Auth(validator), albumHandler.DeleteAlbum)

			albums.POST("/:id/reactions", middleware.Auth(validator), albumHandler.React)
			albums.POST("/:id/join", middleware.Auth(validator), albumHandler.Join)
			albums.DELETE("/:id/join", middleware.Auth(validator), albumHandler.Leave)
		}

		// User routes
		user := api.Group("/user")
		user.Use(middleware.Auth(validator))
		{
			user.GET("/albums", userHandler.GetMyAlbums)
			user.GET("/joined-albums", userHandler.GetJoinedAlbums)
		}

		// Moderation and signup
		api.POST("/reports", reportHandler.CreateReport)
		api.GET("/reports", middleware.Auth(validator), reportHandler.ListReports)
		api.PUT("/reports/:id/status", middleware.Auth(validator), reportHandler.UpdateReportStatus)
		api.POST("/waitlist", waitlistHandler.Submit)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  120 * time.Second, // 2 min for large image batches
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
