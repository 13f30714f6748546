package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ginprometheus "github.com/zsais/go-gin-prometheus"

	"github.com/Karm-Dave/StoryGen/internal/config"
	"github.com/Karm-Dave/StoryGen/internal/handler"
	"github.com/Karm-Dave/StoryGen/internal/middleware"
	"github.com/Karm-Dave/StoryGen/internal/service"
	"github.com/Karm-Dave/StoryGen/internal/store"
	"github.com/Karm-Dave/StoryGen/pkg/ai"
	"github.com/Karm-Dave/StoryGen/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Configuration loaded",
		zap.String("env", cfg.AppEnv),
		zap.String("port", cfg.Port),
		zap.String("storiesDir", cfg.StoriesDir),
		zap.String("uploadsDir", cfg.UploadsDir),
		zap.String("aiClientType", cfg.AI.ClientType),
		zap.String("aiModel", cfg.AI.Model),
	)

	// --- Dependency Injection ---
	storyStore, err := store.NewFileStore(cfg.StoriesDir, log)
	if err != nil {
		zap.L().Fatal("Failed to initialize story store", zap.Error(err))
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		zap.L().Fatal("Failed to create uploads directory", zap.Error(err))
	}

	aiClient, err := ai.New(ai.Config{
		ClientType: cfg.AI.ClientType,
		APIKey:     cfg.AI.APIKey,
		BaseURL:    cfg.AI.BaseURL,
		Model:      cfg.AI.Model,
		Timeout:    cfg.AI.Timeout(),
		MaxTokens:  cfg.AI.MaxTokens,
	}, log)
	if err != nil {
		zap.L().Fatal("Failed to initialize AI client", zap.Error(err))
	}

	storySvc := service.NewStoryService(storyStore, aiClient, cfg.UploadsDir, cfg.Upload, log)
	storyHandler := handler.NewStoryHandler(storySvc, log)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.AppEnv == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	// Configure CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.CORSAllowedOrigin}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Health Check Endpoint
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// Статика: загруженные изображения и единицы хранения историй
	cacheControl := func(c *gin.Context) {
		c.Header("Cache-Control", "public, max-age=86400")
	}
	router.Group("/uploads", cacheControl).Static("/", cfg.UploadsDir)
	router.Group("/stories", cacheControl).Static("/", cfg.StoriesDir)

	// Register Application Routes
	storyHandler.RegisterRoutes(router)

	// Prometheus Middleware применяем после регистрации роутов
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	// --- Start HTTP Server ---
	// Генерация истории может занимать минуты, поэтому таймауты чтения и
	// записи не выставляем: запрос ограничен только таймаутом AI клиента.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		IdleTimeout: 60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.Port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exited")
}
