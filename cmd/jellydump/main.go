package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Joyersch/jellydump/internal/client/apprise"
	"github.com/Joyersch/jellydump/internal/config"
	"github.com/Joyersch/jellydump/internal/downloader"
	"github.com/Joyersch/jellydump/internal/handler"
	"github.com/Joyersch/jellydump/internal/registry"
	"github.com/Joyersch/jellydump/internal/runner"
	"github.com/Joyersch/jellydump/internal/version"
	"github.com/Joyersch/jellydump/pkg/logger"
)

func main() {
	// Initialize logger
	isDev := os.Getenv("ENV") != "production"
	logger.Init(isDev)
	defer logger.Sync()

	version.PrintBanner(nil)

	// Optional .env for local overrides (BASE_DATA_PATH and friends)
	_ = godotenv.Load()

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	logger.Infof("📁 Loading config: %s", configPath)
	cfgMgr, err := config.NewManager(configPath)
	if err != nil {
		logger.Fatalf("❌ Config error: %v", err)
	}
	defer cfgMgr.Stop()
	cfg := cfgMgr.Get()

	// Ensure the library root exists; show/season folders are created per job
	if err := os.MkdirAll(cfg.Library.BasePath, 0755); err != nil {
		logger.Fatalf("❌ Library setup error: %v", err)
	}

	// Make sure a yt-dlp binary is available before accepting jobs
	logger.Info("🔧 Checking yt-dlp binary...")
	if err := downloader.Install(context.Background()); err != nil {
		logger.Fatalf("❌ yt-dlp setup error: %v", err)
	}

	// Initialize Apprise client
	var appriseClient *apprise.Client
	if cfg.Apprise.Enabled {
		appriseClient = apprise.NewClient(cfg.Apprise)
		logger.Infof("🔔 Notifications: enabled (key=%s)", cfg.Apprise.Key)
	} else {
		logger.Info("🔔 Notifications: disabled")
	}

	// Wire registry, downloader and runner
	reg := registry.New()
	dl := downloader.NewYTDLP(cfg.Download)
	run := runner.New(cfg, reg, dl, appriseClient)

	// Initialize HTTP server
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	// Register routes
	h := handler.New(reg, run)
	h.RegisterRoutes(router)

	// Static UI passthrough
	router.Static("/static", "./static")
	router.GET("/", func(c *gin.Context) {
		c.File("static/index.html")
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("❌ Server error: %v", err)
		}
	}()

	// Print startup info
	logger.Info("")
	logger.Infof("📂 Library root: %s", cfg.Library.BasePath)
	logger.Infof("🎞️  Format: %s → %s", cfg.Download.Format, cfg.Download.Container)
	logger.Info("")
	logger.Infof("🌐 API server: http://localhost:%d", cfg.Server.Port)
	logger.Infof("   POST /pull              - Start a season download")
	logger.Infof("   GET  /status/{job_id}   - Poll job progress")
	logger.Info("")
	logger.Info("────────────────────────────────────────────────────────────────")
	logger.Info("✅  Ready! Waiting for pull requests...")
	logger.Info("────────────────────────────────────────────────────────────────")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("")
	logger.Info("🛑 Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("❌ Shutdown error: %v", err)
	}

	logger.Info("👋 Goodbye!")
}

// requestLogger returns a gin middleware for logging HTTP requests
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		if path != "/api/v1/health" || status >= 400 {
			latency := time.Since(start)
			logger.Debugf("HTTP %s %s → %d (%v)", c.Request.Method, path, status, latency)
		}
	}
}
