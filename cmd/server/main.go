package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Juadebfm/ecorewards-deploy/internal/auth"
	"github.com/Juadebfm/ecorewards-deploy/internal/config"
	"github.com/Juadebfm/ecorewards-deploy/internal/database"
	"github.com/Juadebfm/ecorewards-deploy/internal/handlers"
	"github.com/Juadebfm/ecorewards-deploy/internal/repository"
	"github.com/Juadebfm/ecorewards-deploy/internal/scheduler"
	"github.com/Juadebfm/ecorewards-deploy/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var Version = "dev"

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	setupLogging(&cfg.Logging)

	ctx := context.Background()

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	partnerRepo := repository.NewPartnerRepository(pool)
	rewardRepo := repository.NewRewardRepository(pool)
	qrCodeRepo := repository.NewQRCodeRepository(pool)
	claimRepo := repository.NewClaimRepository(pool)
	leaderboardRepo := repository.NewLeaderboardRepository(pool)
	reconcileRepo := repository.NewReconcileRepository(pool)

	// Services
	leaderboardSvc := service.NewLeaderboardService(leaderboardRepo)
	claimSvc := service.NewClaimService(claimRepo, qrCodeRepo, rewardRepo, partnerRepo, leaderboardRepo)
	pointsSvc := service.NewPointsService(userRepo, leaderboardRepo)
	reconcileSvc := service.NewReconcileService(reconcileRepo, leaderboardRepo, leaderboardSvc)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenDuration())

	// Initialize Gin
	r := gin.Default()
	r.Use(cors.Default())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": Version,
		})
	})

	// Version endpoint
	r.GET("/api/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version": Version,
			"service": "ecorewards-api",
		})
	})

	handlers.RegisterRoutes(r, handlers.Deps{
		JWT:         jwtService,
		Auth:        handlers.NewAuthHandler(userRepo, jwtService),
		Claims:      handlers.NewClaimHandler(claimSvc),
		QRCodes:     handlers.NewQRCodeHandler(qrCodeRepo, claimSvc),
		Rewards:     handlers.NewRewardHandler(rewardRepo),
		Partners:    handlers.NewPartnerHandler(partnerRepo),
		Points:      handlers.NewPointsHandler(userRepo, claimRepo, pointsSvc),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardSvc, reconcileSvc, cfg.Leaderboard.TopLimit),
	})

	// Background reconciliation keeps counters honest even when a
	// side-effect write fails after a claim commits
	var reconcileJob *scheduler.ReconcileScheduler
	if cfg.Reconcile.Enabled {
		reconcileJob = scheduler.NewReconcileScheduler(reconcileSvc, cfg.Reconcile.Cron)
		if err := reconcileJob.Start(); err != nil {
			logrus.Fatalf("Failed to start reconciliation scheduler: %v", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("🚀 Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("🛑 Server shutting down...")

	if reconcileJob != nil {
		reconcileJob.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("✅ Server exited")
}

func setupLogging(cfg *config.LoggingConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
