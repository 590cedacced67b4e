package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"referral-bot/internal/auth"
	"referral-bot/internal/config"
	"referral-bot/internal/database"
	"referral-bot/internal/handlers"
	"referral-bot/internal/jobs"
	"referral-bot/internal/platform"
	"referral-bot/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Platform client (subscription checks, notifications, invite links)
	telegram := platform.NewTelegramClient(cfg.Bot.Token, cfg.Bot.PublicChannel)

	// Initialize services
	rewardService := services.NewRewardService(db, telegram, telegram,
		cfg.Bot.PrivateChannelID, cfg.App.InviteTarget)
	signupService := services.NewSignupService(db, telegram, telegram,
		rewardService, cfg.App.InviteTarget)
	statsService := services.NewStatsService(db, cfg.App.InviteTarget, cfg.App.Timezone)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg.App.GatewaySecret)
	userHandler := handlers.NewUserHandler(db, signupService, statsService,
		cfg.Bot.Username, cfg.App.InviteTarget)
	adminHandler := handlers.NewAdminHandler(db, statsService, cfg.App.InviteTarget)

	// Start daily digest job
	digestJob := jobs.NewDailyDigestJob(db, telegram, cfg.Bot.AdminIDs, cfg.App.Timezone)
	stopDigest, err := digestJob.Start()
	if err != nil {
		log.Fatalf("Failed to start digest job: %v", err)
	}

	// Set up Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Token issue for the messaging gateway (public, secret-gated)
	router.POST("/auth/token", authHandler.IssueToken)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		userRoutes := api.Group("/user")
		{
			userRoutes.POST("/register", userHandler.Register)
			userRoutes.POST("/confirm", userHandler.ConfirmSubscription)
			userRoutes.GET("/progress", userHandler.GetProgress)
			userRoutes.GET("/link", userHandler.GetReferralLink)
		}

		api.GET("/top", userHandler.GetTop)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.AdminMiddleware(cfg.IsAdmin))
	{
		admin.GET("/report", adminHandler.GetReport)
		admin.GET("/near-goal", adminHandler.GetNearGoal)
		admin.POST("/target", adminHandler.SetTarget)
		admin.POST("/users/:id/reset", adminHandler.ResetUser)
		admin.POST("/users/:id/ban", adminHandler.BanUser)
		admin.POST("/users/:id/unban", adminHandler.UnbanUser)
		admin.POST("/wipe", adminHandler.WipeAll)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if err := stopDigest(); err != nil {
		log.Printf("Digest scheduler shutdown: %v", err)
	}

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
