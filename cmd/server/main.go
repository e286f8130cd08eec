// Package main runs the quiz bot HTTP server: Telegram webhook, admin API,
// WebSocket feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quizrally/backend/config"
	"github.com/quizrally/backend/internal/answers"
	"github.com/quizrally/backend/internal/auth"
	"github.com/quizrally/backend/internal/backup"
	"github.com/quizrally/backend/internal/leaderboard"
	"github.com/quizrally/backend/internal/middleware"
	"github.com/quizrally/backend/internal/notifier"
	"github.com/quizrally/backend/internal/polls"
	"github.com/quizrally/backend/internal/questions"
	"github.com/quizrally/backend/internal/realtime"
	"github.com/quizrally/backend/internal/scoring"
	"github.com/quizrally/backend/internal/telegram"
	"github.com/quizrally/backend/internal/users"
	"github.com/quizrally/backend/internal/webhook"
	"github.com/quizrally/backend/pkg/database"
	"github.com/quizrally/backend/pkg/queue"
	"github.com/quizrally/backend/pkg/redis"
	"github.com/quizrally/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	tg := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.APIBaseURL, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth
	authRepo := auth.NewRepository(pool)
	if err := authRepo.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, logger); err != nil {
		logger.Fatal("bootstrap admin", zap.Error(err))
	}
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Questions
	questionRepo := questions.NewRepository(pool)
	questionHandler := questions.NewHandler(questionRepo)

	// Polls
	pollRepo := polls.NewRepository(pool)
	dispatcher := polls.NewDispatcher(questionRepo, pollRepo, tg, hub, logger)
	pollHandler := polls.NewHandler(pollRepo, dispatcher)

	// Scoring
	userRepo := users.NewRepository(pool)
	answerRepo := answers.NewRepository(pool)
	chatNotifier := notifier.NewQueued(jobQueue, logger)
	policy := scoring.RewardPolicy{RewardPoints: cfg.Scoring.RewardPoints}
	reconciler := scoring.NewReconciler(pollRepo, userRepo, answerRepo, chatNotifier, policy, logger)

	// Leaderboard
	boardRepo := leaderboard.NewRepository(pool)
	boardHandler := leaderboard.NewHandler(boardRepo)

	// Webhook
	commands := webhook.NewCommands(userRepo, answerRepo, boardRepo, tg, cfg.Scoring.WelcomeBonus, logger)
	webhookHandler := webhook.NewHandler(reconciler, commands, hub, cfg.Telegram.WebhookSecret,
		time.Duration(cfg.Scoring.PersistTimeoutSec)*time.Second, logger)
	webhookAdmin := webhook.NewAdminHandler(tg, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret, logger)

	// Announcements
	announceHandler := notifier.NewHandler(jobQueue, logger)

	// Backups
	backupHandler := backup.NewHandler(jobQueue, logger)
	if cfg.Backup.Region == "" {
		logger.Info("backups queued without S3 region; worker must be configured")
	}

	jwtValidate := func(token string) (email string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", err
		}
		return claims.Email, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Telegram webhook (secret token checked in handler)
	router.POST("/telegram/webhook", webhookHandler.Receive)

	// Auth (public)
	router.POST("/auth/login", authHandler.Login)

	// Leaderboard (public read)
	router.GET("/leaderboard", boardHandler.Top)

	// Admin API (JWT required)
	api := router.Group("/admin")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/questions", questionHandler.Create)
		api.POST("/questions/import", questionHandler.Import)
		api.GET("/questions", questionHandler.List)
		api.GET("/questions/:id", questionHandler.Get)
		api.PATCH("/questions/:id/archive", questionHandler.Archive)

		api.POST("/polls/dispatch", pollHandler.Dispatch)
		api.GET("/polls", pollHandler.List)

		api.GET("/users", usersList(userRepo))

		api.GET("/webhook", webhookAdmin.Status)
		api.POST("/webhook/enable", webhookAdmin.Enable)
		api.POST("/webhook/disable", webhookAdmin.Disable)

		api.POST("/announce", announceHandler.Announce)

		api.POST("/backups", backupHandler.Trigger)
		api.GET("/backups/tables", backupHandler.ListTables)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Scheduled dispatch to the default chat
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	if cfg.Telegram.DispatchEvery > 0 && cfg.Telegram.DefaultChatID != 0 {
		scheduler := polls.NewScheduler(dispatcher, cfg.Telegram.DefaultChatID,
			time.Duration(cfg.Telegram.DispatchEvery)*time.Minute, logger)
		go scheduler.Run(schedCtx)
	}

	// Register the webhook on boot when a public URL is configured.
	if cfg.Telegram.WebhookURL != "" {
		if err := tg.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			logger.Warn("webhook registration failed", zap.Error(err))
		} else {
			logger.Info("webhook registered", zap.String("url", cfg.Telegram.WebhookURL))
		}
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	schedCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func usersList(repo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.List(c.Request.Context(), 100)
		if err != nil {
			response.Internal(c, "failed to list users")
			return
		}
		response.OK(c, gin.H{"users": list})
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
