// Package main runs the background job worker: outbound Telegram
// notifications and table backups to S3.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quizrally/backend/config"
	"github.com/quizrally/backend/internal/backup"
	"github.com/quizrally/backend/internal/telegram"
	"github.com/quizrally/backend/internal/worker"
	"github.com/quizrally/backend/pkg/database"
	"github.com/quizrally/backend/pkg/queue"
	"github.com/quizrally/backend/pkg/redis"
	"github.com/quizrally/backend/pkg/storage"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	tg := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.APIBaseURL, logger)

	var backupSvc *backup.Service
	if cfg.Backup.Region != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.Backup.Region,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
			BackupsBucket:   cfg.Backup.Bucket,
		}, logger)
		if err != nil {
			logger.Fatal("s3", zap.Error(err))
		}
		backupSvc = backup.NewService(pool, s3Client, logger)
	} else {
		logger.Warn("S3 not configured; backup jobs will fail")
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewProcessor(tg, backupSvc, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
