// Package worker drains the background job queues: outbound Telegram
// notifications and table backups.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/backup"
	"github.com/quizrally/backend/internal/telegram"
	"github.com/quizrally/backend/pkg/queue"
)

// Processor executes queued jobs.
type Processor struct {
	telegram *telegram.Client
	backups  *backup.Service
	queue    *queue.Queue
	logger   *zap.Logger
}

// NewProcessor creates a job processor. backups may be nil when S3 is not
// configured; backup jobs then fail and end up in the DLQ.
func NewProcessor(tg *telegram.Client, backups *backup.Service, q *queue.Queue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{telegram: tg, backups: backups, queue: q, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeNotification:
		var payload queue.NotificationPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		if err := p.telegram.SendMessage(ctx, payload.ChatID, payload.Text, payload.ParseMode); err != nil {
			return fmt.Errorf("send notification: %w", err)
		}
		return nil

	case queue.JobTypeBackup:
		var payload queue.BackupPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		if p.backups == nil {
			return fmt.Errorf("backups not configured")
		}
		if _, err := p.backups.BackupTable(ctx, payload.Table); err != nil {
			return fmt.Errorf("backup %s: %w", payload.Table, err)
		}
		return nil

	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
