// Package notifier delivers chat feedback through the background job queue,
// keeping Telegram round-trips off the webhook path.
package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/telegram"
	"github.com/quizrally/backend/pkg/queue"
)

// Queued enqueues notifications for the worker to send. Failures are logged
// and swallowed: feedback is best-effort and must never fail a reconciliation.
type Queued struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewQueued creates a queue-backed notifier.
func NewQueued(q *queue.Queue, logger *zap.Logger) *Queued {
	return &Queued{queue: q, logger: logger}
}

// Notify enqueues a chat message.
func (n *Queued) Notify(ctx context.Context, chatID int64, text string) {
	err := n.queue.EnqueueNotification(ctx, queue.NotificationPayload{
		ChatID:    chatID,
		Text:      text,
		ParseMode: telegram.ParseModeHTML,
	})
	if err != nil {
		n.logger.Warn("failed to enqueue notification", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// Direct sends chat messages synchronously. Used by the worker binary and in
// deployments without Redis.
type Direct struct {
	client *telegram.Client
	logger *zap.Logger
}

// NewDirect creates a notifier that calls the Bot API inline.
func NewDirect(client *telegram.Client, logger *zap.Logger) *Direct {
	return &Direct{client: client, logger: logger}
}

// Notify sends the message immediately.
func (n *Direct) Notify(ctx context.Context, chatID int64, text string) {
	if err := n.client.SendMessage(ctx, chatID, text, telegram.ParseModeHTML); err != nil {
		n.logger.Warn("failed to send notification", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
