package notifier

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/telegram"
	"github.com/quizrally/backend/pkg/queue"
	"github.com/quizrally/backend/pkg/response"
)

// Announcer queues outbound chat messages.
type Announcer interface {
	EnqueueNotification(ctx context.Context, payload queue.NotificationPayload) error
}

// AnnounceRequest is the body for POST /admin/announce.
type AnnounceRequest struct {
	ChatID int64  `json:"chat_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// Handler exposes manual announcements (tournament starts, maintenance
// notices) over the admin API. Delivery goes through the worker queue like
// every other outbound message.
type Handler struct {
	queue  Announcer
	logger *zap.Logger
}

// NewHandler creates an announcements handler.
func NewHandler(q Announcer, logger *zap.Logger) *Handler {
	return &Handler{queue: q, logger: logger}
}

// Announce handles POST /admin/announce.
func (h *Handler) Announce(c *gin.Context) {
	var req AnnounceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "chat_id and text are required")
		return
	}
	err := h.queue.EnqueueNotification(c.Request.Context(), queue.NotificationPayload{
		ChatID:    req.ChatID,
		Text:      req.Text,
		ParseMode: telegram.ParseModeHTML,
	})
	if err != nil {
		h.logger.Error("failed to enqueue announcement", zap.Int64("chat_id", req.ChatID), zap.Error(err))
		response.Internal(c, "failed to enqueue announcement")
		return
	}
	response.Accepted(c, gin.H{"chat_id": req.ChatID})
}
