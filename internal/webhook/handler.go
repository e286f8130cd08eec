// Package webhook receives Telegram updates and routes them to the scoring
// pipeline and the bot commands.
package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/realtime"
	"github.com/quizrally/backend/internal/scoring"
	"github.com/quizrally/backend/internal/telegram"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Reconciler scores one poll-answer event.
type Reconciler interface {
	Reconcile(ctx context.Context, pollID string, profile models.Profile, optionIDs []int) (scoring.Result, error)
}

// Handler is the webhook entry point for all Telegram updates.
type Handler struct {
	reconciler     Reconciler
	commands       *Commands
	feed           *realtime.Hub // optional dashboard feed
	secret         string
	persistTimeout time.Duration
	logger         *zap.Logger
}

// NewHandler creates a webhook handler. persistTimeout bounds the time spent
// persisting one update, so a slow database cannot stall Telegram's delivery
// queue.
func NewHandler(reconciler Reconciler, commands *Commands, feed *realtime.Hub, secret string, persistTimeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		reconciler:     reconciler,
		commands:       commands,
		feed:           feed,
		secret:         secret,
		persistTimeout: persistTimeout,
		logger:         logger,
	}
}

// Receive handles POST /telegram/webhook. It always answers 200 to accepted
// updates: Telegram retries non-2xx responses, and replaying an update we
// failed to process is pointless once the failure is logged. The answer
// dedup constraint keeps replays that do arrive harmless.
func (h *Handler) Receive(c *gin.Context) {
	if h.secret != "" && c.GetHeader(secretHeader) != h.secret {
		c.Status(http.StatusUnauthorized)
		return
	}

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("undecodable update", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.persistTimeout)
	defer cancel()

	switch {
	case update.PollAnswer != nil:
		h.handlePollAnswer(ctx, update.PollAnswer)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
	c.Status(http.StatusOK)
}

func (h *Handler) handlePollAnswer(ctx context.Context, pa *telegram.PollAnswer) {
	profile := models.Profile{
		TelegramID: pa.User.ID,
		Username:   pa.User.Username,
		FirstName:  pa.User.FirstName,
	}
	res, err := h.reconciler.Reconcile(ctx, pa.PollID, profile, pa.OptionIDs)
	if err != nil {
		h.logger.Error("reconcile failed",
			zap.String("poll_id", pa.PollID),
			zap.Int64("telegram_id", pa.User.ID),
			zap.Error(err))
		return
	}
	if res.Outcome == scoring.OutcomeIgnored {
		h.logger.Debug("answer ignored",
			zap.String("poll_id", pa.PollID),
			zap.String("reason", res.Reason))
		return
	}
	h.logger.Info("answer reconciled",
		zap.String("poll_id", pa.PollID),
		zap.Int64("telegram_id", pa.User.ID),
		zap.Bool("correct", res.IsCorrect),
		zap.Int("points", res.PointsAwarded),
		zap.Int("total", res.NewTotal))
	if h.feed != nil {
		h.feed.BroadcastToChatAndPublish(res.ChatID, "answer_reconciled", map[string]interface{}{
			"poll_id":     pa.PollID,
			"telegram_id": pa.User.ID,
			"correct":     res.IsCorrect,
			"points":      res.PointsAwarded,
			"total":       res.NewTotal,
			"level":       res.Level,
		})
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *telegram.Message) {
	if h.commands == nil {
		return
	}
	if len(msg.NewChatMembers) > 0 {
		h.commands.WelcomeNewMembers(ctx, msg)
		return
	}
	if msg.From != nil && !msg.From.IsBot && msg.Text != "" {
		h.commands.Handle(ctx, msg)
	}
}
