package webhook

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/telegram"
	"github.com/quizrally/backend/pkg/response"
)

// AdminHandler manages the bot's webhook registration with Telegram.
type AdminHandler struct {
	client     *telegram.Client
	webhookURL string
	secret     string
	logger     *zap.Logger
}

// NewAdminHandler creates the webhook management handler.
func NewAdminHandler(client *telegram.Client, webhookURL, secret string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{client: client, webhookURL: webhookURL, secret: secret, logger: logger}
}

// Status handles GET /admin/webhook.
func (h *AdminHandler) Status(c *gin.Context) {
	info, err := h.client.GetWebhookInfo(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to query webhook status")
		return
	}
	response.OK(c, gin.H{
		"url":                  info.URL,
		"enabled":              info.URL != "",
		"pending_update_count": info.PendingUpdateCount,
		"last_error_date":      info.LastErrorDate,
		"last_error_message":   info.LastErrorMessage,
	})
}

// Enable handles POST /admin/webhook/enable.
func (h *AdminHandler) Enable(c *gin.Context) {
	if h.webhookURL == "" {
		response.BadRequest(c, "webhook url is not configured")
		return
	}
	if err := h.client.SetWebhook(c.Request.Context(), h.webhookURL, h.secret); err != nil {
		h.logger.Error("set webhook failed", zap.Error(err))
		response.Internal(c, "failed to enable webhook")
		return
	}
	h.logger.Info("webhook enabled", zap.String("url", h.webhookURL))
	response.OK(c, gin.H{"enabled": true, "url": h.webhookURL})
}

// Disable handles POST /admin/webhook/disable. Pending updates are kept so
// re-enabling resumes where delivery stopped.
func (h *AdminHandler) Disable(c *gin.Context) {
	if err := h.client.DeleteWebhook(c.Request.Context(), false); err != nil {
		h.logger.Error("delete webhook failed", zap.Error(err))
		response.Internal(c, "failed to disable webhook")
		return
	}
	h.logger.Info("webhook disabled")
	response.OK(c, gin.H{"enabled": false})
}
