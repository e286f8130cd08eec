package backup

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quizrally/backend/pkg/queue"
	"github.com/quizrally/backend/pkg/response"
)

// Request is the body for POST /admin/backups. An empty table means all
// exportable tables.
type Request struct {
	Table string `json:"table"`
}

// Enqueuer queues backup jobs for the worker.
type Enqueuer interface {
	EnqueueBackup(ctx context.Context, payload queue.BackupPayload) error
}

// Handler enqueues backup jobs for the worker.
type Handler struct {
	queue  Enqueuer
	logger *zap.Logger
}

// NewHandler creates a backups handler.
func NewHandler(q Enqueuer, logger *zap.Logger) *Handler {
	return &Handler{queue: q, logger: logger}
}

// Trigger handles POST /admin/backups. An empty body is valid and backs up
// every exportable table.
func (h *Handler) Trigger(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Table != "" && !Allowed(req.Table) {
		response.BadRequest(c, "table is not exportable")
		return
	}

	tables := Tables()
	if req.Table != "" {
		tables = []string{req.Table}
	}
	for _, table := range tables {
		if err := h.queue.EnqueueBackup(c.Request.Context(), queue.BackupPayload{Table: table}); err != nil {
			h.logger.Error("failed to enqueue backup", zap.String("table", table), zap.Error(err))
			response.Internal(c, "failed to enqueue backup")
			return
		}
	}
	response.Accepted(c, gin.H{"tables": tables})
}

// ListTables handles GET /admin/backups/tables.
func (h *Handler) ListTables(c *gin.Context) {
	response.OK(c, gin.H{"tables": Tables()})
}
