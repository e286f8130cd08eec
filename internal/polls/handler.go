package polls

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quizrally/backend/internal/storage"
	"github.com/quizrally/backend/pkg/response"
)

// DispatchRequest is the body for POST /polls/dispatch. QuestionID is
// optional; without it the least recently sent question is picked.
type DispatchRequest struct {
	ChatID     int64  `json:"chat_id" binding:"required"`
	QuestionID string `json:"question_id"`
}

// Handler handles poll HTTP endpoints.
type Handler struct {
	repo       *Repository
	dispatcher *Dispatcher
}

// NewHandler creates a polls handler.
func NewHandler(repo *Repository, dispatcher *Dispatcher) *Handler {
	return &Handler{repo: repo, dispatcher: dispatcher}
}

// Dispatch handles POST /polls/dispatch (admin).
func (h *Handler) Dispatch(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if req.QuestionID != "" {
		questionID, err := uuid.Parse(req.QuestionID)
		if err != nil {
			response.BadRequest(c, "invalid question id")
			return
		}
		poll, err := h.dispatcher.DispatchQuestion(c.Request.Context(), questionID, req.ChatID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.NotFound(c, "question not found")
				return
			}
			response.Internal(c, "failed to dispatch poll")
			return
		}
		response.Created(c, poll)
		return
	}

	poll, err := h.dispatcher.DispatchNext(c.Request.Context(), req.ChatID)
	if err != nil {
		if errors.Is(err, ErrNoQuestions) {
			response.Conflict(c, "no active questions available")
			return
		}
		response.Internal(c, "failed to dispatch poll")
		return
	}
	response.Created(c, poll)
}

// List handles GET /polls (admin).
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Internal(c, "failed to list polls")
		return
	}
	response.OK(c, gin.H{"polls": list})
}
