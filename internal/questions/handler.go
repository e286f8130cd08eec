package questions

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/storage"
	"github.com/quizrally/backend/pkg/response"
)

// CreateRequest is the body for POST /questions.
type CreateRequest struct {
	Text         string   `json:"text" binding:"required"`
	Options      []string `json:"options" binding:"required"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// ImportRequest is the body for POST /questions/import.
type ImportRequest struct {
	GIFT string `json:"gift" binding:"required"`
}

// ArchiveRequest is the body for PATCH /questions/:id/archive.
type ArchiveRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}

// Handler handles question HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a questions handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /questions.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	q := &models.Question{
		Text:         req.Text,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
		Explanation:  req.Explanation,
	}
	if err := q.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.repo.Create(c.Request.Context(), q); err != nil {
		response.Internal(c, "failed to create question")
		return
	}
	response.Created(c, q)
}

// Import handles POST /questions/import, accepting a GIFT document.
func (h *Handler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	parsed, problems := ParseGIFT(req.GIFT)
	if len(parsed) == 0 {
		response.BadRequest(c, "no questions parsed")
		return
	}
	imported := 0
	for i := range parsed {
		if err := h.repo.Create(c.Request.Context(), &parsed[i]); err != nil {
			response.Internal(c, "failed to store imported questions")
			return
		}
		imported++
	}
	response.Created(c, gin.H{"imported": imported, "errors": problems})
}

// List handles GET /questions.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Internal(c, "failed to list questions")
		return
	}
	response.OK(c, gin.H{"questions": list})
}

// Get handles GET /questions/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	q, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(c, "question not found")
			return
		}
		response.Internal(c, "failed to load question")
		return
	}
	response.OK(c, q)
}

// Archive handles PATCH /questions/:id/archive.
func (h *Handler) Archive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	var req ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.SetArchived(c.Request.Context(), id, *req.Archived); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.NotFound(c, "question not found")
			return
		}
		response.Internal(c, "failed to update question")
		return
	}
	response.OK(c, gin.H{"id": id, "archived": *req.Archived})
}
