package leaderboard

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quizrally/backend/pkg/response"
)

// Handler handles leaderboard HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a leaderboard handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Top handles GET /leaderboard?period=all|weekly|monthly&limit=N.
func (h *Handler) Top(c *gin.Context) {
	period, err := ParsePeriod(c.Query("period"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	entries, err := h.repo.Top(c.Request.Context(), period, limit)
	if err != nil {
		response.Internal(c, "failed to load leaderboard")
		return
	}
	response.OK(c, gin.H{"period": period, "entries": entries})
}
