package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"standup-bot/internal/model"
	"standup-bot/internal/scoreboard"
	"standup-bot/internal/service"
)

type ScoreboardHandler struct {
	board   *scoreboard.Controller
	updates *service.UpdateService
	ai      *service.AIService
}

func NewScoreboardHandler(board *scoreboard.Controller, updates *service.UpdateService, ai *service.AIService) *ScoreboardHandler {
	return &ScoreboardHandler{board: board, updates: updates, ai: ai}
}

// GET /api/scoreboard
func (h *ScoreboardHandler) Get(c *gin.Context) {
	postID, content := h.board.Snapshot()
	c.JSON(http.StatusOK, model.ScoreboardResponse{PostID: postID, Content: content})
}

// GET /api/members/:id/updates
func (h *ScoreboardHandler) MemberUpdates(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	rows, err := h.updates.AllForUser(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /api/members/:id/weekly-summary
func (h *ScoreboardHandler) WeeklySummary(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	now := time.Now()
	weekday := int(now.Weekday()+6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -weekday)

	statuses, err := h.updates.StatusesInRange(c.Request.Context(), id, monday, monday.AddDate(0, 0, 7))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	summary, err := h.ai.SummarizeWeekly(c.Request.Context(), statuses)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
