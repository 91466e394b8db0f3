package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"standup-bot/internal/logger"
	"standup-bot/internal/model"
	"standup-bot/internal/scheduler"
	"standup-bot/internal/scoreboard"
	"standup-bot/internal/service"
)

// MemberHandler exposes roster CRUD. Every mutation flows through the member
// service first, then re-syncs the scoreboard and the prompt schedule so the
// weekly post and the cron jobs always match the roster.
type MemberHandler struct {
	members  *service.MemberService
	board    *scoreboard.Controller
	sched    *scheduler.Scheduler
	prompt   func(model.TeamMember)
	rollover func()
}

func NewMemberHandler(members *service.MemberService, board *scoreboard.Controller, sched *scheduler.Scheduler, prompt func(model.TeamMember), rollover func()) *MemberHandler {
	return &MemberHandler{members: members, board: board, sched: sched, prompt: prompt, rollover: rollover}
}

// GET /api/members
func (h *MemberHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.members.All())
}

// POST /api/members
func (h *MemberHandler) Add(c *gin.Context) {
	var req model.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	m := model.TeamMember{
		DiscordID:      req.DiscordID,
		Name:           req.Name,
		TimeZone:       req.TimeZone,
		GithubUsername: req.GithubUsername,
	}
	if err := h.members.Add(c.Request.Context(), m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.syncRoster(c)

	if err := h.sched.AddMember(m, h.prompt); err != nil {
		logger.Warn("member.schedule_failed", "member", m.Name, "err", err)
	}
	c.JSON(http.StatusOK, m)
}

// DELETE /api/members/:id
func (h *MemberHandler) Remove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.members.Remove(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.sched.RemoveMember(id)
	h.syncRoster(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PUT /api/members/:id/timezone
func (h *MemberHandler) UpdateTimeZone(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req model.TimeZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.members.UpdateTimeZone(c.Request.Context(), id, req.TimeZone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Reschedule prompts in the new zone.
	h.sched.RemoveMember(id)
	if m, ok := h.members.Find(id); ok {
		if err := h.sched.AddMember(m, h.prompt); err != nil {
			logger.Warn("member.schedule_failed", "member", m.Name, "err", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PUT /api/members/:id/vacation
func (h *MemberHandler) SetVacation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req model.VacationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.members.SetVacation(c.Request.Context(), id, req.OnVacation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *MemberHandler) syncRoster(c *gin.Context) {
	if err := h.board.RosterChanged(c.Request.Context(), h.members.All()); err != nil {
		logger.Warn("member.scoreboard_sync_failed", "err", err)
	}
	if err := h.sched.ScheduleWeeklyRollover(h.members.All(), h.rollover); err != nil {
		logger.Warn("member.rollover_resched_failed", "err", err)
	}
}
