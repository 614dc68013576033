package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"habit-garden/internal/domain/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// streamHeartbeat keeps idle SSE connections from being closed by proxies
const streamHeartbeat = 25 * time.Second

// HabitHandler handles habit-related HTTP requests
type HabitHandler struct {
	habits     service.HabitService
	motivation service.MotivationService
	notifier   service.Notifier
	logger     *zap.Logger
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habits service.HabitService, motivation service.MotivationService, notifier service.Notifier, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{
		habits:     habits,
		motivation: motivation,
		notifier:   notifier,
		logger:     logger,
	}
}

type habitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateHabit handles habit creation
// @Summary Create a new habit
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body habitRequest true "Create habit request"
// @Success 201 {object} object{habit=entity.Habit}
// @Failure 400 {object} object{error=string}
// @Router /api/v1/habits [post]
func (h *HabitHandler) CreateHabit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	habit, err := h.habits.CreateHabit(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"habit": habit})
}

// ListHabits returns the caller's habits, oldest first
// @Summary List habits
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{habits=[]entity.Habit}
// @Router /api/v1/habits [get]
func (h *HabitHandler) ListHabits(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habits, err := h.habits.ListHabits(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

// GetDashboard returns habits with today's count and the 7-day chart
// @Summary Dashboard
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Router /api/v1/habits/dashboard [get]
func (h *HabitHandler) GetDashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	dashboard, err := h.habits.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetHabit returns one habit
// @Summary Get habit
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} object{habit=entity.Habit}
// @Failure 404 {object} object{error=string}
// @Router /api/v1/habits/{id} [get]
func (h *HabitHandler) GetHabit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	habit, err := h.habits.GetHabit(c.Request.Context(), habitID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

// UpdateHabit edits name and description
// @Summary Edit habit
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param request body habitRequest true "New details"
// @Success 200 {object} object{habit=entity.Habit}
// @Router /api/v1/habits/{id} [patch]
func (h *HabitHandler) UpdateHabit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	habit, err := h.habits.EditHabit(c.Request.Context(), habitID, userID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

// DeleteHabit removes a habit
// @Summary Delete habit
// @Tags habits
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 204
// @Router /api/v1/habits/{id} [delete]
func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	if err := h.habits.DeleteHabit(c.Request.Context(), habitID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type toggleRequest struct {
	Completed *bool `json:"completed"`
}

// ToggleHabit marks today complete or incomplete
// @Summary Toggle today's completion
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param request body toggleRequest true "Target state"
// @Success 200 {object} service.ToggleOutcome
// @Failure 409 {object} object{error=string}
// @Router /api/v1/habits/{id}/toggle [post]
func (h *HabitHandler) ToggleHabit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Completed == nil {
		badRequest(c, "completed is required")
		return
	}

	outcome, err := h.habits.ToggleHabit(c.Request.Context(), habitID, userID, *req.Completed)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// GetMotivation returns encouragement, or a nudge for a lapsed habit
// @Summary Motivation
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} service.Motivation
// @Failure 502 {object} object{error=string}
// @Router /api/v1/habits/{id}/motivation [get]
func (h *HabitHandler) GetMotivation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	m, err := h.motivation.Motivate(c.Request.Context(), habitID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// GetStory returns a short story about the habit
// @Summary Story
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Param audio query bool false "Include narrated audio"
// @Success 200 {object} service.Story
// @Router /api/v1/habits/{id}/story [get]
func (h *HabitHandler) GetStory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID, ok := habitIDParam(c)
	if !ok {
		return
	}

	withAudio := false
	if v := c.Query("audio"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "audio must be a boolean")
			return
		}
		withAudio = parsed
	}

	story, err := h.motivation.Story(c.Request.Context(), habitID, userID, withAudio)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, story)
}

// Stream pushes the habit list followed by every change as server-sent events
// @Summary Live habit changes
// @Tags habits
// @Produce text/event-stream
// @Security BearerAuth
// @Router /api/v1/habits/stream [get]
func (h *HabitHandler) Stream(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// subscribe before the snapshot so nothing falls in between
	changes, err := h.notifier.Subscribe(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	habits, err := h.habits.ListHabits(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", gin.H{"habits": habits})
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case change, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent(string(change.Kind), change)
			return true
		case <-heartbeat.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			return true
		}
	})

	h.logger.Debug("habit_stream_closed", zap.String("user_id", userID.String()))
}
