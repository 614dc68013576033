package handler

import (
	"net/http"

	"habit-garden/internal/domain/entity"
	"habit-garden/internal/domain/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActivityHandler handles daily vitals requests
type ActivityHandler struct {
	activity service.ActivityService
	logger   *zap.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activity service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		logger:   logger,
	}
}

// GetToday returns today's vitals
// @Summary Today's vitals
// @Tags activity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} entity.Activity
// @Router /api/v1/activity/today [get]
func (h *ActivityHandler) GetToday(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	activity, err := h.activity.Today(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// UpdateToday merges a partial update into today's vitals
// @Summary Update today's vitals
// @Tags activity
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body entity.ActivityPatch true "Fields to change"
// @Success 200 {object} entity.Activity
// @Router /api/v1/activity/today [patch]
func (h *ActivityHandler) UpdateToday(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var patch entity.ActivityPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	activity, err := h.activity.UpdateToday(c.Request.Context(), userID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

type waterRequest struct {
	Delta int32 `json:"delta"`
}

// AdjustWater adds (or removes) glasses of water
// @Summary Adjust water
// @Tags activity
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body waterRequest true "Glasses to add"
// @Success 200 {object} entity.Activity
// @Router /api/v1/activity/today/water [post]
func (h *ActivityHandler) AdjustWater(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req waterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	activity, err := h.activity.AdjustWater(c.Request.Context(), userID, req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// GetWeekly returns the last seven days of vitals, oldest first
// @Summary Weekly vitals
// @Tags activity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{days=[]service.VitalsDay}
// @Router /api/v1/activity/week [get]
func (h *ActivityHandler) GetWeekly(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	days, err := h.activity.WeeklyVitals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}
