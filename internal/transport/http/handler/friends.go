package handler

import (
	"net/http"

	"habit-garden/internal/domain/service"
	"habit-garden/internal/transport/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FriendHandler handles profile and friendship requests
type FriendHandler struct {
	friends    service.FriendService
	habits     service.HabitService
	motivation service.MotivationService
	logger     *zap.Logger
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(friends service.FriendService, habits service.HabitService, motivation service.MotivationService, logger *zap.Logger) *FriendHandler {
	return &FriendHandler{
		friends:    friends,
		habits:     habits,
		motivation: motivation,
		logger:     logger,
	}
}

// EnsureProfile returns the caller's profile, creating it and the welcome habit on first sign-in
// @Summary Profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{user=entity.User}
// @Router /api/v1/profile [post]
func (h *FriendHandler) EnsureProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := h.friends.EnsureProfile(ctx, userID, middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.habits.EnsureWelcomeHabit(ctx, userID); err != nil {
		h.logger.Warn("welcome_habit_failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetAvatar generates an avatar for the caller
// @Summary Generate avatar
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Avatar
// @Failure 502 {object} object{error=string}
// @Router /api/v1/profile/avatar [get]
func (h *FriendHandler) GetAvatar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	avatar, err := h.motivation.Avatar(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, avatar)
}

type addFriendRequest struct {
	Email string `json:"email" binding:"required"`
}

// AddFriend befriends the user registered with the given email
// @Summary Add friend
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body addFriendRequest true "Friend's email"
// @Success 201 {object} object{friend=entity.User}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /api/v1/friends [post]
func (h *FriendHandler) AddFriend(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req addFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email is required")
		return
	}

	friend, err := h.friends.AddFriendByEmail(c.Request.Context(), userID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"friend": friend})
}

// ListFriends returns the caller's friends
// @Summary List friends
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{friends=[]entity.User}
// @Router /api/v1/friends [get]
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	friends, err := h.friends.ListFriends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}
