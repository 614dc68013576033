package handler

import (
	"errors"
	"net/http"

	"habit-garden/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidDate),
		errors.Is(err, entity.ErrSelfFriend):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrHabitNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrAlreadyFriends),
		errors.Is(err, entity.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, entity.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Unexpected errors are hidden
// from the client and kept on the context for the request logger.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	_ = c.Error(err)

	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		msg = "internal server error"
	case http.StatusBadGateway:
		msg = entity.ErrGenerationFailed.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
