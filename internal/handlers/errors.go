package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"progress-service/internal/service"
)

// respondError maps service errors onto HTTP statuses. Policy blocks never
// reach this path; they are delivered as regular 200 responses.
func respondError(c *gin.Context, err error) {
	switch err {
	case service.ErrQuizNotFound, service.ErrAttemptNotFound,
		service.ErrCourseNotFound, service.ErrThemeNotFound,
		service.ErrLessonNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case service.ErrNotEnrolled, service.ErrLessonNotTracked:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case service.ErrNotInProgress, service.ErrAlreadyCompleted:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case service.ErrAttemptExpired:
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
