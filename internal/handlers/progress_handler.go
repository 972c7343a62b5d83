package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"progress-service/internal/service"
)

type ProgressHandler struct {
	Service *service.ProgressService
}

func NewProgressHandler(s *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{Service: s}
}

// Enroll snapshots the course catalog into the learner's progress document.
// Re-enrolling is a no-op and returns the existing snapshot.
func (h *ProgressHandler) Enroll(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	courseProgress, already, err := h.Service.Enroll(context.Background(), userID, c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if already {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"course_progress":  courseProgress,
		"already_enrolled": already,
	})
}

// CompleteLesson marks a lesson done. Blocks (daily limit, unpassed
// post-quiz) and the already-completed case come back inside the result.
func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	result, err := h.Service.MarkLessonComplete(context.Background(), userID, c.Param("lessonId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	progress, err := h.Service.GetProgress(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *ProgressHandler) GetCourseProgress(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	courseProgress, err := h.Service.GetCourseProgress(context.Background(), userID, c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, courseProgress)
}

// GetNextContent resolves what the learner should study after a lesson.
func (h *ProgressHandler) GetNextContent(c *gin.Context) {
	next, err := h.Service.NextContent(context.Background(), c.Param("lessonId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if next == nil {
		c.JSON(http.StatusOK, gin.H{
			"has_next": false,
			"message":  "All available content completed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"has_next": true,
		"next":     next,
	})
}

// Recalculate recomputes derived progress fields from the lesson-status
// ground truth and reports per-course deltas.
func (h *ProgressHandler) Recalculate(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	deltas, err := h.Service.Recalculate(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recalculated": true,
		"courses":      deltas,
	})
}
