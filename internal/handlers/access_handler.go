package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"progress-service/internal/service"
)

// SettingsWriter is the admin-facing slice of the settings client.
type SettingsWriter interface {
	SetMaxDailyTasks(ctx context.Context, max int) error
}

type AccessHandler struct {
	Service  *service.AccessService
	Settings SettingsWriter
}

func NewAccessHandler(s *service.AccessService, settings SettingsWriter) *AccessHandler {
	return &AccessHandler{Service: s, Settings: settings}
}

// CheckThemeAccess answers whether the learner may open a theme. A locked
// theme is a 200 with blocked=true and a human-readable reason.
func (h *AccessHandler) CheckThemeAccess(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	decision, err := h.Service.CanAccessTheme(context.Background(), userID, c.Param("themeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

// CheckLessonAccess is the lesson counterpart; it also surfaces a required
// pre-quiz detour.
func (h *AccessHandler) CheckLessonAccess(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	decision, err := h.Service.CanAccessLesson(context.Background(), userID, c.Param("lessonId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

// GetDailyLimit reports today's completion count against the configured cap.
func (h *AccessHandler) GetDailyLimit(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	status, err := h.Service.CheckDailyLimit(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// UpdateDailyLimit sets the platform-wide daily task cap. Zero disables the
// limit.
func (h *AccessHandler) UpdateDailyLimit(c *gin.Context) {
	var req struct {
		MaxDailyTasks *int `json:"max_daily_tasks" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}
	if *req.MaxDailyTasks < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_daily_tasks must not be negative"})
		return
	}

	if err := h.Settings.SetMaxDailyTasks(context.Background(), *req.MaxDailyTasks); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update daily limit",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Daily limit updated",
		"max_daily_tasks": *req.MaxDailyTasks,
	})
}
