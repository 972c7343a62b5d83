package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"progress-service/internal/models"
	"progress-service/internal/service"
)

type AttemptHandler struct {
	Service *service.AttemptService
}

func NewAttemptHandler(s *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{Service: s}
}

// GetEligibility reports whether a new attempt may be opened right now.
func (h *AttemptHandler) GetEligibility(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	eligibility, err := h.Service.CanStart(context.Background(), userID, c.Param("quizId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eligibility)
}

// StartAttempt opens a new attempt. A policy block (open attempt, attempt
// limit, cooldown) is a 200 with can_start=false, not an error.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	attempt, eligibility, err := h.Service.Start(context.Background(), userID, c.Param("quizId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if attempt == nil {
		c.JSON(http.StatusOK, gin.H{"eligibility": eligibility})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"attempt":     attempt,
		"eligibility": eligibility,
	})
}

// SaveAnswers upserts answers into an in-progress attempt.
func (h *AttemptHandler) SaveAnswers(c *gin.Context) {
	var req struct {
		Answers []models.Answer `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid answers format",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetHeader("X-User-ID")
	attempt, err := h.Service.SaveProgress(context.Background(), userID, c.Param("id"), req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attempt_id":    attempt.ID,
		"answers_saved": len(attempt.Answers),
	})
}

// SubmitAttempt grades the attempt and closes it out.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	attempt, err := h.Service.Submit(context.Background(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attempt": attempt,
		"summary": attempt.Summary,
	})
}

// AbandonAttempt closes an in-progress attempt without grading.
func (h *AttemptHandler) AbandonAttempt(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	attempt, err := h.Service.Abandon(context.Background(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attempt_id": attempt.ID,
		"status":     attempt.Status,
	})
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	attempt, err := h.Service.GetAttempt(context.Background(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	attempts, err := h.Service.ListAttempts(context.Background(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attempts": attempts,
		"count":    len(attempts),
	})
}
