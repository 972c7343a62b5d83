package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"progress-service/internal/service"
)

type QuizHandler struct {
	Quizzes service.QuizStore
}

func NewQuizHandler(quizzes service.QuizStore) *QuizHandler {
	return &QuizHandler{Quizzes: quizzes}
}

// GetQuiz serves the learner-facing quiz definition. Correct answers and
// per-question explanations are stripped; unpublished quizzes do not exist
// as far as this endpoint is concerned.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.Quizzes.FindByID(context.Background(), c.Param("quizId"))
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !quiz.Published {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}
	c.JSON(http.StatusOK, quiz.Sanitized())
}
