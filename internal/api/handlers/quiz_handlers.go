package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/education"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// QuizHandlers contains the education HTTP handlers
type QuizHandlers struct {
	education *education.Service
	logger    *logger.Logger
}

// NewQuizHandlers creates a new instance of quiz handlers
func NewQuizHandlers(educationService *education.Service, log *logger.Logger) *QuizHandlers {
	return &QuizHandlers{education: educationService, logger: log}
}

// ListQuestions handles GET /quiz/questions
func (h *QuizHandlers) ListQuestions(c *gin.Context) {
	questions, err := h.education.Questions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// SubmitQuiz handles POST /users/:id/quiz/submit
func (h *QuizHandlers) SubmitQuiz(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireSelf(c, entities.UserRef{Kind: entities.RefByID, ID: userID}); err != nil {
		respondError(c, err)
		return
	}

	var req entities.QuizSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.education.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
