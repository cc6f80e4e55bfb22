package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/mcq-engine/internal/response"
	"github.com/stemsi/mcq-engine/internal/service"
)

// QuestionHandler serves the exam and topic catalog.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListExams godoc
// GET /api/v1/exams
// Lists the distinct exams of the question bank.
func (h *QuestionHandler) ListExams(c *gin.Context) {
	exams, err := h.questionService.ListExams(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// ListTopics godoc
// GET /api/v1/exams/:exam/topics
// Lists the topics of one exam.
func (h *QuestionHandler) ListTopics(c *gin.Context) {
	exam := c.Param("exam")

	topics, err := h.questionService.ListTopics(c.Request.Context(), exam)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam, "topics": topics})
}
