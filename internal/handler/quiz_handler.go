package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/mcq-engine/internal/middleware"
	"github.com/stemsi/mcq-engine/internal/model"
	"github.com/stemsi/mcq-engine/internal/response"
	"github.com/stemsi/mcq-engine/internal/service"
	"github.com/stemsi/mcq-engine/internal/validator"
)

// QuizHandler drives the caller's quiz session over HTTP.
type QuizHandler struct {
	sessions *service.SessionStore
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(sessions *service.SessionStore) *QuizHandler {
	return &QuizHandler{sessions: sessions}
}

// answerResult is returned after every accepted answer.
type answerResult struct {
	Attempt model.Attempt     `json:"attempt"`
	Correct bool              `json:"correct"`
	Session model.SessionView `json:"session"`
	Result  *model.QuizResult `json:"result,omitempty"`
}

// GetSession godoc
// GET /api/v1/quiz
// Returns the caller's session, creating an empty one on first use.
func (h *QuizHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, session.View())
}

// Start godoc
// POST /api/v1/quiz/start
// Discards any running session and returns a fresh one at exam selection.
func (h *QuizHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session := h.sessions.Replace(claims.UserID)
	response.Success(c, http.StatusOK, session.View())
}

// SelectExam godoc
// POST /api/v1/quiz/exam
func (h *QuizHandler) SelectExam(c *gin.Context) {
	var req model.SelectExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.SelectExam(c.Request.Context(), req.Exam); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, session.View())
}

// SelectTopic godoc
// POST /api/v1/quiz/topic
// Starts the quiz; the response carries the first question.
func (h *QuizHandler) SelectTopic(c *gin.Context) {
	var req model.SelectTopicRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.SelectTopic(c.Request.Context(), req.Topic); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, session.View())
}

// SubmitAnswer godoc
// POST /api/v1/quiz/answer
// Scores the pending question. The last answer of a pool also carries the
// final result.
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	attempt, err := session.SubmitAnswer(c.Request.Context(), model.OptionLabel(req.Label))
	if err != nil {
		failFromError(c, err)
		return
	}

	out := answerResult{
		Attempt: attempt,
		Correct: attempt.IsCorrect(),
		Session: session.View(),
	}
	if out.Session.Status == model.SessionStatusCompleted {
		if result, err := session.Result(); err == nil {
			out.Result = &result
		}
	}
	response.Success(c, http.StatusOK, out)
}

// EnterReview godoc
// POST /api/v1/quiz/review
// An empty wrong list is reported as a finished, empty review rather than
// an error.
func (h *QuizHandler) EnterReview(c *gin.Context) {
	var req model.EnterReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	mode := model.ReviewMode(req.Mode)
	item, err := session.EnterReview(mode)
	if errors.Is(err, service.ErrNothingToReview) {
		response.Success(c, http.StatusOK, gin.H{
			"review":  model.ReviewItem{Mode: mode, Finished: true},
			"message": response.GetMessage(response.ErrNothingToReview),
		})
		return
	}
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": item})
}

// ReviewCurrent godoc
// GET /api/v1/quiz/review/current
func (h *QuizHandler) ReviewCurrent(c *gin.Context) {
	h.review(c, (*service.QuizSession).ReviewCurrent)
}

// ReviewNext godoc
// POST /api/v1/quiz/review/next
func (h *QuizHandler) ReviewNext(c *gin.Context) {
	h.review(c, (*service.QuizSession).ReviewNext)
}

// ReviewPrev godoc
// POST /api/v1/quiz/review/prev
func (h *QuizHandler) ReviewPrev(c *gin.Context) {
	h.review(c, (*service.QuizSession).ReviewPrev)
}

func (h *QuizHandler) review(c *gin.Context, step func(*service.QuizSession) (model.ReviewItem, error)) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	item, err := step(session)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": item})
}

// ExitReview godoc
// DELETE /api/v1/quiz/review
func (h *QuizHandler) ExitReview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.ExitReview(); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, session.View())
}

// Reset godoc
// POST /api/v1/quiz/reset
func (h *QuizHandler) Reset(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.Reset()
	response.Success(c, http.StatusOK, session.View())
}

// GetResult godoc
// GET /api/v1/quiz/result
// Returns the finalized score and attempts for report export.
func (h *QuizHandler) GetResult(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	result, err := session.Result()
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// session resolves the caller's live session, writing a 401 when the
// request carries no identity.
func (h *QuizHandler) session(c *gin.Context) (*service.QuizSession, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}
	return h.sessions.Get(claims.UserID), true
}
