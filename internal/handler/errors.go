package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/mcq-engine/internal/response"
	"github.com/stemsi/mcq-engine/internal/service"
)

// quizErrors maps session sentinels to their HTTP status and error code.
// Order matters: storage failures wrap a cause and are matched first.
var quizErrors = []struct {
	err    error
	status int
	code   response.ErrCode
}{
	{service.ErrStorageUnavailable, http.StatusServiceUnavailable, response.ErrStorageUnavailable},
	{service.ErrInvalidExam, http.StatusNotFound, response.ErrInvalidExam},
	{service.ErrEmptyTopic, http.StatusNotFound, response.ErrEmptyTopic},
	{service.ErrNoActiveQuestion, http.StatusConflict, response.ErrNoActiveQuestion},
	{service.ErrNothingToReview, http.StatusConflict, response.ErrNothingToReview},
	{service.ErrInvalidTransition, http.StatusConflict, response.ErrInvalidTransition},
	{service.ErrNotReviewing, http.StatusConflict, response.ErrNotReviewing},
	{service.ErrNotCompleted, http.StatusConflict, response.ErrNotCompleted},
	{service.ErrInvalidOption, http.StatusBadRequest, response.ErrInvalidOption},
}

// classifyError resolves err to a status and code, defaulting to 500.
func classifyError(err error) (int, response.ErrCode) {
	for _, m := range quizErrors {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, response.ErrInternal
}

// failFromError writes the error envelope matching err.
func failFromError(c *gin.Context, err error) {
	status, code := classifyError(err)
	response.Fail(c, status, code)
}
