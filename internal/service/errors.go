package service

import (
	"errors"
	"fmt"

	"github.com/stemsi/mcq-engine/internal/model"
)

// Quiz session errors. All of them leave the session unchanged.
var (
	ErrInvalidExam        = errors.New("exam has no questions")
	ErrEmptyTopic         = errors.New("topic has no questions")
	ErrNoActiveQuestion   = errors.New("no question is awaiting an answer")
	ErrNothingToReview    = errors.New("no wrong answers to review")
	ErrInvalidTransition  = errors.New("operation not allowed in current session state")
	ErrNotReviewing       = errors.New("session is not in review mode")
	ErrNotCompleted       = errors.New("session is not completed")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidOption is re-exported so callers only need this package.
	ErrInvalidOption = model.ErrInvalidOption

	// ErrExhausted signals that every question of the pool has been asked.
	ErrExhausted = errors.New("question pool exhausted")
)

// storageFailure tags a repository error so callers can match it with
// errors.Is(err, ErrStorageUnavailable) while keeping the cause.
func storageFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
