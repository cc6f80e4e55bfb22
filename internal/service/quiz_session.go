package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/mcq-engine/internal/model"
)

// sessionDeps are the collaborators shared by every session of a store.
type sessionDeps struct {
	questions QuestionRepository
	sampler   *Sampler
	scores    ScoreRepository
	now       func() time.Time
	log       zerolog.Logger
}

// QuizSession is one user's live quiz state machine.
//
// Every exported method holds the session mutex for its whole duration, so
// operations on one user's session are totally ordered. A failed operation
// leaves the session exactly as it was.
type QuizSession struct {
	mu   sync.Mutex
	deps *sessionDeps

	userID int64
	status model.SessionStatus

	exam        string
	topic       string
	targetTotal int

	asked    []int64
	askedSet map[int64]struct{}

	attempts []model.Attempt
	wrong    []model.Attempt
	correct  int

	current     *model.Question
	completedAt time.Time

	reviewAll   *Cursor[model.Attempt]
	reviewWrong *Cursor[model.Attempt]
}

func newQuizSession(userID int64, deps *sessionDeps) *QuizSession {
	s := &QuizSession{deps: deps, userID: userID}
	s.clear()
	return s
}

// clear drops all quiz data and returns to AWAITING_EXAM. Caller holds mu.
func (s *QuizSession) clear() {
	s.status = model.SessionStatusAwaitingExam
	s.exam = ""
	s.clearTopic()
}

// clearTopic drops everything below the exam selection. Caller holds mu.
func (s *QuizSession) clearTopic() {
	s.topic = ""
	s.targetTotal = 0
	s.asked = nil
	s.askedSet = make(map[int64]struct{})
	s.attempts = nil
	s.wrong = nil
	s.correct = 0
	s.current = nil
	s.completedAt = time.Time{}
	s.reviewAll = nil
	s.reviewWrong = nil
}

// UserID returns the identity owning this session.
func (s *QuizSession) UserID() int64 {
	return s.userID
}

// Status returns the current state.
func (s *QuizSession) Status() model.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SelectExam starts over with the given exam. It is accepted in any state,
// since choosing an exam is how a user restarts.
func (s *QuizSession) SelectExam(ctx context.Context, exam string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exam = strings.TrimSpace(exam)
	topics, err := s.deps.questions.ListTopics(ctx, exam)
	if err != nil {
		return storageFailure("list topics", err)
	}
	if len(topics) == 0 {
		return ErrInvalidExam
	}

	s.clear()
	s.exam = exam
	s.status = model.SessionStatusAwaitingTopic

	s.deps.log.Debug().Int64("user_id", s.userID).Str("exam", exam).Msg("Exam selected")
	return nil
}

// SelectTopic begins the quiz for a topic of the selected exam and serves
// the first question.
func (s *QuizSession) SelectTopic(ctx context.Context, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionStatusAwaitingTopic {
		return ErrInvalidTransition
	}

	topic = strings.TrimSpace(topic)
	n, err := s.deps.questions.CountQuestions(ctx, s.exam, topic)
	if err != nil {
		return storageFailure("count questions", err)
	}
	if n == 0 {
		return ErrEmptyTopic
	}

	first, err := s.deps.sampler.Next(ctx, s.exam, topic, nil)
	if errors.Is(err, ErrExhausted) {
		// Pool emptied between count and sample.
		return ErrEmptyTopic
	}
	if err != nil {
		return err
	}

	s.clearTopic()
	s.topic = topic
	s.targetTotal = n
	s.markAsked(first)
	s.current = first
	s.status = model.SessionStatusInProgress

	s.deps.log.Debug().
		Int64("user_id", s.userID).
		Str("exam", s.exam).
		Str("topic", topic).
		Int("pool_size", n).
		Msg("Quiz started")
	return nil
}

// SubmitAnswer scores the pending question and serves the next one. When
// the pool is exhausted the session completes and its score is recorded.
// The returned attempt is the one just recorded.
func (s *QuizSession) SubmitAnswer(ctx context.Context, chosen model.OptionLabel) (model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionStatusInProgress || s.current == nil {
		return model.Attempt{}, ErrNoActiveQuestion
	}

	label, err := model.ParseOptionLabel(string(chosen))
	if err != nil {
		return model.Attempt{}, err
	}

	attempt := model.NewAttempt(len(s.attempts)+1, s.current, label)
	answered := len(s.attempts) + 1
	correct := s.correct
	if attempt.IsCorrect() {
		correct++
	}

	next, err := s.sampleNext(ctx, answered)
	if err != nil {
		return model.Attempt{}, err
	}

	var completedAt time.Time
	if next == nil {
		completedAt = s.deps.now()
		rec := &model.ScoreRecord{
			ID:          uuid.New(),
			UserID:      s.userID,
			Exam:        s.exam,
			Topic:       s.topic,
			Score:       correct,
			Total:       answered,
			CompletedAt: completedAt,
		}
		if err := s.deps.scores.Insert(ctx, rec); err != nil {
			s.deps.log.Error().Err(err).Int64("user_id", s.userID).Msg("Failed to record score")
			return model.Attempt{}, storageFailure("insert score", err)
		}
	}

	s.attempts = append(s.attempts, attempt)
	if !attempt.IsCorrect() {
		s.wrong = append(s.wrong, attempt)
	}
	s.correct = correct
	s.current = next

	if next != nil {
		s.markAsked(next)
		return attempt, nil
	}

	s.status = model.SessionStatusCompleted
	s.completedAt = completedAt
	s.reviewAll = NewCursor(s.attempts)
	s.reviewWrong = NewCursor(s.wrong)

	s.deps.log.Info().
		Int64("user_id", s.userID).
		Str("exam", s.exam).
		Str("topic", s.topic).
		Int("score", s.correct).
		Int("total", len(s.attempts)).
		Msg("Quiz completed")
	return attempt, nil
}

// sampleNext fetches the question following the answered-th one, or nil
// when the session should complete. Caller holds mu.
func (s *QuizSession) sampleNext(ctx context.Context, answered int) (*model.Question, error) {
	if answered >= s.targetTotal {
		return nil, nil
	}
	next, err := s.deps.sampler.Next(ctx, s.exam, s.topic, s.asked)
	if errors.Is(err, ErrExhausted) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, dup := s.askedSet[next.ID]; dup {
		s.deps.log.Warn().Int64("question_id", next.ID).Msg("Repository returned an already asked question")
		return nil, nil
	}
	return next, nil
}

func (s *QuizSession) markAsked(q *model.Question) {
	s.asked = append(s.asked, q.ID)
	s.askedSet[q.ID] = struct{}{}
}

// EnterReview starts browsing the attempts of a completed session from the
// first item. ErrNothingToReview means the wrong list is empty.
func (s *QuizSession) EnterReview(mode model.ReviewMode) (model.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.SessionStatusCompleted {
		return model.ReviewItem{}, ErrInvalidTransition
	}

	switch mode {
	case model.ReviewAll:
		s.reviewAll.Reset()
		s.status = model.SessionStatusReviewing
	case model.ReviewWrongOnly:
		if len(s.wrong) == 0 {
			return model.ReviewItem{}, ErrNothingToReview
		}
		s.reviewWrong.Reset()
		s.status = model.SessionStatusReviewingWrong
	default:
		return model.ReviewItem{}, fmt.Errorf("review mode %q: %w", mode, ErrInvalidTransition)
	}

	cursor, _ := s.activeCursor()
	return s.reviewItem(cursor.Current()), nil
}

// ExitReview returns from a review mode to COMPLETED.
func (s *QuizSession) ExitReview() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activeCursor(); !ok {
		return ErrNotReviewing
	}
	s.status = model.SessionStatusCompleted
	return nil
}

// ReviewCurrent returns the attempt under the active review cursor.
func (s *QuizSession) ReviewCurrent() (model.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor, ok := s.activeCursor()
	if !ok {
		return model.ReviewItem{}, ErrNotReviewing
	}
	return s.reviewItem(cursor.Current()), nil
}

// ReviewNext advances the active review cursor.
func (s *QuizSession) ReviewNext() (model.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor, ok := s.activeCursor()
	if !ok {
		return model.ReviewItem{}, ErrNotReviewing
	}
	return s.reviewItem(cursor.Next()), nil
}

// ReviewPrev steps the active review cursor back.
func (s *QuizSession) ReviewPrev() (model.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor, ok := s.activeCursor()
	if !ok {
		return model.ReviewItem{}, ErrNotReviewing
	}
	return s.reviewItem(cursor.Prev()), nil
}

func (s *QuizSession) activeCursor() (*Cursor[model.Attempt], bool) {
	switch s.status {
	case model.SessionStatusReviewing:
		return s.reviewAll, true
	case model.SessionStatusReviewingWrong:
		return s.reviewWrong, true
	}
	return nil, false
}

func (s *QuizSession) reviewItem(a model.Attempt, ok bool) model.ReviewItem {
	cursor, _ := s.activeCursor()
	item := model.ReviewItem{
		Mode:     model.ReviewAll,
		Index:    cursor.Index(),
		Count:    cursor.Len(),
		Finished: !ok,
	}
	if s.status == model.SessionStatusReviewingWrong {
		item.Mode = model.ReviewWrongOnly
	}
	if ok {
		item.Attempt = &a
	}
	return item
}

// Reset discards all quiz data and returns to AWAITING_EXAM.
func (s *QuizSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

// Result returns the finalized outcome of a completed session.
func (s *QuizSession) Result() (model.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.status.IsFinished() {
		return model.QuizResult{}, ErrNotCompleted
	}

	attempts := make([]model.Attempt, len(s.attempts))
	copy(attempts, s.attempts)
	return model.QuizResult{
		UserID:      s.userID,
		Exam:        s.exam,
		Topic:       s.topic,
		Score:       s.correct,
		Total:       len(s.attempts),
		CompletedAt: s.completedAt,
		Attempts:    attempts,
	}, nil
}

// wrongAttempts returns a copy of the incorrectly answered attempts in
// the order they were answered.
func (s *QuizSession) wrongAttempts() []model.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	wrong := make([]model.Attempt, len(s.wrong))
	copy(wrong, s.wrong)
	return wrong
}

// View returns a snapshot suitable for rendering.
func (s *QuizSession) View() model.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := model.SessionView{
		UserID:      s.userID,
		Status:      s.status,
		Exam:        s.exam,
		Topic:       s.topic,
		TargetTotal: s.targetTotal,
		Score:       s.correct,
		Answered:    len(s.attempts),
		WrongCount:  len(s.wrong),
	}
	if s.current != nil {
		pq := s.current.Public()
		v.Question = &pq
		v.QuestionNo = len(s.attempts) + 1
	}
	return v
}
