package model

import "time"

// SessionStatus enumerates quiz session states.
type SessionStatus string

const (
	SessionStatusAwaitingExam   SessionStatus = "AWAITING_EXAM"
	SessionStatusAwaitingTopic  SessionStatus = "AWAITING_TOPIC"
	SessionStatusInProgress     SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted      SessionStatus = "COMPLETED"
	SessionStatusReviewing      SessionStatus = "REVIEWING"
	SessionStatusReviewingWrong SessionStatus = "REVIEWING_WRONG"
)

// IsFinished reports whether the session has a final result.
func (s SessionStatus) IsFinished() bool {
	return s == SessionStatusCompleted || s == SessionStatusReviewing || s == SessionStatusReviewingWrong
}

// ReviewMode selects which attempts are browsed after completion.
type ReviewMode string

const (
	ReviewAll       ReviewMode = "ALL"
	ReviewWrongOnly ReviewMode = "WRONG_ONLY"
)

// Attempt records one answered (or timed-out) question of a session.
type Attempt struct {
	Position     int         `json:"position"`
	QuestionID   int64       `json:"question_id"`
	QuestionText string      `json:"question"`
	Chosen       OptionLabel `json:"chosen"`
	ChosenText   string      `json:"chosen_text"`
	Correct      OptionLabel `json:"correct"`
	CorrectText  string      `json:"correct_text"`
	Explanation  string      `json:"explanation"`
}

// IsCorrect reports whether the chosen label matches the answer key.
func (a Attempt) IsCorrect() bool {
	return a.Chosen == a.Correct
}

// NewAttempt snapshots q and the chosen label at the given ordinal position.
func NewAttempt(position int, q *Question, chosen OptionLabel) Attempt {
	return Attempt{
		Position:     position,
		QuestionID:   q.ID,
		QuestionText: Normalize(q.Text),
		Chosen:       chosen,
		ChosenText:   q.Option(chosen),
		Correct:      q.Correct,
		CorrectText:  q.Option(q.Correct),
		Explanation:  Normalize(q.Explanation),
	}
}

// QuizResult is the finalized outcome of a completed session, as consumed
// by report exporters.
type QuizResult struct {
	UserID      int64     `json:"user_id"`
	Exam        string    `json:"exam"`
	Topic       string    `json:"topic"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	CompletedAt time.Time `json:"completed_at"`
	Attempts    []Attempt `json:"attempts"`
}

// SessionView is a read-only projection of a quiz session for transports.
type SessionView struct {
	UserID      int64           `json:"user_id"`
	Status      SessionStatus   `json:"status"`
	Exam        string          `json:"exam,omitempty"`
	Topic       string          `json:"topic,omitempty"`
	Question    *PublicQuestion `json:"question,omitempty"`
	QuestionNo  int             `json:"question_no,omitempty"`
	TargetTotal int             `json:"target_total,omitempty"`
	Score       int             `json:"score"`
	Answered    int             `json:"answered"`
	WrongCount  int             `json:"wrong_count"`
}

// ReviewItem is the attempt under a review cursor.
type ReviewItem struct {
	Mode     ReviewMode `json:"mode"`
	Index    int        `json:"index"`
	Count    int        `json:"count"`
	Attempt  *Attempt   `json:"attempt,omitempty"`
	Finished bool       `json:"finished"`
}

// SelectExamRequest is the payload for choosing an exam.
type SelectExamRequest struct {
	Exam string `json:"exam" binding:"required,min=1,max=200"`
}

// SelectTopicRequest is the payload for choosing a topic of the selected exam.
type SelectTopicRequest struct {
	Topic string `json:"topic" binding:"required,min=1,max=200"`
}

// SubmitAnswerRequest is the payload for answering the pending question.
type SubmitAnswerRequest struct {
	Label string `json:"label" binding:"required,option_label"`
}

// EnterReviewRequest is the payload for starting a review.
type EnterReviewRequest struct {
	Mode string `json:"mode" binding:"required,oneof=ALL WRONG_ONLY"`
}
