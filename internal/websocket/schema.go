package websocket

import "github.com/stemsi/mcq-engine/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionState   Action = "state"
	ActionStart   Action = "start"
	ActionExam    Action = "exam"
	ActionTopic   Action = "topic"
	ActionAnswer  Action = "answer"
	ActionReview  Action = "review"
	ActionCurrent Action = "current"
	ActionNext    Action = "next"
	ActionPrev    Action = "prev"
	ActionExit    Action = "exit"
	ActionReset   Action = "reset"
	ActionPing    Action = "ping"
)

// RequestPayload is every client frame. Only the fields relevant to the
// action are read.
type RequestPayload struct {
	Action Action `json:"action"`
	Exam   string `json:"exam,omitempty"`
	Topic  string `json:"topic,omitempty"`
	Label  string `json:"label,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventState     Event = "state"
	EventAnswered  Event = "answered"
	EventCompleted Event = "completed"
	EventReview    Event = "review"
	EventPong      Event = "pong"
)

// StateResponse carries the session projection after a transition.
type StateResponse struct {
	Event   Event             `json:"event"`
	Session model.SessionView `json:"session"`
}

// AnsweredResponse acknowledges a scored answer. Result is present when
// the answer completed the quiz.
type AnsweredResponse struct {
	Event   Event             `json:"event"`
	Attempt model.Attempt     `json:"attempt"`
	Correct bool              `json:"correct"`
	Session model.SessionView `json:"session"`
	Result  *model.QuizResult `json:"result,omitempty"`
}

// ReviewResponse carries the attempt under the review cursor.
type ReviewResponse struct {
	Event   Event            `json:"event"`
	Review  model.ReviewItem `json:"review"`
	Message string           `json:"message,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
