package handler

import (
	"math/rand/v2"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/mcq-engine/internal/middleware"
	"github.com/stemsi/mcq-engine/internal/model"
	"github.com/stemsi/mcq-engine/internal/repository"
	"github.com/stemsi/mcq-engine/internal/service"
	"github.com/stemsi/mcq-engine/internal/validator"
	ws "github.com/stemsi/mcq-engine/internal/websocket"
)

var wsCorrect = map[int64]model.OptionLabel{1: model.OptionA, 2: model.OptionB}

func newTestWSServer(t *testing.T, limiter *middleware.RateLimiter) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	questions := repository.NewMemoryQuestionRepository(rand.New(rand.NewPCG(5, 8)))
	questions.Add(
		model.Question{ID: 1, Exam: "E", Topic: "T", Text: "Q1", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: model.OptionA},
		model.Question{ID: 2, Exam: "E", Topic: "T", Text: "Q2", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", Correct: model.OptionB},
	)
	sessions := service.NewSessionStore(questions, repository.NewMemoryScoreRepository(), zerolog.Nop())
	h := NewWSHandler(sessions, limiter, zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Query("user"), 10, 64)
		c.Set(middleware.ContextKeyClaims, &service.Claims{UserID: id})
		c.Next()
	}, h.QuizStream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, user int64) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=" + strconv.FormatInt(user, 10)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip[T any](t *testing.T, conn *websocket.Conn, req ws.RequestPayload) T {
	t.Helper()

	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write %s: %v", req.Action, err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var out T
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read reply to %s: %v", req.Action, err)
	}
	return out
}

func startWSQuiz(t *testing.T, conn *websocket.Conn) model.SessionView {
	t.Helper()

	state := roundTrip[ws.StateResponse](t, conn, ws.RequestPayload{Action: ws.ActionExam, Exam: "E"})
	if state.Session.Status != model.SessionStatusAwaitingTopic {
		t.Fatalf("after exam: %+v", state.Session)
	}
	state = roundTrip[ws.StateResponse](t, conn, ws.RequestPayload{Action: ws.ActionTopic, Topic: "T"})
	if state.Session.Question == nil {
		t.Fatalf("after topic: %+v", state.Session)
	}
	return state.Session
}

func TestWSHandlerReviewCurrent(t *testing.T) {
	srv := newTestWSServer(t, nil)
	conn := dialWS(t, srv, 42)

	view := startWSQuiz(t, conn)
	for view.Question != nil {
		answered := roundTrip[ws.AnsweredResponse](t, conn, ws.RequestPayload{
			Action: ws.ActionAnswer,
			Label:  string(wsCorrect[view.Question.ID]),
		})
		if !answered.Correct {
			t.Fatalf("answer = %+v", answered)
		}
		view = answered.Session
		if view.Question == nil && (answered.Event != ws.EventCompleted || answered.Result == nil) {
			t.Fatalf("final answer = %+v", answered)
		}
	}

	entered := roundTrip[ws.ReviewResponse](t, conn, ws.RequestPayload{Action: ws.ActionReview, Mode: "ALL"})
	if entered.Review.Count != 2 || entered.Review.Attempt == nil || entered.Review.Attempt.Position != 1 {
		t.Fatalf("review = %+v", entered.Review)
	}

	current := roundTrip[ws.ReviewResponse](t, conn, ws.RequestPayload{Action: ws.ActionCurrent})
	if current.Event != ws.EventReview || current.Review.Attempt == nil || *current.Review.Attempt != *entered.Review.Attempt {
		t.Fatalf("current = %+v, want %+v", current.Review, entered.Review)
	}

	next := roundTrip[ws.ReviewResponse](t, conn, ws.RequestPayload{Action: ws.ActionNext})
	if next.Review.Attempt == nil || next.Review.Attempt.Position != 2 {
		t.Fatalf("next = %+v", next.Review)
	}
	current = roundTrip[ws.ReviewResponse](t, conn, ws.RequestPayload{Action: ws.ActionCurrent})
	if current.Review.Attempt == nil || current.Review.Attempt.Position != 2 {
		t.Fatalf("current after next = %+v", current.Review)
	}
}

func TestWSHandlerCurrentOutsideReview(t *testing.T) {
	srv := newTestWSServer(t, nil)
	conn := dialWS(t, srv, 42)

	got := roundTrip[ws.ErrorResponse](t, conn, ws.RequestPayload{Action: ws.ActionCurrent})
	if got.Event != ws.EventError || got.Code != "NOT_REVIEWING" {
		t.Fatalf("current outside review = %+v", got)
	}
}

func TestWSHandlerAnswerRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Hour)
	srv := newTestWSServer(t, limiter)
	conn := dialWS(t, srv, 42)

	view := startWSQuiz(t, conn)
	answered := roundTrip[ws.AnsweredResponse](t, conn, ws.RequestPayload{
		Action: ws.ActionAnswer,
		Label:  string(wsCorrect[view.Question.ID]),
	})
	if answered.Event != ws.EventAnswered {
		t.Fatalf("first answer = %+v", answered)
	}

	limited := roundTrip[ws.ErrorResponse](t, conn, ws.RequestPayload{
		Action: ws.ActionAnswer,
		Label:  string(wsCorrect[answered.Session.Question.ID]),
	})
	if limited.Event != ws.EventError || limited.Code != "RATE_LIMIT_EXCEEDED" {
		t.Fatalf("second answer = %+v", limited)
	}

	// The HTTP answer route draws from the same bucket.
	if limiter.Allow(middleware.UserRateKey(42)) {
		t.Fatal("limiter still has tokens for user 42")
	}
	if !limiter.Allow(middleware.UserRateKey(43)) {
		t.Fatal("other users must keep their own bucket")
	}

	// Non-answer frames are not throttled.
	state := roundTrip[ws.StateResponse](t, conn, ws.RequestPayload{Action: ws.ActionState})
	if state.Session.Answered != 1 {
		t.Fatalf("state = %+v", state.Session)
	}
}
