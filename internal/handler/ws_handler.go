package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/mcq-engine/internal/middleware"
	"github.com/stemsi/mcq-engine/internal/model"
	"github.com/stemsi/mcq-engine/internal/response"
	"github.com/stemsi/mcq-engine/internal/service"
	"github.com/stemsi/mcq-engine/internal/validator"
	ws "github.com/stemsi/mcq-engine/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler drives a quiz session over a WebSocket, for chat transports
// that keep a connection per user.
type WSHandler struct {
	sessions      *service.SessionStore
	answerLimiter *middleware.RateLimiter
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. answerLimiter is shared with the
// HTTP answer route so both transports draw from one bucket per user.
func NewWSHandler(sessions *service.SessionStore, answerLimiter *middleware.RateLimiter, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions:      sessions,
		answerLimiter: answerLimiter,
		log:           log.With().Str("component", "ws_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// QuizStream godoc
// WS /ws/v1/quiz?token=
// Upgrades to WebSocket and applies one session operation per frame.
func (h *WSHandler) QuizStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	userID := claims.UserID
	wsLog := h.log.With().Int64("user_id", userID).Logger()
	wsLog.Info().Msg("User connected")

	ctx := c.Request.Context()
	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		// Resolve per frame: another transport may have replaced the session.
		h.dispatch(ctx, conn, wsLog, userID, &msg)
	}
}

func (h *WSHandler) dispatch(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, userID int64, msg *ws.RequestPayload) {
	session := h.sessions.Get(userID)

	switch msg.Action {
	case ws.ActionPing:
		ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})

	case ws.ActionState:
		h.writeState(conn, session)

	case ws.ActionStart:
		h.writeState(conn, h.sessions.Replace(userID))

	case ws.ActionExam:
		req := model.SelectExamRequest{Exam: msg.Exam}
		if !h.validate(conn, &req) {
			return
		}
		if err := session.SelectExam(ctx, req.Exam); err != nil {
			h.writeError(conn, wsLog, err)
			return
		}
		h.writeState(conn, session)

	case ws.ActionTopic:
		req := model.SelectTopicRequest{Topic: msg.Topic}
		if !h.validate(conn, &req) {
			return
		}
		if err := session.SelectTopic(ctx, req.Topic); err != nil {
			h.writeError(conn, wsLog, err)
			return
		}
		h.writeState(conn, session)

	case ws.ActionAnswer:
		if h.answerLimiter != nil && !h.answerLimiter.Allow(middleware.UserRateKey(userID)) {
			ws.WriteError(conn, string(response.ErrRateLimitExceeded), response.GetMessage(response.ErrRateLimitExceeded))
			return
		}
		h.handleAnswer(ctx, conn, wsLog, session, msg)

	case ws.ActionReview:
		req := model.EnterReviewRequest{Mode: msg.Mode}
		if !h.validate(conn, &req) {
			return
		}
		mode := model.ReviewMode(req.Mode)
		item, err := session.EnterReview(mode)
		if errors.Is(err, service.ErrNothingToReview) {
			ws.WriteTyped(conn, ws.ReviewResponse{
				Event:   ws.EventReview,
				Review:  model.ReviewItem{Mode: mode, Finished: true},
				Message: response.GetMessage(response.ErrNothingToReview),
			})
			return
		}
		h.writeReview(conn, wsLog, item, err)

	case ws.ActionCurrent:
		item, err := session.ReviewCurrent()
		h.writeReview(conn, wsLog, item, err)

	case ws.ActionNext:
		item, err := session.ReviewNext()
		h.writeReview(conn, wsLog, item, err)

	case ws.ActionPrev:
		item, err := session.ReviewPrev()
		h.writeReview(conn, wsLog, item, err)

	case ws.ActionExit:
		if err := session.ExitReview(); err != nil {
			h.writeError(conn, wsLog, err)
			return
		}
		h.writeState(conn, session)

	case ws.ActionReset:
		session.Reset()
		h.writeState(conn, session)

	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
	}
}

// handleAnswer scores the pending question. A timer-driven client sends
// label NONE when the question expires.
func (h *WSHandler) handleAnswer(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, session *service.QuizSession, msg *ws.RequestPayload) {
	req := model.SubmitAnswerRequest{Label: msg.Label}
	if !h.validate(conn, &req) {
		return
	}

	attempt, err := session.SubmitAnswer(ctx, model.OptionLabel(req.Label))
	if err != nil {
		h.writeError(conn, wsLog, err)
		return
	}

	out := ws.AnsweredResponse{
		Event:   ws.EventAnswered,
		Attempt: attempt,
		Correct: attempt.IsCorrect(),
		Session: session.View(),
	}
	if out.Session.Status == model.SessionStatusCompleted {
		out.Event = ws.EventCompleted
		if result, err := session.Result(); err == nil {
			out.Result = &result
		}
	}
	ws.WriteTyped(conn, out)
}

func (h *WSHandler) validate(conn *websocket.Conn, req interface{}) bool {
	fields := validator.Struct(req)
	if fields == nil {
		return true
	}
	msgs := make([]string, 0, len(fields))
	for _, m := range fields {
		msgs = append(msgs, m)
	}
	ws.WriteError(conn, string(response.ErrValidation), strings.Join(msgs, "; "))
	return false
}

func (h *WSHandler) writeState(conn *websocket.Conn, session *service.QuizSession) {
	ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, Session: session.View()})
}

func (h *WSHandler) writeReview(conn *websocket.Conn, wsLog zerolog.Logger, item model.ReviewItem, err error) {
	if err != nil {
		h.writeError(conn, wsLog, err)
		return
	}
	ws.WriteTyped(conn, ws.ReviewResponse{Event: ws.EventReview, Review: item})
}

func (h *WSHandler) writeError(conn *websocket.Conn, wsLog zerolog.Logger, err error) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		wsLog.Error().Err(err).Msg("Quiz operation failed")
	}
	ws.WriteError(conn, string(code), response.GetMessage(code))
}
