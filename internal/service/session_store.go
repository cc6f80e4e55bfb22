package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// SessionStore maps user identities to their live quiz session.
// Sessions live in memory only and are lost on restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*storedSession
	deps     *sessionDeps
}

type storedSession struct {
	session  *QuizSession
	lastSeen atomic.Int64 // unix nanoseconds
}

func (e *storedSession) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

// StoreOption customises a SessionStore.
type StoreOption func(*sessionDeps)

// WithClock overrides the completion timestamp source. Idle tracking uses
// the same clock.
func WithClock(now func() time.Time) StoreOption {
	return func(d *sessionDeps) {
		d.now = now
	}
}

// NewSessionStore creates an empty store whose sessions sample from
// questions and record their scores into scores.
func NewSessionStore(questions QuestionRepository, scores ScoreRepository, log zerolog.Logger, opts ...StoreOption) *SessionStore {
	deps := &sessionDeps{
		questions: questions,
		sampler:   NewSampler(questions),
		scores:    scores,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.With().Str("component", "quiz_session").Logger(),
	}
	for _, opt := range opts {
		opt(deps)
	}
	return &SessionStore{
		sessions: make(map[int64]*storedSession),
		deps:     deps,
	}
}

// Get returns the user's session, creating an AWAITING_EXAM one if needed.
func (st *SessionStore) Get(userID int64) *QuizSession {
	now := st.deps.now()

	st.mu.RLock()
	e, ok := st.sessions[userID]
	st.mu.RUnlock()
	if ok {
		e.touch(now)
		return e.session
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	// Another request may have created it while we waited for the lock.
	if e, ok := st.sessions[userID]; ok {
		e.touch(now)
		return e.session
	}
	return st.install(userID, now)
}

// Replace discards the user's session and installs a fresh one.
func (st *SessionStore) Replace(userID int64) *QuizSession {
	now := st.deps.now()

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.install(userID, now)
}

// install requires st.mu held for writing.
func (st *SessionStore) install(userID int64, now time.Time) *QuizSession {
	e := &storedSession{session: newQuizSession(userID, st.deps)}
	e.touch(now)
	st.sessions[userID] = e
	return e.session
}

// PruneIdle forgets sessions nobody has fetched for longer than maxIdle
// and returns how many were dropped. A non-positive maxIdle keeps all.
func (st *SessionStore) PruneIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := st.deps.now().Add(-maxIdle).UnixNano()

	st.mu.Lock()
	defer st.mu.Unlock()

	pruned := 0
	for userID, e := range st.sessions {
		if e.lastSeen.Load() < cutoff {
			delete(st.sessions, userID)
			pruned++
		}
	}
	return pruned
}

// RunPruner calls PruneIdle every interval until ctx is cancelled.
func (st *SessionStore) RunPruner(ctx context.Context, maxIdle, interval time.Duration) {
	if maxIdle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := st.deps.log.With().Str("component", "session_store").Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.PruneIdle(maxIdle); n > 0 {
				log.Info().Int("pruned", n).Int("live", st.Len()).Msg("Idle sessions dropped")
			}
		}
	}
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
