// Package session keeps chat sessions in memory with a hard cap on the number
// of sessions and on the messages each one retains.
package session

import (
	"sync"
	"time"

	"chat-assistant/internal/domain"
	"chat-assistant/internal/domain/model"
	"chat-assistant/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Config struct {
	MaxSessions int
	MaxMessages int
	IdleTimeout time.Duration
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid generator used for empty session ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store owns every Session. All reads hand out copies; callers never hold a
// pointer into the map.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	cfg      Config
	now      func() time.Time
	newID    func() string
	log      *zerolog.Logger

	// afterScan runs between the Reap scan and the removals; tests only.
	afterScan func()
}

// New returns an empty store. Zero limits in cfg fall back to 1000 sessions,
// 50 messages and a 30 minute idle timeout.
func New(cfg Config, logger *zerolog.Logger, opts ...Option) *Store {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 50
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	l := logger.With().Str("component", "SessionStore").Logger()
	s := &Store{
		sessions: make(map[string]*model.Session),
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      &l,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Resolve returns the session for id, creating it when absent. An empty id
// gets a generated one. Existing sessions are touched.
func (s *Store) Resolve(id string) model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			sess.Touch(now)
			return clone(sess)
		}
	} else {
		id = s.newID()
	}

	if len(s.sessions) >= s.cfg.MaxSessions {
		s.evictOldestLocked()
	}
	sess := model.NewSession(id, now)
	s.sessions[id] = sess
	metrics.IncSessionCreated()
	metrics.SetSessionsActive(len(s.sessions))
	s.log.Debug().Str("session_id", id).Int("active", len(s.sessions)).Msg("session created")
	return clone(sess)
}

// evictOldestLocked drops the least recently active session. Ties go to
// whichever the map yields first.
func (s *Store) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, sess := range s.sessions {
		if oldestID == "" || sess.LastActivity.Before(oldestAt) {
			oldestID, oldestAt = id, sess.LastActivity
		}
	}
	if oldestID == "" {
		return
	}
	delete(s.sessions, oldestID)
	metrics.AddSessionsRemoved("evicted", 1)
	s.log.Info().Str("session_id", oldestID).Time("last_activity", oldestAt).Msg("session evicted at capacity")
}

// Append adds one message, touching the session and dropping the oldest
// messages beyond MaxMessages.
func (s *Store) Append(id string, role model.Role, content string, metadata map[string]any) (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return model.Message{}, domain.ErrSessionNotFound
	}
	before := len(sess.Messages) + 1
	msg := sess.AddMessage(role, content, metadata, s.cfg.MaxMessages, s.now())
	metrics.AddMessagesTruncated(before - len(sess.Messages))
	return msg, nil
}

// History returns a copy of the session's messages, oldest first.
func (s *Store) History(id string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := make([]model.Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out, nil
}

// Get reads a session without touching it.
func (s *Store) Get(id string) (model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, false
	}
	return clone(sess), true
}

// Remove ends a session. It reports whether the session existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	metrics.AddSessionsRemoved("ended", 1)
	metrics.SetSessionsActive(len(s.sessions))
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) SetPreference(id, key string, value any) error {
	return s.update(id, func(sess *model.Session) { sess.SetPreference(key, value) })
}

func (s *Store) SetContext(id, key string, value any) error {
	return s.update(id, func(sess *model.Session) { sess.SetContext(key, value) })
}

func (s *Store) update(id string, fn func(*model.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	fn(sess)
	return nil
}

// Reap removes sessions idle for longer than IdleTimeout as of now. Candidates
// come from a snapshot of activity timestamps; a session touched after the
// snapshot was taken is kept.
func (s *Store) Reap(now time.Time) int {
	type seen struct {
		id   string
		last time.Time
	}

	s.mu.Lock()
	var expired []seen
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > s.cfg.IdleTimeout {
			expired = append(expired, seen{id, sess.LastActivity})
		}
	}
	s.mu.Unlock()

	if s.afterScan != nil {
		s.afterScan()
	}

	removed := 0
	for _, e := range expired {
		s.mu.Lock()
		if sess, ok := s.sessions[e.id]; ok && sess.LastActivity.Equal(e.last) {
			delete(s.sessions, e.id)
			removed++
		}
		s.mu.Unlock()
	}

	if removed > 0 {
		metrics.AddSessionsRemoved("idle", removed)
		s.log.Debug().Int("removed", removed).Msg("idle sessions reaped")
	}
	metrics.SetSessionsActive(s.Len())
	return removed
}

// Now exposes the store clock so the reaper shares it.
func (s *Store) Now() time.Time { return s.now() }

func clone(sess *model.Session) model.Session {
	out := *sess
	out.Messages = make([]model.Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	out.Preferences = copyMap(sess.Preferences)
	out.Context = copyMap(sess.Context)
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
