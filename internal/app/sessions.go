package app

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	titleMaxRunes    = 40
	placeholderTitle = "New conversation"
)

// SessionStore owns the session collection: id -> ordered message list plus
// the current-session pointer. Every mutation is written through to Storage
// before the call returns, so a crash after a completed call never loses
// that call's effect.
type SessionStore struct {
	storage Storage
	logger  *Logger

	// First message of every new session.
	greeting string

	mu       sync.Mutex
	sessions map[string]*Session
	current  string
}

func NewSessionStore(storage Storage, greeting string, logger *Logger) *SessionStore {
	s := &SessionStore{
		storage:  storage,
		logger:   logger,
		greeting: greeting,
		sessions: make(map[string]*Session),
	}
	s.load()
	return s
}

// load reads the persisted collection once at startup. A document that does
// not parse as a mapping is discarded and logged, never surfaced as fatal.
func (s *SessionStore) load() {
	data, err := s.storage.Load(StorageKeySessions)
	if err != nil {
		if err != ErrNotFound {
			s.logger.Error("load sessions", map[string]interface{}{"error": err.Error()})
		}
		return
	}
	var parsed map[string]*Session
	if err := json.Unmarshal(data, &parsed); err != nil {
		s.logger.Warn("discarding corrupt session document", map[string]interface{}{"error": err.Error()})
		_ = s.storage.Clear(StorageKeySessions)
		return
	}
	for id, sess := range parsed {
		if sess == nil {
			continue
		}
		sess.ID = id
		s.sessions[id] = sess
	}
}

// persist writes the full collection. Caller holds s.mu.
func (s *SessionStore) persist() error {
	if len(s.sessions) == 0 {
		return s.storage.Clear(StorageKeySessions)
	}
	data, err := json.Marshal(s.sessions)
	if err != nil {
		return err
	}
	return s.storage.Save(StorageKeySessions, data)
}

func (s *SessionStore) newSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Messages:  []Message{NewMessage(RoleModel, s.greeting)},
	}
}

// Create makes a fresh session seeded with the greeting message, inserts it,
// and marks it current.
func (s *SessionStore) Create() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.newSession()
	s.sessions[sess.ID] = sess
	s.current = sess.ID
	return sess.ID, s.persist()
}

// Select points the store at an existing session. Unknown ids return
// ErrSessionNotFound and leave the current pointer unchanged.
func (s *SessionStore) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	s.current = id
	return nil
}

// Append adds msg to the session's ordered list. An unknown (or empty) id
// models the first message of a brand-new conversation: the session is
// created with the greeting as element zero, made current, and msg appended
// after it. Returns the id the message landed in.
func (s *SessionStore) Append(id string, msg Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = s.newSession()
		s.sessions[sess.ID] = sess
		s.current = sess.ID
	}
	sess.Messages = append(sess.Messages, msg)
	return sess.ID, s.persist()
}

// Delete removes the session and, if it was current, clears the current
// pointer. Deleting an unknown id is a no-op.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return nil
	}
	delete(s.sessions, id)
	if s.current == id {
		s.current = ""
	}
	return s.persist()
}

// Current returns a snapshot of the current session, or false when none is
// selected.
func (s *SessionStore) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[s.current]
	if !ok {
		return Session{}, false
	}
	return snapshot(sess), true
}

// CurrentID returns the current session id, empty when none.
func (s *SessionStore) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Messages returns a snapshot of a session's message list.
func (s *SessionStore) Messages(id string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := make([]Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out, nil
}

// List returns all sessions newest-created-first with their derived titles.
func (s *SessionStore) List() []SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summarize(func(*Session) bool { return true })
}

// Search returns the sessions whose message text contains term,
// case-insensitive, newest-created-first. A blank term matches everything.
func (s *SessionStore) Search(term string) []SessionSummary {
	term = strings.ToLower(strings.TrimSpace(term))
	s.mu.Lock()
	defer s.mu.Unlock()
	if term == "" {
		return s.summarize(func(*Session) bool { return true })
	}
	return s.summarize(func(sess *Session) bool {
		for _, m := range sess.Messages {
			if strings.Contains(strings.ToLower(m.Text), term) {
				return true
			}
		}
		return false
	})
}

// summarize builds the sorted listing for sessions matching keep. Caller
// holds s.mu.
func (s *SessionStore) summarize(keep func(*Session) bool) []SessionSummary {
	out := make([]SessionSummary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if !keep(sess) {
			continue
		}
		out = append(out, SessionSummary{
			ID:        sess.ID,
			Title:     deriveTitle(sess.Messages),
			CreatedAt: sess.CreatedAt,
			Messages:  len(sess.Messages),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Reset drops every session and clears the stored document.
func (s *SessionStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*Session)
	s.current = ""
	return s.persist()
}

// Len reports how many sessions exist.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func snapshot(sess *Session) Session {
	out := *sess
	out.Messages = make([]Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return out
}

// deriveTitle takes the first user-authored message, truncated to a fixed
// display length. Sessions without a user message yet get a placeholder.
func deriveTitle(msgs []Message) string {
	for _, m := range msgs {
		if m.Role != RoleUser {
			continue
		}
		runes := []rune(m.Text)
		if len(runes) > titleMaxRunes {
			return string(runes[:titleMaxRunes]) + "…"
		}
		return m.Text
	}
	return placeholderTitle
}
