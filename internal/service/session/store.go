package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pyittinehtaung/pth-client/internal/model/chat"
	"github.com/pyittinehtaung/pth-client/internal/store"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoAssistantTail = errors.New("last message is not an assistant message")
)

// Store is the authoritative in-memory model of all sessions plus the
// active-session pointer. Every mutation is atomic under the lock and is
// mirrored to the persistent adapter before the call returns.
type Store struct {
	mu      sync.RWMutex
	adapter store.Adapter

	sessions []chat.Session // newest first
	activeID string
	theme    string
	profile  *chat.Profile

	now func() time.Time
}

// NewStore wraps a persistent adapter. Call Init before first use.
func NewStore(adapter store.Adapter) *Store {
	return &Store{
		adapter: adapter,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Init loads persisted state, or falls back to a fresh default session when
// the store is empty, unreadable, or corrupt. The collection is guaranteed
// non-empty with a valid active pointer afterwards.
func (s *Store) Init(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.adapter.Load(ctx)
	if err != nil {
		log.Printf("[session] persisted state unreadable, starting fresh: %v", err)
	}
	if snap != nil {
		s.adopt(snap)
	}

	if len(s.sessions) == 0 {
		s.createLocked()
	}
	if !s.hasLocked(s.activeID) {
		s.activeID = s.sessions[0].ID
	}
	s.persistLocked(ctx)
}

// adopt takes over persisted sessions, dropping records that are missing
// required fields rather than failing.
func (s *Store) adopt(snap *chat.Snapshot) {
	for _, sess := range snap.Sessions {
		if sess.ID == "" || len(sess.Messages) == 0 {
			continue
		}
		if sess.Title == "" {
			sess.Title = chat.DefaultTitle
		}
		s.sessions = append(s.sessions, sess)
	}
	s.activeID = snap.ActiveID
	s.theme = snap.Theme
	s.profile = snap.Profile
}

// CreateSession inserts a new session seeded with the greeting, makes it
// active and returns its id.
func (s *Store) CreateSession(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.createLocked()
	s.persistLocked(ctx)
	return id
}

func (s *Store) createLocked() string {
	now := s.now()
	sess := chat.Session{
		ID:        uuid.NewString(),
		Title:     chat.DefaultTitle,
		Messages:  []chat.Message{{Role: chat.RoleAssistant, Text: chat.Greeting, CreatedAt: now}},
		CreatedAt: now,
	}
	s.sessions = append([]chat.Session{sess}, s.sessions...)
	s.activeID = sess.ID
	return sess.ID
}

// DeleteSession removes a session. Deleting the active session activates the
// first remaining one; deleting the last remaining session immediately
// creates and activates a fresh default session. Unknown ids are a no-op.
func (s *Store) DeleteSession(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if len(s.sessions) == 0 {
		s.createLocked()
	} else if s.activeID == id {
		s.activeID = s.sessions[0].ID
	}
	s.persistLocked(ctx)
}

// SetActive switches the active session. Unknown ids are a no-op.
func (s *Store) SetActive(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasLocked(id) {
		return
	}
	s.activeID = id
	s.persistLocked(ctx)
}

// ActiveID returns the id of the active session.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Sessions returns a fresh copy of the collection, newest first.
func (s *Store) Sessions() []chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chat.Session, len(s.sessions))
	for i := range s.sessions {
		out[i] = copySession(s.sessions[i])
	}
	return out
}

// Session returns a fresh copy of one session.
func (s *Store) Session(id string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return copySession(s.sessions[i]), nil
		}
	}
	return chat.Session{}, ErrSessionNotFound
}

// AppendMessage appends to a session's sequence. The first user message of a
// fresh session also sets the session title.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	sess.Messages = append(sess.Messages, msg)
	if msg.Role == chat.RoleUser && sess.Title == chat.DefaultTitle {
		sess.Title = chat.TitleFrom(msg.Text)
	}

	s.persistLocked(ctx)
	return nil
}

// MutateLastAssistantMessage replaces the text of the trailing message, which
// must be an assistant message. It exists only to support in-place streaming
// updates and error finalization of the reserved placeholder.
func (s *Store) MutateLastAssistantMessage(ctx context.Context, sessionID, newText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.findLocked(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}
	if len(sess.Messages) == 0 {
		return ErrNoAssistantTail
	}

	last := &sess.Messages[len(sess.Messages)-1]
	if last.Role != chat.RoleAssistant {
		return ErrNoAssistantTail
	}
	last.Text = newText

	s.persistLocked(ctx)
	return nil
}

// Theme returns the persisted theme preference.
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme updates the persisted theme preference.
func (s *Store) SetTheme(ctx context.Context, theme string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	s.persistLocked(ctx)
}

// Profile returns the display-only profile record, if any.
func (s *Store) Profile() *chat.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// SetProfile updates the display-only profile record.
func (s *Store) SetProfile(ctx context.Context, p *chat.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	s.persistLocked(ctx)
}

func (s *Store) findLocked(id string) *chat.Session {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return &s.sessions[i]
		}
	}
	return nil
}

func (s *Store) hasLocked(id string) bool {
	return s.findLocked(id) != nil
}

// persistLocked pushes a full snapshot write-through. A degraded store is
// logged, never fatal to the session.
func (s *Store) persistLocked(ctx context.Context) {
	snap := &chat.Snapshot{
		Sessions: s.sessions,
		ActiveID: s.activeID,
		Theme:    s.theme,
		Profile:  s.profile,
	}
	if err := s.adapter.Save(ctx, snap); err != nil {
		log.Printf("[session] write-through persist failed: %v", err)
	}
}

func copySession(sess chat.Session) chat.Session {
	msgs := make([]chat.Message, len(sess.Messages))
	copy(msgs, sess.Messages)
	sess.Messages = msgs
	return sess
}
