package apihandlers

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/surveyforge/surveyforge-backend/pkg/survey/previewengine"
)

var ErrSessionNotFound = errors.New("preview session not found")

type sessionEntry struct {
	ProjectID  string
	Session    *previewengine.PreviewSession
	CreatedAt  time.Time
	LastAccess time.Time
}

// SessionStore keeps active preview sessions in memory, keyed by session ID.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: map[string]*sessionEntry{},
	}
}

func (s *SessionStore) Add(projectID string, session *previewengine.PreviewSession) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID := uuid.New().String()
	now := time.Now()
	s.entries[sessionID] = &sessionEntry{
		ProjectID:  projectID,
		Session:    session,
		CreatedAt:  now,
		LastAccess: now,
	}
	return sessionID
}

func (s *SessionStore) Get(sessionID string) (*previewengine.PreviewSession, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, "", ErrSessionNotFound
	}
	entry.LastAccess = time.Now()
	return entry.Session, entry.ProjectID, nil
}

func (s *SessionStore) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
}

// SessionsForProject returns the active sessions previewing the given project.
func (s *SessionStore) SessionsForProject(projectID string) []*previewengine.PreviewSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := []*previewengine.PreviewSession{}
	for _, entry := range s.entries {
		if entry.ProjectID == projectID {
			sessions = append(sessions, entry.Session)
		}
	}
	return sessions
}

// EvictInactive removes sessions that have not been accessed within maxInactivity.
func (s *SessionStore) EvictInactive(maxInactivity time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxInactivity)
	removed := 0
	for sessionID, entry := range s.entries {
		if entry.LastAccess.Before(cutoff) {
			delete(s.entries, sessionID)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
