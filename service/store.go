package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/LACSistemas/EscriturasNew-sub000/config"
	"github.com/LACSistemas/EscriturasNew-sub000/model"
)

// SessionStore is an in-memory store for workflow sessions
// In production, this should be replaced with a database
type SessionStore struct {
	sessions    map[string]*model.Session
	mu          sync.RWMutex
	maxSessions int           // Maximum sessions to keep, 0 = unlimited
	ttl         time.Duration // Idle expiry, 0 = never
}

// NewSessionStore creates a session store with the configured limits.
func NewSessionStore(cfg *config.StoreConfig) *SessionStore {
	maxSessions := cfg.MaxSessions
	if maxSessions < 0 {
		maxSessions = 0
	}
	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl < 0 {
		ttl = 0
	}
	slog.Info("session store initialized", "max_sessions", maxSessions, "ttl", ttl)
	return &SessionStore{
		sessions:    make(map[string]*model.Session),
		maxSessions: maxSessions,
		ttl:         ttl,
	}
}

func (s *SessionStore) Put(session *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.UpdatedAt = time.Now()
	s.sessions[session.ID] = session

	// Cleanup if exceeds max
	s.cleanupIfNeeded()
}

func (s *SessionStore) Get(id string) (*model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Count returns the number of sessions in the store
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle past the TTL. Meant to run periodically from
// a background goroutine.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			slog.Info("expiring idle session",
				"session_id", id,
				"updated_at", session.UpdatedAt,
			)
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// cleanupIfNeeded removes oldest sessions if store exceeds maxSessions
// Must be called with lock held
func (s *SessionStore) cleanupIfNeeded() {
	if s.maxSessions <= 0 {
		return // Unlimited
	}

	if len(s.sessions) <= s.maxSessions {
		return
	}

	// Sort sessions by creation time
	sessions := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	// Remove oldest sessions
	removeCount := len(sessions) - s.maxSessions
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old session",
			"session_id", sessions[i].ID,
			"created_at", sessions[i].CreatedAt,
		)
		delete(s.sessions, sessions[i].ID)
	}
}
