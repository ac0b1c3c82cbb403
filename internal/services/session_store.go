package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sortyourtrip/hotel-crm-backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the session id is unknown or already discarded
	ErrSessionNotFound = errors.New("booking session not found")

	// ErrSessionExpired indicates the session passed its TTL
	ErrSessionExpired = errors.New("booking session has expired")

	// ErrWorkflowBusy indicates another workflow operation is in flight for
	// the session. The trigger is a no-op in that case; no network call is
	// made.
	ErrWorkflowBusy = errors.New("a booking operation is already in progress for this session")
)

type sessionEntry struct {
	session *models.BookingSession
	mu      sync.Mutex
}

// SessionStore keeps booking sessions in memory. Sessions are ephemeral:
// one per open voucher modal, discarded on close, success, or TTL expiry.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionEntry
	ttl      time.Duration
	logger   *logrus.Logger

	janitorStop chan struct{}
	janitorOnce sync.Once
}

// NewSessionStore creates a new in-memory session store
func NewSessionStore(ttl time.Duration, logger *logrus.Logger) *SessionStore {
	return &SessionStore{
		sessions:    make(map[uuid.UUID]*sessionEntry),
		ttl:         ttl,
		logger:      logger,
		janitorStop: make(chan struct{}),
	}
}

// Create registers a new session and stamps its TTL
func (s *SessionStore) Create(session *models.BookingSession) {
	now := time.Now()
	session.CreatedAt = now
	session.ExpiresAt = now.Add(s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = &sessionEntry{session: session}
}

// Get returns the session without locking it. Callers must not mutate the
// result; use Acquire for mutations.
func (s *SessionStore) Get(id uuid.UUID) (*models.BookingSession, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if entry.session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return entry.session, nil
}

// View runs fn with the session locked against concurrent workflow
// operations. Unlike Acquire it waits for an in-flight operation to finish
// instead of failing, so status reads always observe a settled session.
// fn must copy out what it needs and must not retain the session.
func (s *SessionStore) View(id uuid.UUID, fn func(*models.BookingSession)) error {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.session.IsExpired() {
		return ErrSessionExpired
	}
	fn(entry.session)
	return nil
}

// Acquire locks the session for one workflow operation and returns it with
// a release func. If another operation holds the lock the call fails
// immediately with ErrWorkflowBusy instead of queueing, which keeps the
// single-in-flight guarantee: a second trigger produces no work at all.
func (s *SessionStore) Acquire(id uuid.UUID) (*models.BookingSession, func(), error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	if entry.session.IsExpired() {
		return nil, nil, ErrSessionExpired
	}
	if !entry.mu.TryLock() {
		return nil, nil, ErrWorkflowBusy
	}
	return entry.session, entry.mu.Unlock, nil
}

// Delete discards a session
func (s *SessionStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Count returns the number of live sessions
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor sweeps expired sessions on the given interval until Stop
// is called.
func (s *SessionStore) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.janitorStop:
				return
			}
		}
	}()
}

// Stop terminates the janitor loop
func (s *SessionStore) Stop() {
	s.janitorOnce.Do(func() {
		close(s.janitorStop)
	})
}

func (s *SessionStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.sessions {
		if entry.session.IsExpired() {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.WithFields(logrus.Fields{
			"removed":   removed,
			"remaining": len(s.sessions),
		}).Info("Expired booking sessions swept")
	}
}
