package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
)

// MemoryStore keeps sessions in a mutex-guarded map with a background
// janitor sweeping expired records so secret material does not linger.
type MemoryStore struct {
	mu       sync.Mutex
	byID     map[string]*Record
	byUser   map[string]string
	now      func() time.Time
	stopOnce sync.Once
	stop     chan struct{}
}

func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		byID:   make(map[string]*Record),
		byUser: make(map[string]string),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.janitor(sweepInterval)
	}
	return s
}

func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.byID {
		if r.Expired(now) {
			s.evict(id, r.UserID)
		}
	}
}

// evict must be called with the mutex held.
func (s *MemoryStore) evict(sessionID, userID string) {
	if r, ok := s.byID[sessionID]; ok {
		r.SharedSecret = [32]byte{}
		delete(s.byID, sessionID)
	}
	if s.byUser[userID] == sessionID {
		delete(s.byUser, userID)
	}
}

// Close stops the janitor. Pending records are dropped with the process.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) Put(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A session id already held by another user is rejected rather than
	// overwritten: the victim's byUser pointer would otherwise dangle and
	// their later DeleteByUser would evict the new owner's record.
	if prev, ok := s.byID[r.SessionID]; ok && prev.UserID != r.UserID {
		return common.ErrSessionConflict
	}

	if prev, ok := s.byUser[r.UserID]; ok {
		s.evict(prev, r.UserID)
	}

	stored := *r
	s.byID[r.SessionID] = &stored
	s.byUser[r.UserID] = r.SessionID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[sessionID]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	if r.Expired(s.now()) {
		s.evict(sessionID, r.UserID)
		return nil, common.ErrSessionExpired
	}

	out := *r
	return &out, nil
}

func (s *MemoryStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byUser[userID]; ok {
		s.evict(id, userID)
	}
	return nil
}
