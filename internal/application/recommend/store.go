package recommend

import (
	"slices"
	"sync"

	"github.com/pension/backend/internal/domain/profile"
)

// Store owns user profiles and recommendation history.
// lockUser serializes work on one user; the maps themselves sit behind mu.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*profile.UserProfile
	history  map[string][]RecommendationRecord

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		profiles: make(map[string]*profile.UserProfile),
		history:  make(map[string][]RecommendationRecord),
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockUser takes the per-user lock and returns its release
func (s *Store) lockUser(userID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// PutProfile registers or replaces a profile
func (s *Store) PutProfile(userID string, p *profile.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.profiles[userID] = &cp
	if _, ok := s.history[userID]; !ok {
		s.history[userID] = []RecommendationRecord{}
	}
}

// Profile returns a copy of the stored profile
func (s *Store) Profile(userID string) (*profile.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// HasUser reports whether the user has a profile or any history
func (s *Store) HasUser(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, hasProfile := s.profiles[userID]
	_, hasHistory := s.history[userID]
	return hasProfile || hasHistory
}

// UserCount returns the number of registered profiles
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// AppendHistory adds a record to the end of the user's history
func (s *Store) AppendHistory(userID string, rec RecommendationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[userID] = append(s.history[userID], rec)
}

// History returns the user's records, oldest first
func (s *Store) History(userID string) []RecommendationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.history[userID])
	if out == nil {
		out = []RecommendationRecord{}
	}
	return out
}

// ClearHistory empties the user's history
func (s *Store) ClearHistory(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.history[userID]; ok {
		s.history[userID] = []RecommendationRecord{}
	}
}

// HistorySnapshot copies the whole history map
func (s *Store) HistorySnapshot() map[string][]RecommendationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]RecommendationRecord, len(s.history))
	for id, recs := range s.history {
		out[id] = slices.Clone(recs)
		if out[id] == nil {
			out[id] = []RecommendationRecord{}
		}
	}
	return out
}

// ReplaceHistory swaps in a whole history map
func (s *Store) ReplaceHistory(history map[string][]RecommendationRecord) {
	if history == nil {
		history = make(map[string][]RecommendationRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = history
}
