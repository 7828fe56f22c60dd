package credentials

import "sync"

// MemoryStore keeps credentials in a mutex-guarded map.
type MemoryStore struct {
	mu        sync.Mutex
	passwords map[string]string
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{passwords: make(map[string]string)}
}

// Authenticate registers or checks username under a single lock.
func (s *MemoryStore) Authenticate(username, password string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.passwords[username]
	if !ok {
		s.passwords[username] = password
		return Registered, nil
	}
	if stored != password {
		return Rejected, nil
	}
	return Authenticated, nil
}

// Count returns the number of registered usernames.
func (s *MemoryStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.passwords), nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}
