// internal/infrastructure/storage/memory.go
package storage

import (
	"context"
	"sync"

	"github.com/agri-oasis/storefront/internal/domain/session"
)

// Memory keeps slots in process memory. Data is lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Name() string { return "memory" }

// ForClient returns the slots of clientID
func (m *Memory) ForClient(clientID string) (session.Slots, error) {
	if err := checkClientID(clientID); err != nil {
		return nil, err
	}
	return &memorySlots{backend: m, clientID: clientID}, nil
}

type memorySlots struct {
	backend  *Memory
	clientID string
}

func (s *memorySlots) Get(_ context.Context, key string) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	v, ok := s.backend.data[slotKey(s.clientID, key)]
	return v, ok, nil
}

func (s *memorySlots) Set(_ context.Context, key, value string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	s.backend.data[slotKey(s.clientID, key)] = value
	return nil
}

// Refresh reports whether keys are present. Memory slots never expire.
func (s *memorySlots) Refresh(_ context.Context, keys ...string) (bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	for _, key := range keys {
		if _, ok := s.backend.data[slotKey(s.clientID, key)]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *memorySlots) Remove(_ context.Context, keys ...string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	for _, key := range keys {
		delete(s.backend.data, slotKey(s.clientID, key))
	}
	return nil
}
