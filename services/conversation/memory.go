package conversation

import (
	"context"
	"sync"

	"tempobook/models"
)

// MemoryStore is an in-process Store used in tests and single-node
// development runs.
type MemoryStore struct {
	mu     sync.Mutex
	logs   map[string][]models.Turn
	maxLen int
}

func NewMemoryStore(maxLen int) *MemoryStore {
	return &MemoryStore{
		logs:   make(map[string][]models.Turn),
		maxLen: maxLen,
	}
}

func (s *MemoryStore) Append(_ context.Context, identity string, turn models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := append(s.logs[identity], turn)
	if len(log) > s.maxLen {
		log = log[len(log)-s.maxLen:]
	}
	s.logs[identity] = log
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, identity string, maxCount int) ([]models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logs[identity]
	if len(log) > maxCount {
		log = log[len(log)-maxCount:]
	}
	out := make([]models.Turn, len(log))
	copy(out, log)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, identity)
	return nil
}
