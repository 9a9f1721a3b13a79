package overrides

import (
	"context"
	"sync"

	"brightspace-helper/internal/whatif"
)

// MemoryStore keeps overrides for the lifetime of the process.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]whatif.Overrides
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]whatif.Overrides{}}
}

func (m *MemoryStore) Load(_ context.Context, courseId string) (whatif.Overrides, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[courseId], nil
}

func (m *MemoryStore) Save(_ context.Context, courseId string, overrides whatif.Overrides) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[courseId] = overrides
	return nil
}
