package settings

import (
	"context"
	"sync"
)

// Backend persists raw setting values. Every method is atomic for its key;
// there are no cross-key transactions.
type Backend interface {
	GetValue(ctx context.Context, name string) (value string, ok bool, err error)
	SetValue(ctx context.Context, name, value string) error
	DeleteValue(ctx context.Context, name string) error

	// ListItems returns ids in insertion order.
	ListItems(ctx context.Context, name string) ([]int64, error)
	// AddItem appends id unless present and reports whether it was added.
	AddItem(ctx context.Context, name string, id int64) (bool, error)
	// RemoveItem deletes id and reports whether it was present.
	RemoveItem(ctx context.Context, name string, id int64) (bool, error)

	Close() error
}

// MemoryBackend keeps settings in process memory.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string
	lists  map[string][]int64
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: make(map[string]string),
		lists:  make(map[string][]int64),
	}
}

func (m *MemoryBackend) GetValue(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *MemoryBackend) SetValue(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

func (m *MemoryBackend) DeleteValue(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
	return nil
}

func (m *MemoryBackend) ListItems(_ context.Context, name string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.lists[name]
	out := make([]int64, len(items))
	copy(out, items)
	return out, nil
}

func (m *MemoryBackend) AddItem(_ context.Context, name string, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.lists[name] {
		if v == id {
			return false, nil
		}
	}
	m.lists[name] = append(m.lists[name], id)
	return true, nil
}

func (m *MemoryBackend) RemoveItem(_ context.Context, name string, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.lists[name]
	for i, v := range items {
		if v == id {
			m.lists[name] = append(items[:i:i], items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryBackend) Close() error { return nil }
