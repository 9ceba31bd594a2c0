package service

import (
	"context"
	"io"
	"sync"

	"signage/internal/storage"
)

// recordingNotifier records every tenant it is told about.
type recordingNotifier struct {
	mu      sync.Mutex
	touched []string
}

func (n *recordingNotifier) Touch(_ context.Context, tenant string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.touched = append(n.touched, tenant)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.touched)
}

// memStorage keeps files in memory.
type memStorage struct {
	mu        sync.Mutex
	files     map[string][]byte
	deleteErr error
}

var _ storage.Storage = (*memStorage)(nil)

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func (m *memStorage) Save(_ context.Context, name string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return int64(len(data)), nil
}

func (m *memStorage) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.files, name)
	return nil
}

func (m *memStorage) URL(name string) string { return "/uploads/" + name }

func (m *memStorage) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

func (m *memStorage) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
