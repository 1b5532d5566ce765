package objectstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Object is a blob held by MemoryStore.
type Object struct {
	Data        []byte
	ContentType string
	Metadata    map[string]string
	ModTime     time.Time
}

// MemoryStore keeps objects in process memory. Each object is buffered in
// full and only becomes visible once the whole body was read, so it is meant
// for tests and local development, not for production-sized uploads.
type MemoryStore struct {
	mu         sync.RWMutex
	containers map[string]map[string]Object
}

func NewMemory() *MemoryStore {
	return &MemoryStore{containers: map[string]map[string]Object{}}
}

func (m *MemoryStore) EnsureContainer(_ context.Context, container string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.containers[container]; !ok {
		m.containers[container] = map[string]Object{}
	}
	return nil
}

func (m *MemoryStore) PutObject(ctx context.Context, container, name string, body io.Reader, opts PutOptions) (int64, error) {
	m.mu.RLock()
	_, ok := m.containers[container]
	m.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrContainerNotFound, container)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return 0, fmt.Errorf("read object body: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	objects, ok := m.containers[container]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrContainerNotFound, container)
	}
	objects[name] = Object{
		Data:        data,
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
		ModTime:     time.Now().UTC(),
	}
	return int64(len(data)), nil
}

// Get returns a stored object.
func (m *MemoryStore) Get(container, name string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.containers[container][name]
	return obj, ok
}

// List returns the sorted object names of a container.
func (m *MemoryStore) List(container string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.containers[container]))
	for name := range m.containers[container] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *MemoryStore) Close() error {
	return nil
}
