package db

import (
	"context"
	"sync"
)

// Memory is a process-local backend, used by tests and by --backend=memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	revs map[string]int64
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte), revs: make(map[string]int64)}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, value)
	return nil
}

func (m *Memory) Update(_ context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current []byte
	if v, ok := m.data[key]; ok {
		current = append([]byte(nil), v...)
	}
	next, err := fn(current)
	if err != nil || next == nil {
		return err
	}
	m.setLocked(key, next)
	return nil
}

func (m *Memory) Revision(_ context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revs[key], nil
}

func (m *Memory) setLocked(key string, value []byte) {
	m.data[key] = append([]byte(nil), value...)
	m.revs[key]++
}
