package kvstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps slots in process memory. Used when nothing should
// outlive the process and in tests.
type MemoryBackend struct {
	mu       sync.Mutex
	slots    map[string][]byte
	writeErr error
	readErr  error
	writes   int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: make(map[string][]byte)}
}

func (m *MemoryBackend) ReadSlot(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, false, m.readErr
	}
	payload, ok := m.slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), payload...), true, nil
}

func (m *MemoryBackend) WriteSlot(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.slots[key] = append([]byte(nil), payload...)
	m.writes++
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

// Put seeds a raw payload, bypassing encoding.
func (m *MemoryBackend) Put(key string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = append([]byte(nil), payload...)
}

// Raw returns the stored payload for key.
func (m *MemoryBackend) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.slots[key]
	return payload, ok
}

// FailWrites makes subsequent writes return err; nil restores normal behaviour.
func (m *MemoryBackend) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// FailReads makes subsequent reads return err; nil restores normal behaviour.
func (m *MemoryBackend) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// Writes counts successful writes.
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
