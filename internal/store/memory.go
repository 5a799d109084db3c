package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/faizmokh/bridgelog/internal/logbook"
)

// Memory is an in-process Store. Payloads are kept encoded so reads go through
// the normalizer like the other backends.
type Memory struct {
	mu   sync.Mutex
	rows map[string][]byte
	puts int
	now  func() time.Time

	// Fail, when set, is returned by Put.
	Fail error
}

// NewMemory returns an empty Memory store.
func NewMemory(now func() time.Time) *Memory {
	return &Memory{rows: make(map[string][]byte), now: clockOrNow(now)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, identity string) (logbook.State, bool, error) {
	m.mu.Lock()
	data, ok := m.rows[identity]
	m.mu.Unlock()
	if !ok {
		return logbook.State{}, false, nil
	}
	state, err := decode(data, m.now)
	if err != nil {
		return logbook.State{}, false, err
	}
	return state, true, nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, identity string, state logbook.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.rows[identity] = data
	m.puts++
	return nil
}

// PutRaw stores an arbitrary payload, as an older client might have written it.
func (m *Memory) PutRaw(identity string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[identity] = data
}

// Puts counts successful writes.
func (m *Memory) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
