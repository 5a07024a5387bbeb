package credentials

import (
	"sync"
	"time"
)

// Memory is an in-process Store used by tests and by callers that opt out
// of persistence.
type Memory struct {
	mu  sync.Mutex
	rec Record
	set bool

	// Now is overridable for expiry tests. Nil means time.Now.
	Now func() time.Time
}

func (m *Memory) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Memory) Read() (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.set || m.rec.Token == "" || m.rec.expired(m.now()) {
		return Record{}, false, nil
	}
	return m.rec, true, nil
}

func (m *Memory) Write(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rec = rec
	m.set = true
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rec = Record{}
	m.set = false
	return nil
}
