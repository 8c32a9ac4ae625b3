// Package applicant holds the registries of accepted applications.  Every
// backend implements intake.Registry; the choice is made at boot from
// store.backend.
//
//	Memory – process-local slice, the default and the test double.
//	MySQL  – sqlx over go-sql-driver/mysql with UNIQUE email and mobile.
//	Redis  – two sets plus a list, updated atomically by a Lua script.
package applicant

import (
	"context"
	"sync"

	"github.com/yanizio/intake/internal/intake"
)

// Memory keeps accepted applications in submission order.  Lookups are
// linear scans, which is fine for the volumes a single process sees.
type Memory struct {
	mu   sync.RWMutex
	rows []*intake.Accepted
}

// NewMemory returns an empty registry.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) ContainsEmail(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.rows {
		if a.Email() == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ContainsMobile(_ context.Context, mobile string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.rows {
		if a.Mobile() == mobile {
			return true, nil
		}
	}
	return false, nil
}

// Append stores a.  It re-checks both keys under the write lock so the
// registry stays consistent even without the engine's own lock.
func (m *Memory) Append(_ context.Context, a *intake.Accepted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email() == a.Email() || r.Mobile() == a.Mobile() {
			return intake.ErrDuplicate
		}
	}
	m.rows = append(m.rows, a)
	return nil
}

// Len returns the number of accepted applications.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// All returns a snapshot in submission order.
func (m *Memory) All() []*intake.Accepted {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*intake.Accepted, len(m.rows))
	copy(out, m.rows)
	return out
}

// Clear drops every entry.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.rows = nil
	m.mu.Unlock()
}
