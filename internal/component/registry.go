// internal/component/registry.go
//
// Component registry.
//
// Each feature lives under components/<name>.  cmd/web builds it with its
// dependencies and calls component.Register().  Mount attaches every
// component's Routes() under “/<name>”, and Migrate applies each component's schema
// statements, in registration order, when a SQL store is configured.

package component

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Migrations() may return nil if the component has no schema.  Routes()
// are relative to the component name, e.g. for “applications”:
//
//	r := chi.NewRouter()
//	r.Post("/", submit)          // POST /applications
//	r.Get("/success", success)   // GET  /applications/success
//	return r
type Component interface {
	Name() string
	Routes() chi.Router
	Migrations() []string
}

// Execer is satisfied by *sql.DB and *sqlx.DB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var (
	mu       sync.RWMutex
	order    []string
	registry = map[string]Component{}
)

// Register adds c.  Registering the same name twice replaces the earlier
// component but keeps its position.
func Register(c Component) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[c.Name()]; !ok {
		order = append(order, c.Name())
	}
	registry[c.Name()] = c
}

// All returns every registered component in registration order.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(order))
	for _, name := range order {
		out = append(out, registry[name])
	}
	return out
}

// Mount attaches every component router at “/<name>”.
func Mount(r chi.Router) {
	for _, c := range All() {
		r.Mount("/"+c.Name(), c.Routes())
	}
}

// Migrate runs every component's migrations against db.
func Migrate(ctx context.Context, db Execer) error {
	for _, c := range All() {
		for i, stmt := range c.Migrations() {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate %s #%d: %w", c.Name(), i, err)
			}
		}
	}
	return nil
}

// reset clears the registry.  Tests only.
func reset() {
	mu.Lock()
	order, registry = nil, map[string]Component{}
	mu.Unlock()
}
