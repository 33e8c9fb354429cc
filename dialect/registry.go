package dialect

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/tomyedwab/sqlite-dbapi/dbapi"
	"github.com/tomyedwab/sqlite-dbapi/driver"
)

// Factory builds a dialect for a parsed URL.
type Factory func(u *URL) (*Dialect, error)

// Registry maps entry point names to dialect factories. The zero value is
// ready to use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// Register installs f under name, replacing any earlier factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]Factory)
	}
	r.factories[name] = f
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered entry points in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve parses rawURL and builds the dialect its scheme names.
func (r *Registry) Resolve(rawURL string) (*Dialect, *URL, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, nil, err
	}
	f, ok := r.Lookup(u.EntryPoint())
	if !ok {
		return nil, nil, fmt.Errorf("dialect: no dialect registered for %s", u.EntryPoint())
	}
	d, err := f(u)
	if err != nil {
		return nil, nil, fmt.Errorf("dialect: building %s: %w", u.EntryPoint(), err)
	}
	return d, u, nil
}

// Open resolves rawURL and opens a connection pool for it.
func (r *Registry) Open(rawURL string) (*sqlx.DB, error) {
	d, u, err := r.Resolve(rawURL)
	if err != nil {
		return nil, err
	}
	return d.OpenDB(u)
}

// Options configure the dialects installed by Register.
type Options struct {
	Logger *slog.Logger
	Tracer dbapi.ExecTracer
}

var registerDriver sync.Once

// Register installs the sqlite.apsw dialect in r, configured with opts. The
// first call also registers the database/sql driver and its sqlx bind type.
// That driver carries no options: connections opened with sql.Open log to
// slog.Default() and are not traced. Dialects resolved from r pass opts to
// every connection they open.
func Register(r *Registry, opts Options) {
	registerDriver.Do(func() {
		sql.Register(driver.DriverName, &driver.Driver{})
		sqlx.BindDriver(driver.DriverName, sqlx.QUESTION)
	})
	r.Register(EntryPoint, func(u *URL) (*Dialect, error) {
		d := New(u.Query.Get(driver.IsolationLevelParam))
		d.Logger = opts.Logger
		d.Tracer = opts.Tracer
		return d, nil
	})
}
