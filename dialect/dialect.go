// Package dialect plugs the dbapi client interface into a registry of
// database backends, addressed by URL.
package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/tomyedwab/sqlite-dbapi/dbapi"
	"github.com/tomyedwab/sqlite-dbapi/driver"
	"github.com/tomyedwab/sqlite-dbapi/engine"
	"github.com/tomyedwab/sqlite-dbapi/types"
)

const (
	Name       = "sqlite-apsw"
	DriverName = "apsw"
	// EntryPoint is the registry name of the dialect.
	EntryPoint = "sqlite.apsw"
	// Scheme is the URL scheme that resolves to EntryPoint.
	Scheme = "sqlite+apsw"
)

// Module describes the client interface a dialect talks to.
type Module struct {
	APILevel     string
	ThreadSafety int
	ParamStyle   string
	Connect      func(path, isolationLevel string) (*dbapi.Connection, error)
}

// ConnectArgs are the arguments a Dialect derives from a URL.
type ConnectArgs struct {
	Path           string
	IsolationLevel string
}

// Dialect describes the SQLite backend reached through package dbapi.
type Dialect struct {
	Name           string
	Driver         string
	IsolationLevel string
	// SupportsStatementCache allows callers to cache compiled statements.
	SupportsStatementCache bool
	// ColumnSpecs overrides result conversion per type code for every
	// connection the dialect opens. It starts empty: dbapi already returns
	// temporal columns as Go values.
	ColumnSpecs map[types.TypeCode]types.Converter

	Logger *slog.Logger     // Optional, defaults to slog.Default()
	Tracer dbapi.ExecTracer // Optional
}

// New returns the dialect with the given isolation level; empty means
// autocommit.
func New(isolationLevel string) *Dialect {
	return &Dialect{
		Name:                   Name,
		Driver:                 DriverName,
		IsolationLevel:         isolationLevel,
		SupportsStatementCache: true,
		ColumnSpecs:            map[types.TypeCode]types.Converter{},
	}
}

// DBAPI returns the client interface module.
func (d *Dialect) DBAPI() Module {
	return Module{
		APILevel:     dbapi.APILevel,
		ThreadSafety: dbapi.ThreadSafety,
		ParamStyle:   dbapi.ParamStyle,
		Connect:      dbapi.Connect,
	}
}

// CreateConnectArgs extracts the database path from u. A URL without one
// names an in-memory database.
func (d *Dialect) CreateConnectArgs(u *URL) ConnectArgs {
	path := u.Database
	if path == "" {
		path = dbapi.MemoryPath
	}
	return ConnectArgs{Path: path, IsolationLevel: d.IsolationLevel}
}

// ServerVersionInfo returns the version of the linked SQLite library. No
// connection is needed.
func (d *Dialect) ServerVersionInfo() []int {
	return engine.VersionInfo()
}

func (d *Dialect) config(args ConnectArgs) dbapi.Config {
	return dbapi.Config{
		Path:           args.Path,
		IsolationLevel: args.IsolationLevel,
		Logger:         d.Logger,
		Tracer:         d.Tracer,
		Converters:     d.ColumnSpecs,
	}
}

// Connect opens a raw client-interface connection.
func (d *Dialect) Connect(args ConnectArgs) (*dbapi.Connection, error) {
	return dbapi.Open(d.config(args))
}

// OpenDB opens a connection pool for u.
func (d *Dialect) OpenDB(u *URL) (*sqlx.DB, error) {
	if err := d.checkURL(u); err != nil {
		return nil, err
	}
	connector := driver.NewConnector(d.config(d.CreateConnectArgs(u)))
	db := sqlx.NewDb(sql.OpenDB(connector), driver.DriverName)
	// A pool of in-memory connections would be a pool of unrelated databases.
	if u.Database == "" || u.Database == dbapi.MemoryPath {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func (d *Dialect) checkURL(u *URL) error {
	for key := range u.Query {
		if key != driver.IsolationLevelParam {
			return fmt.Errorf("dialect: unsupported URL parameter %q", key)
		}
	}
	return nil
}

// HasTable reports whether table exists in db.
func (d *Dialect) HasTable(ctx context.Context, db *sqlx.DB, table string) (bool, error) {
	var n int
	err := db.GetContext(ctx, &n, "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	if err != nil {
		return false, fmt.Errorf("dialect: looking up table %s: %w", table, err)
	}
	return n > 0, nil
}

// TableNames lists the tables in db, sorted by name.
func (d *Dialect) TableNames(ctx context.Context, db *sqlx.DB) ([]string, error) {
	var names []string
	err := db.SelectContext(ctx, &names, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("dialect: listing tables: %w", err)
	}
	return names, nil
}
