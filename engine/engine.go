package engine

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// MemoryPath is the path that opens a private in-memory database.
const MemoryPath = ":memory:"

// Conn is a native connection. Statements passed to QueryContext are
// prepared and bound but not stepped until the returned rows are read.
type Conn interface {
	driver.Conn
	driver.ExecerContext
	driver.QueryerContext
}

// EagerQuery reports whether QueryContext already runs the statement's first
// step, so its side effects have happened before the columns are known.
const EagerQuery = eagerQuery

// Func is a scalar SQL function exposed inside the query language.
type Func struct {
	Name string
	// Pure marks the function deterministic so the engine may fold calls.
	Pure bool
	Impl func(args []any) (any, error)
}

// Open opens the database at path and registers funcs on the new connection.
func Open(path string, funcs []Func) (Conn, error) {
	if path == "" {
		path = MemoryPath
	}
	conn, err := open(path, funcs)
	if err != nil {
		return nil, fmt.Errorf("engine: opening %s: %w", path, err)
	}
	return conn, nil
}

// Name identifies the native binding compiled into this build.
func Name() string {
	return backendName
}

// LibVersion returns the SQLite library version string, e.g. "3.45.1".
func LibVersion() string {
	return libVersion()
}

// VersionInfo returns LibVersion split into its numeric components.
func VersionInfo() []int {
	parts := strings.Split(libVersion(), ".")
	info := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			break
		}
		info = append(info, n)
	}
	return info
}

// SQLErrorMessage reports whether err is the engine rejecting a statement
// (SQLITE_ERROR: syntax errors, unknown tables or columns and the like) and
// returns the engine's own message for it.
func SQLErrorMessage(err error) (string, bool) {
	return sqlErrorMessage(err)
}
