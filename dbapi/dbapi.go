package dbapi

import (
	"log/slog"

	"github.com/tomyedwab/sqlite-dbapi/engine"
	"github.com/tomyedwab/sqlite-dbapi/types"
)

const (
	// APILevel is the client-interface level implemented.
	APILevel = "2.0"
	// ThreadSafety 2: goroutines may share the package and connections, but
	// not cursors.
	ThreadSafety = 2
	// ParamStyle: positional "?" placeholders.
	ParamStyle = "qmark"
)

// Version is the version of this package, reported by the version() SQL
// function.
var Version = "0.1.0"

// MemoryPath opens a private in-memory database.
const MemoryPath = engine.MemoryPath

// SQLiteVersionInfo returns the native engine's version as numeric
// components, e.g. [3 45 1].
func SQLiteVersionInfo() []int {
	return engine.VersionInfo()
}

// Config holds the options for opening a Connection.
type Config struct {
	Path           string       // Database file, or MemoryPath. Empty means MemoryPath.
	IsolationLevel string       // Optional. Spliced after BEGIN; empty means autocommit.
	Logger         *slog.Logger // Optional, defaults to slog.Default()
	Tracer         ExecTracer   // Optional, observes every executed statement

	// Converters replaces the result conversion for the given type codes.
	Converters map[types.TypeCode]types.Converter
}

// Connect opens a connection to the database at path. An empty
// isolationLevel leaves the connection in autocommit mode.
func Connect(path string, isolationLevel string) (*Connection, error) {
	return Open(Config{Path: path, IsolationLevel: isolationLevel})
}
