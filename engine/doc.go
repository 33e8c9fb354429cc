// Package engine opens connections to the native SQLite library that the rest
// of this module wraps.
//
// Builds with cgo enabled use github.com/mattn/go-sqlite3. Builds without cgo
// fall back to modernc.org/sqlite, a pure Go translation of the same C
// sources. Both backends are reached through the Conn interface, which is the
// subset of database/sql/driver the client facade needs: prepare-free query
// and exec with positional arguments.
//
// Scalar functions are handed to Open as a list of Func values. The cgo
// backend registers them on every new connection; the pure Go backend
// registers them once per process since modernc.org/sqlite keeps its function
// table on the driver.
package engine
