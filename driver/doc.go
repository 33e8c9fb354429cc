// Package driver implements database/sql/driver on top of package dbapi, so
// that database/sql and sqlx can use a dbapi connection like any other
// SQLite database.
//
// Usage:
//
//  1. Register the driver once at startup, usually through
//     dialect.Register, or directly:
//
//     sql.Register(driver.DriverName, &driver.Driver{Logger: logger})
//
//  2. Open a database. The DSN is a file path, optionally followed by query
//     parameters:
//
//     db, err := sql.Open(driver.DriverName, "data.db?isolation_level=IMMEDIATE")
//
//     The isolation_level parameter is the word placed after BEGIN when a
//     transaction starts. Every other parameter is passed on to the engine,
//     e.g. _busy_timeout or _foreign_keys. An empty DSN opens a private
//     in-memory database.
//
// Transactions:
//
// Outside of a database/sql transaction every statement is committed as soon
// as it completes, or for queries, as soon as the rows are closed. Inside one,
// BEGIN is issued by Conn.BeginTx and nothing is committed until Tx.Commit.
//
// Values:
//
// Arguments are converted with types.Bind before they reach the engine.
// Result columns declared DATE, DATETIME or TIME are returned as time.Time
// (DATE and DATETIME) or ISO-8601 text (TIME). Named arguments are not
// supported.
package driver
