// Package dbapi is a client interface over the native SQLite engine in the
// connect / cursor / execute / fetch shape that database access modules
// conventionally expose.
//
// Usage:
//
//	conn, err := dbapi.Connect(":memory:", "")
//	if err != nil {
//		// handle error
//	}
//	err = conn.Scope(func(conn *dbapi.Connection) error {
//		if _, err := conn.Execute("CREATE TABLE t (d DATE)"); err != nil {
//			return err
//		}
//		if _, err := conn.Execute("INSERT INTO t VALUES (?)", types.NewDate(2020, 1, 1)); err != nil {
//			return err
//		}
//		cur, err := conn.Execute("SELECT d FROM t")
//		if err != nil {
//			return err
//		}
//		row, err := cur.FetchOne() // Row{civil.Date{2020, 1, 1}}
//		...
//	})
//
// Transactions:
//
// A connection opened with an isolation level ("DEFERRED", "IMMEDIATE",
// "EXCLUSIVE", or any other text the engine accepts after BEGIN) starts an
// explicit transaction in front of any statement executed while none is open.
// Commit and Rollback end every transaction the connection's cursors opened.
// Without an isolation level the engine runs in autocommit mode.
//
// Values:
//
// Parameters are bound through types.Bind and result columns are converted
// through types.ConverterFor using the column's declared type, so DATE, TIME
// and DATETIME columns round-trip as civil.Date, civil.Time and time.Time.
//
// Concurrency:
//
// Separate connections may be used from separate goroutines. A Connection and
// its cursors must not be shared between goroutines without external locking.
package dbapi
