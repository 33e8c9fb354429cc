//go:build !cgo

package engine

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// modernc.org/sqlite steps the statement inside QueryContext.
const eagerQuery = true

const backendName = "modernc-sqlite"

// sqlErrorPrefix is sqlite3_errstr(SQLITE_ERROR).
const sqlErrorPrefix = "SQL logic error: "

var (
	registeredMu sync.Mutex
	registered   = map[string]bool{}
)

// sharedDriver returns the driver instance modernc.org/sqlite registered with
// database/sql; functions added with RegisterScalarFunction only reach
// connections opened through it.
var sharedDriver = sync.OnceValue(func() driver.Driver {
	db, err := sql.Open("sqlite", "")
	if err != nil {
		panic(err)
	}
	defer db.Close()
	return db.Driver()
})

func registerFuncs(funcs []Func) error {
	registeredMu.Lock()
	defer registeredMu.Unlock()
	for _, f := range funcs {
		if registered[f.Name] {
			continue
		}
		impl := f.Impl
		xFunc := func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			in := make([]any, len(args))
			for i, a := range args {
				in[i] = a
			}
			return impl(in)
		}
		var err error
		if f.Pure {
			err = sqlite.RegisterDeterministicScalarFunction(f.Name, -1, xFunc)
		} else {
			err = sqlite.RegisterScalarFunction(f.Name, -1, xFunc)
		}
		if err != nil {
			return fmt.Errorf("registering function %s: %w", f.Name, err)
		}
		registered[f.Name] = true
	}
	return nil
}

func open(path string, funcs []Func) (Conn, error) {
	if err := registerFuncs(funcs); err != nil {
		return nil, err
	}
	c, err := sharedDriver().Open(path)
	if err != nil {
		return nil, err
	}
	conn, ok := c.(Conn)
	if !ok {
		c.Close()
		return nil, fmt.Errorf("unexpected connection type %T", c)
	}
	return conn, nil
}

func libVersion() string {
	return sqlite3.SQLITE_VERSION
}

// sqlErrorMessage recovers sqlite3_errmsg from modernc's error text, which
// wraps it as "<sqlite3_errstr>: <sqlite3_errmsg> (<code>)".
func sqlErrorMessage(err error) (string, bool) {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code()&0xff != sqlite3.SQLITE_ERROR {
		return "", false
	}
	msg := strings.TrimSuffix(sqliteErr.Error(), fmt.Sprintf(" (%d)", sqliteErr.Code()))
	msg = strings.TrimPrefix(msg, sqlErrorPrefix)
	return msg, true
}
