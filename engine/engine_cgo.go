//go:build cgo

package engine

import (
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// go-sqlite3 prepares and binds in QueryContext; the first step happens on
// the first Rows.Next.
const eagerQuery = false

const backendName = "go-sqlite3"

func open(path string, funcs []Func) (Conn, error) {
	d := &sqlite3.SQLiteDriver{}
	c, err := d.Open(path)
	if err != nil {
		return nil, err
	}
	conn := c.(*sqlite3.SQLiteConn)
	for _, f := range funcs {
		impl := f.Impl
		err := conn.RegisterFunc(f.Name, func(args ...any) (any, error) {
			return impl(args)
		}, f.Pure)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("registering function %s: %w", f.Name, err)
		}
	}
	return conn, nil
}

func libVersion() string {
	v, _, _ := sqlite3.Version()
	return v
}

func sqlErrorMessage(err error) (string, bool) {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrError {
		return "", false
	}
	return sqliteErr.Error(), true
}
