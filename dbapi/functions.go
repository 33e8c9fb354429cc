package dbapi

import (
	"fmt"
	"time"

	"github.com/tomyedwab/sqlite-dbapi/engine"
)

// sleep blocks for the given number of seconds. It exists to exercise
// timeouts from the SQL side:
//
//	sql> SELECT sleep(60);
func sleep(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("sleep() takes exactly one argument (%d given)", len(args))
	}
	var d time.Duration
	switch s := args[0].(type) {
	case int64:
		d = time.Duration(s) * time.Second
	case float64:
		d = time.Duration(s * float64(time.Second))
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("sleep() argument must be a number, not %T", s)
	}
	time.Sleep(d)
	return nil, nil
}

// VersionString is what the version() SQL function returns:
//
//	sql> SELECT version();
//	0.1.0 (go-sqlite3 3.45.1)
func VersionString() string {
	return fmt.Sprintf("%s (%s %s)", Version, engine.Name(), engine.LibVersion())
}

func version(args []any) (any, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("version() takes no arguments (%d given)", len(args))
	}
	return VersionString(), nil
}

var scalarFunctions = []engine.Func{
	{Name: "sleep", Impl: sleep},
	{Name: "version", Impl: version, Pure: true},
}
