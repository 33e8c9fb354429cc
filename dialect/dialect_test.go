package dialect

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomyedwab/sqlite-dbapi/dbapi"
	"github.com/tomyedwab/sqlite-dbapi/driver"
	"github.com/tomyedwab/sqlite-dbapi/engine"
	"github.com/tomyedwab/sqlite-dbapi/types"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw        string
		database   string
		isolation  string
		entryPoint string
	}{
		{"sqlite+apsw://", "", "", "sqlite.apsw"},
		{"sqlite+apsw:///relative.db", "relative.db", "", "sqlite.apsw"},
		{"sqlite+apsw:////tmp/absolute.db", "/tmp/absolute.db", "", "sqlite.apsw"},
		{"sqlite+apsw:///:memory:?isolation_level=DEFERRED", ":memory:", "DEFERRED", "sqlite.apsw"},
		{"sqlite+apsw:///with%20space.db", "with space.db", "", "sqlite.apsw"},
		{"sqlite:///plain.db", "plain.db", "", "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := ParseURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.database, u.Database)
			assert.Equal(t, tt.isolation, u.Query.Get("isolation_level"))
			assert.Equal(t, tt.entryPoint, u.EntryPoint())
		})
	}

	for _, raw := range []string{"relative.db", "://x", "sqlite+apsw://host/x.db", "sqlite+apsw:///x.db?%zz"} {
		_, err := ParseURL(raw)
		assert.Error(t, err, raw)
	}
}

func TestURLString(t *testing.T) {
	u, err := ParseURL("sqlite+apsw:///data.db?isolation_level=IMMEDIATE")
	require.NoError(t, err)
	assert.Equal(t, "sqlite+apsw:///data.db?isolation_level=IMMEDIATE", u.String())
}

func TestDialectAttributes(t *testing.T) {
	d := New("DEFERRED")
	assert.Equal(t, "sqlite-apsw", d.Name)
	assert.Equal(t, "apsw", d.Driver)
	assert.True(t, d.SupportsStatementCache)
	assert.Empty(t, d.ColumnSpecs)

	m := d.DBAPI()
	assert.Equal(t, "2.0", m.APILevel)
	assert.Equal(t, 2, m.ThreadSafety)
	assert.Equal(t, "qmark", m.ParamStyle)
	assert.Equal(t, engine.VersionInfo(), d.ServerVersionInfo())
}

func TestCreateConnectArgs(t *testing.T) {
	d := New("EXCLUSIVE")

	u, err := ParseURL("sqlite+apsw://")
	require.NoError(t, err)
	assert.Equal(t, ConnectArgs{Path: ":memory:", IsolationLevel: "EXCLUSIVE"}, d.CreateConnectArgs(u))

	u, err = ParseURL("sqlite+apsw:///foo.db")
	require.NoError(t, err)
	assert.Equal(t, ConnectArgs{Path: "foo.db", IsolationLevel: "EXCLUSIVE"}, d.CreateConnectArgs(u))
}

func TestConnect(t *testing.T) {
	d := New("")
	conn, err := d.Connect(ConnectArgs{Path: dbapi.MemoryPath})
	require.NoError(t, err)
	defer conn.Close()

	cur, err := conn.Execute("SELECT 40 + 2")
	require.NoError(t, err)
	row, err := cur.FetchOne()
	require.NoError(t, err)
	assert.Equal(t, dbapi.Row{int64(42)}, row)
}

func TestRegistryOpen(t *testing.T) {
	var r Registry
	Register(&r, Options{})
	// A second call must not register the database/sql driver again.
	Register(&r, Options{})
	assert.Equal(t, []string{EntryPoint}, r.Names())

	path := filepath.Join(t.TempDir(), "registry.db")
	db, err := r.Open("sqlite+apsw:///" + path + "?isolation_level=IMMEDIATE")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	d, _, err := r.Resolve("sqlite+apsw:///" + path)
	require.NoError(t, err)

	ok, err := d.HasTable(ctx, db, "notes")
	require.NoError(t, err)
	assert.False(t, ok)

	db.MustExec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)")
	db.MustExec(db.Rebind("INSERT INTO notes (body) VALUES (?)"), "hello")

	ok, err = d.HasTable(ctx, db, "notes")
	require.NoError(t, err)
	assert.True(t, ok)
	names, err := d.TableNames(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, names)

	var body string
	require.NoError(t, db.Get(&body, "SELECT body FROM notes"))
	assert.Equal(t, "hello", body)
}

func TestRegistryErrors(t *testing.T) {
	var r Registry
	_, err := r.Open("sqlite+apsw://")
	assert.ErrorContains(t, err, "no dialect registered")

	Register(&r, Options{})
	_, err = r.Open("sqlite+apsw:///x.db?mode=ro")
	assert.ErrorContains(t, err, "unsupported URL parameter")

	_, ok := r.Lookup("postgresql.psycopg2")
	assert.False(t, ok)
}

func TestOpenInMemory(t *testing.T) {
	var r Registry
	Register(&r, Options{})
	db, err := r.Open("sqlite+apsw://")
	require.NoError(t, err)
	defer db.Close()

	db.MustExec("CREATE TABLE t (a INTEGER)")
	db.MustExec("INSERT INTO t VALUES (1)")
	var n int
	require.NoError(t, db.Get(&n, "SELECT count(*) FROM t"))
	assert.Equal(t, 1, n)
}

func TestColumnSpecs(t *testing.T) {
	d := New("")
	d.ColumnSpecs[types.Text] = func(v any) (any, error) {
		if s, ok := v.(string); ok {
			return strings.ToUpper(s), nil
		}
		return v, nil
	}

	conn, err := d.Connect(ConnectArgs{Path: dbapi.MemoryPath})
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Execute("CREATE TABLE words (w TEXT, n INTEGER)")
	require.NoError(t, err)
	_, err = conn.Execute("INSERT INTO words VALUES ('quiet', 1)")
	require.NoError(t, err)
	cur, err := conn.Execute("SELECT w, n FROM words")
	require.NoError(t, err)
	row, err := cur.FetchOne()
	require.NoError(t, err)
	assert.Equal(t, dbapi.Row{"QUIET", int64(1)}, row)

	u, err := ParseURL("sqlite+apsw://")
	require.NoError(t, err)
	db, err := d.OpenDB(u)
	require.NoError(t, err)
	defer db.Close()
	db.MustExec("CREATE TABLE words (w TEXT)")
	db.MustExec("INSERT INTO words VALUES ('calm')")
	var w string
	require.NoError(t, db.Get(&w, "SELECT w FROM words"))
	assert.Equal(t, "CALM", w)
}

func TestRegisterOptionsPerRegistry(t *testing.T) {
	var first Registry
	Register(&first, Options{})

	var statements []string
	var second Registry
	Register(&second, Options{Tracer: dbapi.ExecTracerFunc(func(_ context.Context, ev dbapi.ExecEvent) error {
		statements = append(statements, ev.Statement)
		return nil
	})})

	db, err := first.Open("sqlite+apsw://")
	require.NoError(t, err)
	db.MustExec("SELECT 1")
	require.NoError(t, db.Close())
	assert.Empty(t, statements)

	db, err = second.Open("sqlite+apsw://")
	require.NoError(t, err)
	db.MustExec("SELECT 2")
	require.NoError(t, db.Close())
	assert.Equal(t, []string{"SELECT 2"}, statements)

	// The database/sql driver itself is registered without options.
	raw, err := sql.Open(driver.DriverName, dbapi.MemoryPath)
	require.NoError(t, err)
	defer raw.Close()
	var n int
	require.NoError(t, raw.QueryRow("SELECT 3").Scan(&n))
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"SELECT 2"}, statements)
}
