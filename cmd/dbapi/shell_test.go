package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomyedwab/sqlite-dbapi/dbapi"
)

type fakeReader struct {
	lines   []string
	prompts []string
}

func (r *fakeReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func (r *fakeReader) SetPrompt(p string) {
	r.prompts = append(r.prompts, p)
}

func memorySession(t *testing.T) *session {
	t.Helper()
	conn, err := dbapi.Connect(dbapi.MemoryPath, "")
	require.NoError(t, err)
	s := &session{conn: conn}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunShell(t *testing.T) {
	s := memorySession(t)
	r := &fakeReader{lines: []string{
		"CREATE TABLE t (a INTEGER, b TEXT);",
		"INSERT INTO t",
		"VALUES (1, 'semi;colon');",
		"SELECT a, b FROM t;",
		".bogus",
		"SELECT * FROM missing;",
		"SELECT 'never",
		"^C",
		".help",
		".quit",
		"SELECT 'unreachable';",
	}}
	out := new(bytes.Buffer)

	require.NoError(t, runShell(context.Background(), r, out, s))
	assert.Contains(t, out.String(), "OK (1 affected)")
	assert.Contains(t, out.String(), "semi;colon")
	assert.Contains(t, out.String(), "(1 rows)")
	assert.Contains(t, out.String(), "unknown command: .bogus")
	assert.Contains(t, out.String(), "no such table: missing")
	assert.Contains(t, out.String(), "meta commands:")
	assert.NotContains(t, out.String(), "unreachable")
	assert.Contains(t, r.prompts, continuationPrompt)
	assert.Equal(t, []string{"SELECT 'unreachable';"}, r.lines)
}

func TestRunShell_Transactions(t *testing.T) {
	conn, err := dbapi.Connect(dbapi.MemoryPath, "DEFERRED")
	require.NoError(t, err)
	s := &session{conn: conn}
	defer s.Close()

	r := &fakeReader{lines: []string{
		"CREATE TABLE t (a INTEGER);",
		".commit",
		"INSERT INTO t VALUES (1);",
		".rollback",
		"SELECT count(*) AS n FROM t;",
	}}
	out := new(bytes.Buffer)
	require.NoError(t, runShell(context.Background(), r, out, s))
	assert.NotContains(t, out.String(), "error:")

	cur, err := conn.Execute("SELECT count(*) FROM t")
	require.NoError(t, err)
	row, err := cur.FetchOne()
	require.NoError(t, err)
	assert.Equal(t, dbapi.Row{int64(0)}, row)
}

func TestStatementComplete(t *testing.T) {
	tests := []struct {
		buf      string
		complete bool
	}{
		{"SELECT 1;", true},
		{"SELECT 1", false},
		{"SELECT ';'", false},
		{"SELECT 'it''s';", true},
		{`SELECT "a;b" FROM t`, false},
		{"SELECT 1 -- done;", false},
		{"SELECT 1 -- comment\n;", true},
		{"CREATE TRIGGER t AFTER INSERT ON a BEGIN DELETE FROM b;", false},
		{"CREATE TRIGGER t AFTER INSERT ON a BEGIN DELETE FROM b; END;", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.complete, statementComplete(tt.buf), tt.buf)
	}
}
