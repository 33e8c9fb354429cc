package engine

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRegistersFunctions(t *testing.T) {
	double := Func{Name: "double", Pure: true, Impl: func(args []any) (any, error) {
		return args[0].(int64) * 2, nil
	}}
	conn, err := Open(MemoryPath, []Func{double})
	require.NoError(t, err)
	defer conn.Close()

	rows, err := conn.QueryContext(context.Background(), "SELECT double(?)", []driver.NamedValue{{Ordinal: 1, Value: int64(21)}})
	require.NoError(t, err)
	defer rows.Close()
	dest := make([]driver.Value, 1)
	require.NoError(t, rows.Next(dest))
	assert.Equal(t, int64(42), dest[0])
	assert.True(t, errors.Is(rows.Next(dest), io.EOF))
}

func TestSQLErrorMessage(t *testing.T) {
	conn, err := Open("", nil)
	require.NoError(t, err)
	defer conn.Close()

	tests := []struct {
		statement string
		message   string
	}{
		{"DROP TABLE missing_table", "no such table: missing_table"},
		{"SELEC 1", `near "SELEC": syntax error`},
		{"SELECT missing_column", "no such column: missing_column"},
	}
	for _, tt := range tests {
		t.Run(tt.statement, func(t *testing.T) {
			_, err := conn.ExecContext(context.Background(), tt.statement, nil)
			require.Error(t, err)
			msg, ok := SQLErrorMessage(err)
			assert.True(t, ok)
			assert.Equal(t, tt.message, msg)
		})
	}

	_, ok := SQLErrorMessage(errors.New("plain"))
	assert.False(t, ok)
}

func TestVersion(t *testing.T) {
	assert.True(t, strings.HasPrefix(LibVersion(), "3."))
	info := VersionInfo()
	require.Len(t, info, 3)
	assert.Equal(t, 3, info[0])
	assert.NotEmpty(t, Name())
}
