package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomyedwab/sqlite-dbapi/dbapi"
)

// resetFlags clears every flag value left over from earlier runs.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--history", ""}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

func seedDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	conn, err := dbapi.Connect(path, "")
	require.NoError(t, err)
	_, err = conn.Execute("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	_, err = conn.Execute("INSERT INTO items (name) VALUES ('alpha'), ('beta')")
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	return path
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "dbapi", rootCmd.Use)
	names := []string{}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"query", "shell", "version"})
}

func TestVersionCmd_Executes(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dbapi "+dbapi.VersionString())
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("isolation_level: IMMEDIATE\nlog_level: debug\n"), 0o644))

	c, err := loadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "IMMEDIATE", c.IsolationLevel)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.ErrorContains(t, err, "read config")
}

func TestNewLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	l, err := newLogger("debug", buf)
	require.NoError(t, err)
	l.Debug("hello", "key", "value")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = newLogger("loud", buf)
	assert.Error(t, err)
}

func TestLoadConfig_Env(t *testing.T) {
	resetFlags()
	t.Setenv("DBAPI_ISOLATION_LEVEL", "EXCLUSIVE")
	c, err := loadConfig("", rootCmd.PersistentFlags())
	require.NoError(t, err)
	assert.Equal(t, "EXCLUSIVE", c.IsolationLevel)
}

func TestInvalidLogLevel(t *testing.T) {
	before := logger
	_, err := execute(t, "--log-level", "loud", "version")
	assert.Error(t, err)
	require.NotNil(t, logger)
	assert.Same(t, before, logger)

	// The shell still logs through the previous logger.
	s := memorySession(t)
	in := &fakeReader{lines: []string{"SELECT * FROM missing;"}}
	out := new(bytes.Buffer)
	require.NoError(t, runShell(context.Background(), in, out, s))
	assert.Contains(t, out.String(), "no such table: missing")
}
