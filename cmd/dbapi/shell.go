package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tomyedwab/sqlite-dbapi/engine"
)

const (
	prompt             = "sql> "
	continuationPrompt = "...> "
)

const shellHelp = `meta commands:
  .quit | .exit     commit and quit
  .commit           commit the open transaction
  .rollback         roll back the open transaction
  .help             show help

sql:
  end statements with ';'
  multiline is supported (the shell waits for ';')`

var shellCmd = &cobra.Command{
	Use:   "shell [database]",
	Short: "Start an interactive SQL shell",
	Long: `Starts an interactive shell on the database, or on a private
in-memory database when none is given. Pending work is committed on exit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShellCmd,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".dbapi_history"
	}
	return filepath.Join(home, ".dbapi_history")
}

func runShellCmd(cmd *cobra.Command, args []string) (err error) {
	target := ":memory:"
	if len(args) == 1 {
		target = args[0]
	}
	s, err := openSession(target)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     cfg.History,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "connected to %s\n", target)
	fmt.Fprintln(cmd.OutOrStdout(), "type .help for help")
	return runShell(cmd.Context(), rl, cmd.OutOrStdout(), s)
}

// lineReader is the part of *readline.Instance the shell loop needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// runShell reads statements until EOF or .quit and runs each one on s.
// Statement errors are printed and do not end the loop.
func runShell(ctx context.Context, rl lineReader, out io.Writer, s *session) error {
	var buf strings.Builder
	reset := func() {
		buf.Reset()
		rl.SetPrompt(prompt)
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C drops the statement being typed.
			reset()
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			quit, err := metaCommand(line, out, s)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if !statementComplete(buf.String()) {
			rl.SetPrompt(continuationPrompt)
			continue
		}

		statement := buf.String()
		reset()
		cur, err := s.conn.ExecuteContext(ctx, statement)
		if err == nil {
			err = printResult(ctx, out, cur)
			cur.Close()
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			logger.Debug("Statement failed", "statement", statement, "error", err)
		}
	}
}

func metaCommand(line string, out io.Writer, s *session) (quit bool, err error) {
	switch line {
	case ".quit", ".exit":
		return true, nil
	case ".help":
		fmt.Fprintln(out, shellHelp)
	case ".commit":
		return false, s.conn.Commit()
	case ".rollback":
		return false, s.conn.Rollback()
	default:
		fmt.Fprintf(out, "unknown command: %s\n", line)
	}
	return false, nil
}

// statementComplete reports whether buf ends with a ';' that closes a
// statement, ignoring ones inside quotes, comments and trigger bodies.
func statementComplete(buf string) bool {
	return engine.Complete(buf)
}
