package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tomyedwab/sqlite-dbapi/dbapi"
)

// printResult drains cur and writes its rows as a table, or a summary line
// for statements without result columns.
func printResult(ctx context.Context, w io.Writer, cur *dbapi.Cursor) error {
	desc := cur.Description()
	if desc == nil {
		affected, _, err := cur.Connection().Changes(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "OK (%d affected)\n", affected)
		return nil
	}

	rows, err := cur.FetchAll()
	if err != nil {
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(desc.Names()...)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		t.Row(cells...)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("x'%X'", x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}
