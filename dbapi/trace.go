package dbapi

import (
	"context"
	"time"
)

// ExecEvent describes one statement a cursor handed to the engine.
type ExecEvent struct {
	ConnectionID string
	CursorID     string
	Statement    string
	// Params are the bound values, after conversion to storage classes.
	Params      []any
	Description Description
	Time        time.Time
}

// ExecTracer observes statement execution. TraceExec runs after the engine
// has accepted the statement and before any row is produced; returning an
// error aborts the execution.
type ExecTracer interface {
	TraceExec(ctx context.Context, ev ExecEvent) error
}

// ExecTracerFunc adapts a function to ExecTracer.
type ExecTracerFunc func(ctx context.Context, ev ExecEvent) error

func (f ExecTracerFunc) TraceExec(ctx context.Context, ev ExecEvent) error {
	return f(ctx, ev)
}
