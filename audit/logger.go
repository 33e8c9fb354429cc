package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tomyedwab/sqlite-dbapi/dbapi"
)

// EventType represents the type of audit event
type EventType string

const (
	// EventQuery is a statement that produced result columns.
	EventQuery EventType = "query"
	// EventStatement is a statement without result columns.
	EventStatement EventType = "statement"
)

// StatementEvent represents an audit log entry in the database
type StatementEvent struct {
	ID                   string `db:"id"`
	EventType            string `db:"event_type"`
	ConnectionID         string `db:"connection_id"`
	CursorID             string `db:"cursor_id"`
	Timestamp            int64  `db:"timestamp"` // Unix nanoseconds
	Statement            string `db:"statement"`
	StatementFingerprint string `db:"statement_fingerprint"`
	ParamCount           int    `db:"param_count"`
	Columns              string `db:"columns"` // Comma separated result column names
}

// Logger records every statement executed on traced connections. It
// implements dbapi.ExecTracer; parameter values are never stored.
type Logger struct {
	db *sqlx.DB
}

var _ dbapi.ExecTracer = (*Logger)(nil)

// NewLogger creates a new audit logger instance
func NewLogger(db *sqlx.DB) (*Logger, error) {
	if err := DBInit(db); err != nil {
		return nil, err
	}
	return &Logger{
		db: db,
	}, nil
}

// DBInit initializes the statement events table
func DBInit(db *sqlx.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS statement_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		connection_id TEXT NOT NULL,
		cursor_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		statement TEXT NOT NULL,
		statement_fingerprint TEXT NOT NULL,
		param_count INTEGER NOT NULL,
		columns TEXT NOT NULL
	)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_statement_events_timestamp ON statement_events(timestamp)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_statement_events_connection_id ON statement_events(connection_id)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_statement_events_fingerprint ON statement_events(statement_fingerprint)`)
	return err
}

// statementFingerprint hashes a statement with its whitespace normalized, so
// the same statement formatted differently groups together.
func statementFingerprint(statement string) string {
	normalized := strings.Join(strings.Fields(statement), " ")
	if normalized == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

func (l *Logger) insertEvent(ctx context.Context, event *StatementEvent) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO statement_events (
			id, event_type, connection_id, cursor_id, timestamp,
			statement, statement_fingerprint, param_count, columns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.EventType,
		event.ConnectionID,
		event.CursorID,
		event.Timestamp,
		event.Statement,
		event.StatementFingerprint,
		event.ParamCount,
		event.Columns,
	)
	return err
}

// TraceExec stores ev. A failure to store it aborts the traced statement.
func (l *Logger) TraceExec(ctx context.Context, ev dbapi.ExecEvent) error {
	eventType := EventStatement
	if ev.Description != nil {
		eventType = EventQuery
	}
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	event := &StatementEvent{
		ID:                   uuid.New().String(),
		EventType:            string(eventType),
		ConnectionID:         ev.ConnectionID,
		CursorID:             ev.CursorID,
		Timestamp:            ts.UTC().UnixNano(),
		Statement:            ev.Statement,
		StatementFingerprint: statementFingerprint(ev.Statement),
		ParamCount:           len(ev.Params),
		Columns:              strings.Join(ev.Description.Names(), ","),
	}
	return l.insertEvent(ctx, event)
}

// GetEventsByConnection retrieves events for one connection
func (l *Logger) GetEventsByConnection(connectionID string, limit int) ([]StatementEvent, error) {
	var events []StatementEvent
	err := l.db.Select(&events,
		"SELECT * FROM statement_events WHERE connection_id = ? ORDER BY timestamp DESC LIMIT ?",
		connectionID, limit)
	return events, err
}

// GetEventsByFingerprint retrieves executions of the same statement
func (l *Logger) GetEventsByFingerprint(fingerprint string, limit int) ([]StatementEvent, error) {
	var events []StatementEvent
	err := l.db.Select(&events,
		"SELECT * FROM statement_events WHERE statement_fingerprint = ? ORDER BY timestamp DESC LIMIT ?",
		fingerprint, limit)
	return events, err
}

// GetEventsByType retrieves events of a specific type
func (l *Logger) GetEventsByType(eventType EventType, limit int) ([]StatementEvent, error) {
	var events []StatementEvent
	err := l.db.Select(&events,
		"SELECT * FROM statement_events WHERE event_type = ? ORDER BY timestamp DESC LIMIT ?",
		string(eventType), limit)
	return events, err
}

// GetRecentEvents retrieves the most recent events
func (l *Logger) GetRecentEvents(limit int) ([]StatementEvent, error) {
	var events []StatementEvent
	err := l.db.Select(&events,
		"SELECT * FROM statement_events ORDER BY timestamp DESC LIMIT ?",
		limit)
	return events, err
}

// DeleteOldEvents deletes events older than the specified duration
func (l *Logger) DeleteOldEvents(olderThan time.Duration) (int64, error) {
	threshold := time.Now().UTC().Add(-olderThan).UnixNano()
	result, err := l.db.Exec("DELETE FROM statement_events WHERE timestamp < ?", threshold)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
