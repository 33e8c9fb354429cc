package dbapi

import (
	"context"
	"database/sql/driver"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tomyedwab/sqlite-dbapi/engine"
	"github.com/tomyedwab/sqlite-dbapi/types"
)

// Connection is an open database. It is not safe for concurrent use; open
// one connection per goroutine.
type Connection struct {
	native         engine.Conn
	id             string
	path           string
	isolationLevel string
	logger         *slog.Logger
	tracer         ExecTracer
	converters     map[types.TypeCode]types.Converter

	closed  bool
	cursors []*Cursor
}

// Open opens a connection according to cfg and registers the sleep() and
// version() SQL functions on it.
func Open(cfg Config) (*Connection, error) {
	path := cfg.Path
	if path == "" {
		path = MemoryPath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	native, err := engine.Open(path, scalarFunctions)
	if err != nil {
		return nil, &Error{Kind: KindOperational, Msg: "unable to open database", Err: err}
	}

	id := uuid.NewString()
	c := &Connection{
		native:         native,
		id:             id,
		path:           path,
		isolationLevel: cfg.IsolationLevel,
		logger:         logger.With("connection_id", id),
		tracer:         cfg.Tracer,
		converters:     cfg.Converters,
	}
	c.logger.Debug("Opened connection", "path", path, "isolation_level", cfg.IsolationLevel)
	return c, nil
}

// ID uniquely identifies the connection in logs and exec traces.
func (c *Connection) ID() string {
	return c.id
}

// Path is the database file the connection was opened on, or MemoryPath.
func (c *Connection) Path() string {
	return c.path
}

// IsolationLevel returns the word spliced after BEGIN, or "" in autocommit
// mode.
func (c *Connection) IsolationLevel() string {
	return c.isolationLevel
}

// Closed reports whether Close has been called.
func (c *Connection) Closed() bool {
	return c.closed
}

// InTransaction reports whether any cursor of c has an open transaction.
func (c *Connection) InTransaction() bool {
	return c.inTransaction()
}

func (c *Connection) inTransaction() bool {
	for _, cur := range c.cursors {
		if cur.inTransaction {
			return true
		}
	}
	return false
}

func (c *Connection) checkOpen() error {
	if c.closed {
		return newError(KindProgramming, "Connection already closed")
	}
	return nil
}

// Cursor creates a cursor bound to c.
func (c *Connection) Cursor() (*Cursor, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	// Closed cursors are only remembered while they hold a transaction.
	live := c.cursors[:0]
	for _, cur := range c.cursors {
		if !cur.closed || cur.inTransaction {
			live = append(live, cur)
		}
	}
	clear(c.cursors[len(live):])
	c.cursors = live

	cur := newCursor(c)
	c.cursors = append(c.cursors, cur)
	return cur, nil
}

// Execute creates a cursor and executes statement on it.
func (c *Connection) Execute(statement string, params ...any) (*Cursor, error) {
	return c.ExecuteContext(context.Background(), statement, params...)
}

// ExecuteContext is Execute with a context.
func (c *Connection) ExecuteContext(ctx context.Context, statement string, params ...any) (*Cursor, error) {
	cur, err := c.Cursor()
	if err != nil {
		return nil, err
	}
	return cur.ExecuteContext(ctx, statement, params...)
}

// exec runs a single statement directly on the engine, untraced.
func (c *Connection) exec(ctx context.Context, statement string) error {
	if _, err := c.native.ExecContext(ctx, statement, nil); err != nil {
		return engineError("executing "+statement, err)
	}
	return nil
}

// begin opens a transaction on behalf of cur.
func (c *Connection) begin(ctx context.Context, cur *Cursor) error {
	statement := "BEGIN"
	if c.isolationLevel != "" {
		statement += " " + c.isolationLevel
	}
	if _, err := c.native.ExecContext(ctx, statement, nil); err != nil {
		return engineError("beginning transaction", err)
	}
	cur.inTransaction = true
	cur.logger.Debug("Began transaction", "statement", statement)
	return nil
}

// Begin opens a transaction explicitly, even in autocommit mode. It ends
// with Commit or Rollback like an implicit one.
func (c *Connection) Begin(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.inTransaction() {
		return newError(KindProgramming, "Transaction already in progress")
	}
	cur, err := c.Cursor()
	if err != nil {
		return err
	}
	if err := c.begin(ctx, cur); err != nil {
		cur.Close()
		return err
	}
	return cur.Close()
}

// Commit commits every transaction opened by c's cursors. Without an open
// transaction it does nothing.
func (c *Connection) Commit() error {
	return c.finish("COMMIT")
}

// Rollback rolls back every transaction opened by c's cursors. Without an
// open transaction it does nothing.
func (c *Connection) Rollback() error {
	return c.finish("ROLLBACK")
}

func (c *Connection) finish(statement string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	for _, cur := range c.cursors {
		if !cur.inTransaction {
			continue
		}
		if _, err := c.native.ExecContext(context.Background(), statement, nil); err != nil {
			return engineError("ending transaction", err)
		}
		cur.inTransaction = false
		cur.logger.Debug("Ended transaction", "statement", statement)
	}
	return nil
}

// Changes reports the number of rows modified by the most recent INSERT,
// UPDATE or DELETE on c, and the rowid of the most recent INSERT. It is not
// traced.
func (c *Connection) Changes(ctx context.Context) (rowsAffected, lastInsertID int64, err error) {
	if err := c.checkOpen(); err != nil {
		return 0, 0, err
	}
	rows, err := c.native.QueryContext(ctx, "SELECT changes(), last_insert_rowid()", nil)
	if err != nil {
		return 0, 0, engineError("reading changes", err)
	}
	defer rows.Close()
	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil {
		return 0, 0, engineError("reading changes", err)
	}
	rowsAffected, _ = dest[0].(int64)
	lastInsertID, _ = dest[1].(int64)
	return rowsAffected, lastInsertID, nil
}

// Close closes every open cursor and then the database handle. A
// transaction still open at this point is rolled back by the engine.
func (c *Connection) Close() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.closed = true

	var errs []error
	for _, cur := range c.cursors {
		if !cur.closed {
			errs = append(errs, cur.Close())
		}
	}
	if err := c.native.Close(); err != nil {
		errs = append(errs, &Error{Kind: KindOperational, Msg: "closing database", Err: err})
	}
	c.logger.Debug("Closed connection")
	return errors.Join(errs...)
}

// Scope runs fn and then commits and closes c, whether fn fails, succeeds
// or panics. Errors from fn, Commit and Close are joined.
func (c *Connection) Scope(fn func(*Connection) error) (err error) {
	defer func() {
		if cerr := c.Commit(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		if cerr := c.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(c)
}
