package dbapi

import (
	"context"
	"database/sql/driver"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/tomyedwab/sqlite-dbapi/engine"
	"github.com/tomyedwab/sqlite-dbapi/types"
)

// Cursor executes statements on a Connection and fetches their results.
type Cursor struct {
	conn   *Connection
	id     string
	logger *slog.Logger

	// ArraySize is the number of rows FetchMany returns when no size is
	// given. It defaults to 1.
	ArraySize int

	inTransaction bool
	closed        bool
	description   Description
	// results is nil until a statement has executed successfully.
	results  *rowStream
	rowcount int
}

func newCursor(conn *Connection) *Cursor {
	id := uuid.NewString()
	return &Cursor{
		conn:      conn,
		id:        id,
		logger:    conn.logger.With("cursor_id", id),
		ArraySize: 1,
		rowcount:  -1,
	}
}

// ID uniquely identifies the cursor in logs and exec traces.
func (c *Cursor) ID() string {
	return c.id
}

// Connection returns the connection that created the cursor.
func (c *Cursor) Connection() *Connection {
	return c.conn
}

// InTransaction reports whether the cursor opened a transaction that has not
// been committed or rolled back yet.
func (c *Cursor) InTransaction() bool {
	return c.inTransaction
}

// Closed reports whether Close has been called.
func (c *Cursor) Closed() bool {
	return c.closed
}

// Description describes the columns of the last executed statement, or is
// nil if it produced none.
func (c *Cursor) Description() Description {
	return c.description
}

// LastRowID is not tracked; it always reports no value.
func (c *Cursor) LastRowID() (int64, bool) {
	return 0, false
}

func (c *Cursor) checkOpen() error {
	if c.closed {
		return newError(KindProgramming, "Cursor already closed")
	}
	return nil
}

func (c *Cursor) checkResults() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.results == nil {
		return newError(KindProgramming, "Called before Execute")
	}
	return nil
}

// Execute runs statement with positional parameters and returns the cursor.
func (c *Cursor) Execute(statement string, params ...any) (*Cursor, error) {
	return c.ExecuteContext(context.Background(), statement, params...)
}

// ExecuteContext is Execute with a context. Cancelling ctx interrupts the
// engine, including while rows are still being fetched.
//
// A statement string may hold several statements separated by semicolons.
// They run in order, each taking as many parameters as it has placeholders.
// Only the last statement's rows can be fetched; rows produced by earlier
// statements are read and discarded.
func (c *Cursor) ExecuteContext(ctx context.Context, statement string, params ...any) (*Cursor, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if c.conn.isolationLevel != "" && !c.conn.inTransaction() {
		if err := c.conn.begin(ctx, c); err != nil {
			return nil, err
		}
	}

	c.description = nil
	c.rowcount = -1
	if c.results != nil {
		c.results.close()
		c.results = nil
	}

	bound, err := types.BindAll(params)
	if err != nil {
		return nil, &Error{Kind: KindData, Msg: "cannot bind parameters", Err: err}
	}

	stmts := engine.Split(statement)
	if len(stmts) == 0 {
		c.results = emptyStream()
		return c, nil
	}
	for i, stmt := range stmts {
		n := len(bound)
		if i < len(stmts)-1 {
			n = min(stmt.Params, n)
		}
		results, err := c.step(ctx, stmt.SQL, bound[:n], i == len(stmts)-1)
		if err != nil {
			c.description = nil
			c.results = nil
			return nil, err
		}
		bound = bound[n:]
		c.results = results
	}
	return c, nil
}

// traceSavepoint brackets traced statements on backends that step a
// statement before its columns are known, so an aborting tracer can undo it.
const traceSavepoint = "dbapi_exectrace"

// transactionControl statements cannot run inside a savepoint.
var transactionControl = map[string]bool{
	"BEGIN":     true,
	"COMMIT":    true,
	"END":       true,
	"ROLLBACK":  true,
	"SAVEPOINT": true,
	"RELEASE":   true,
	"VACUUM":    true,
}

func keyword(statement string) string {
	end := strings.IndexFunc(statement, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if end < 0 {
		end = len(statement)
	}
	return strings.ToUpper(statement[:end])
}

// step runs one statement. Each statement is stepped exactly once: rows of
// the final statement are left pending for the fetch methods, anything else
// is driven to completion here.
func (c *Cursor) step(ctx context.Context, statement string, params []any, final bool) (*rowStream, error) {
	guarded := c.conn.tracer != nil && engine.EagerQuery && !transactionControl[keyword(statement)]
	if guarded {
		if err := c.conn.exec(ctx, "SAVEPOINT "+traceSavepoint); err != nil {
			return nil, err
		}
	}

	rows, err := c.conn.native.QueryContext(ctx, statement, namedValues(params))
	if err != nil {
		if guarded {
			err = errors.Join(engineError("executing statement", err), c.conn.exec(ctx, "RELEASE "+traceSavepoint))
			return nil, err
		}
		return nil, engineError("executing statement", err)
	}
	desc := describe(rows)
	if err := c.exectrace(ctx, statement, params, desc); err != nil {
		rows.Close()
		if guarded {
			err = errors.Join(err,
				c.conn.exec(ctx, "ROLLBACK TO "+traceSavepoint),
				c.conn.exec(ctx, "RELEASE "+traceSavepoint))
		}
		return nil, err
	}

	var results *rowStream
	if final && desc != nil {
		results = newRowStream(rows, desc, c.conn.converters)
		if !guarded {
			return results, nil
		}
		// The savepoint cannot be released while the statement is pending.
		// A read failure is kept for the first fetch.
		results.materialize()
		results.close()
	} else {
		if err := drain(rows, len(desc)); err != nil {
			if guarded {
				c.conn.exec(ctx, "RELEASE "+traceSavepoint)
			}
			return nil, err
		}
		results = emptyStream()
	}
	if guarded {
		if err := c.conn.exec(ctx, "RELEASE "+traceSavepoint); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// drain steps rows to completion and discards them.
func drain(rows driver.Rows, columns int) error {
	dest := make([]driver.Value, columns)
	for {
		err := rows.Next(dest)
		if isEOF(err) {
			break
		}
		if err != nil {
			rows.Close()
			return engineError("executing statement", err)
		}
	}
	if err := rows.Close(); err != nil {
		return engineError("executing statement", err)
	}
	return nil
}

// exectrace runs once per statement: it records the description and hands
// the statement to the connection's tracer, if any.
func (c *Cursor) exectrace(ctx context.Context, statement string, params []any, desc Description) error {
	c.description = desc
	tracer := c.conn.tracer
	if tracer == nil {
		return nil
	}
	ev := ExecEvent{
		ConnectionID: c.conn.id,
		CursorID:     c.id,
		Statement:    statement,
		Params:       params,
		Description:  desc,
		Time:         time.Now(),
	}
	if err := tracer.TraceExec(ctx, ev); err != nil {
		c.description = nil
		return &Error{Kind: KindOperational, Msg: "execution aborted by tracer", Err: err}
	}
	return nil
}

func namedValues(params []any) []driver.NamedValue {
	if len(params) == 0 {
		return nil
	}
	args := make([]driver.NamedValue, len(params))
	for i, p := range params {
		args[i] = driver.NamedValue{Ordinal: i + 1, Value: p}
	}
	return args
}

// ExecuteMany runs statement once per parameter tuple, in order.
func (c *Cursor) ExecuteMany(statement string, seq [][]any) (*Cursor, error) {
	return c.ExecuteManyContext(context.Background(), statement, seq)
}

// ExecuteManyContext is ExecuteMany with a context.
func (c *Cursor) ExecuteManyContext(ctx context.Context, statement string, seq [][]any) (*Cursor, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	for _, params := range seq {
		if _, err := c.ExecuteContext(ctx, statement, params...); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// fetch returns the next row, or nil at the end of the result set.
func (c *Cursor) fetch() (Row, error) {
	row, err := c.results.next()
	if err != nil {
		if isEOF(err) {
			return nil, nil
		}
		return nil, err
	}
	c.rowcount = max(0, c.rowcount) + 1
	return row, nil
}

// FetchOne returns the next row, or nil when no more rows are available.
func (c *Cursor) FetchOne() (Row, error) {
	if err := c.checkResults(); err != nil {
		return nil, err
	}
	return c.fetch()
}

// FetchMany returns up to size rows; fewer at the end of the result set. A
// size of zero or less means ArraySize.
func (c *Cursor) FetchMany(size int) ([]Row, error) {
	if err := c.checkResults(); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = c.ArraySize
	}
	rows := make([]Row, 0, size)
	for len(rows) < size {
		row, err := c.fetch()
		if err != nil {
			return rows, err
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FetchAll returns every remaining row.
func (c *Cursor) FetchAll() ([]Row, error) {
	if err := c.checkResults(); err != nil {
		return nil, err
	}
	var rows []Row
	for {
		row, err := c.fetch()
		if err != nil {
			return rows, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// All iterates over the remaining rows. A failed precondition or fetch is
// yielded once as the final element.
func (c *Cursor) All() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		if err := c.checkResults(); err != nil {
			yield(nil, err)
			return
		}
		for {
			row, err := c.fetch()
			if err != nil {
				yield(nil, err)
				return
			}
			if row == nil || !yield(row, nil) {
				return
			}
		}
	}
}

// RowCount reports the number of rows the last statement produced: rows
// already fetched plus rows still pending. Counting the pending rows reads
// them into memory; they are still returned by later fetches. RowCount is -1
// when nothing has executed yet or the pending rows could not be read, in
// which case the next fetch reports the failure.
func (c *Cursor) RowCount() (int, error) {
	if err := c.checkOpen(); err != nil {
		return -1, err
	}
	if c.results == nil {
		return -1, nil
	}
	n, err := c.results.materialize()
	if err != nil {
		c.logger.Debug("Row count unavailable", "error", err)
		return -1, nil
	}
	return max(0, c.rowcount) + n, nil
}

// SetInputSizes is accepted for interface compatibility and does nothing.
func (c *Cursor) SetInputSizes(sizes ...int) error {
	return c.checkOpen()
}

// SetOutputSizes is accepted for interface compatibility and does nothing.
func (c *Cursor) SetOutputSizes(size int, columns ...int) error {
	return c.checkOpen()
}

// Close releases the pending result set. Closing twice is an error.
func (c *Cursor) Close() error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.closed = true
	var err error
	if c.results != nil {
		err = c.results.close()
	}
	c.logger.Debug("Closed cursor")
	if err != nil {
		return engineError("closing cursor", err)
	}
	return nil
}
