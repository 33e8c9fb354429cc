package driver

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/tomyedwab/sqlite-dbapi/dbapi"
	"github.com/tomyedwab/sqlite-dbapi/types"
)

// DriverName is the name the driver is registered under with database/sql.
const DriverName = "sqlite-dbapi"

// IsolationLevelParam is the DSN query parameter holding the isolation level.
const IsolationLevelParam = "isolation_level"

// --- Driver implementation ---

// Driver opens dbapi connections for database/sql.
type Driver struct {
	Logger *slog.Logger     // Optional, defaults to slog.Default()
	Tracer dbapi.ExecTracer // Optional, handed to every connection
}

// Open returns a new connection to the database named by dsn.
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	c, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return c.Connect(context.Background())
}

// OpenConnector parses dsn once for all connections of a pool.
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	cfg, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.Logger = d.Logger
	cfg.Tracer = d.Tracer
	return &Connector{cfg: cfg, driver: d}, nil
}

// ParseDSN splits a DSN into the connection configuration. The
// isolation_level parameter is consumed; other parameters stay on the path.
func ParseDSN(dsn string) (dbapi.Config, error) {
	path, rawQuery, found := strings.Cut(dsn, "?")
	if !found {
		return dbapi.Config{Path: path}, nil
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return dbapi.Config{}, fmt.Errorf("driver: invalid DSN %q: %w", dsn, err)
	}
	cfg := dbapi.Config{IsolationLevel: query.Get(IsolationLevelParam)}
	query.Del(IsolationLevelParam)
	if path == "" {
		path = dbapi.MemoryPath
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	cfg.Path = path
	return cfg, nil
}

// --- Connector implementation ---

// Connector opens connections with a fixed configuration.
type Connector struct {
	cfg    dbapi.Config
	driver *Driver
}

// NewConnector returns a connector for cfg, for use with sql.OpenDB.
func NewConnector(cfg dbapi.Config) *Connector {
	return &Connector{cfg: cfg, driver: &Driver{Logger: cfg.Logger, Tracer: cfg.Tracer}}
}

// Config returns the configuration every connection is opened with.
func (c *Connector) Config() dbapi.Config {
	return c.cfg
}

func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := dbapi.Open(c.cfg)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn}, nil
}

func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// --- Connection implementation ---

// Conn adapts a dbapi.Connection to driver.Conn.
type Conn struct {
	conn *dbapi.Connection
	tx   *Tx
}

var (
	_ driver.ConnPrepareContext = (*Conn)(nil)
	_ driver.ConnBeginTx        = (*Conn)(nil)
	_ driver.NamedValueChecker  = (*Conn)(nil)
	_ driver.Validator          = (*Conn)(nil)
)

// Connection exposes the underlying dbapi connection, e.g. through
// sql.Conn.Raw.
func (c *Conn) Connection() *dbapi.Connection {
	return c.conn
}

// Prepare returns a statement bound to c. Nothing is compiled until the
// statement runs.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if c.conn.Closed() {
		return nil, driver.ErrBadConn
	}
	return &Stmt{conn: c, query: query}, nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) IsValid() bool {
	return !c.conn.Closed()
}

// Begin starts and returns a new transaction.
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx issues BEGIN with the connection's isolation level. SQLite has no
// per-transaction isolation levels or read-only transactions.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if c.tx != nil {
		return nil, fmt.Errorf("driver: transaction already active on connection %s", c.conn.ID())
	}
	if opts.ReadOnly {
		return nil, &dbapi.Error{Kind: dbapi.KindNotSupported, Msg: "read-only transactions"}
	}
	if opts.Isolation != driver.IsolationLevel(0) {
		return nil, &dbapi.Error{Kind: dbapi.KindNotSupported, Msg: "per-transaction isolation levels"}
	}
	if err := c.conn.Begin(ctx); err != nil {
		return nil, err
	}
	c.tx = &Tx{conn: c}
	return c.tx, nil
}

// CheckNamedValue converts arguments to engine storage classes up front so
// database/sql does not reject types it does not know, such as civil.Date.
func (c *Conn) CheckNamedValue(nv *driver.NamedValue) error {
	if nv.Name != "" {
		return &dbapi.Error{Kind: dbapi.KindNotSupported, Msg: fmt.Sprintf("named argument %q", nv.Name)}
	}
	v, err := types.Bind(nv.Value)
	if err != nil {
		return &dbapi.Error{Kind: dbapi.KindData, Msg: fmt.Sprintf("cannot bind argument %d", nv.Ordinal), Err: err}
	}
	nv.Value = v
	return nil
}

// autocommit commits statements run outside of a database/sql transaction.
func (c *Conn) autocommit() error {
	if c.tx != nil {
		return nil
	}
	return c.conn.Commit()
}

// --- Statement implementation ---

// Stmt implements the driver.Stmt interface.
type Stmt struct {
	conn  *Conn
	query string
}

var (
	_ driver.StmtExecContext  = (*Stmt)(nil)
	_ driver.StmtQueryContext = (*Stmt)(nil)
)

func (s *Stmt) Close() error {
	return nil
}

// NumInput returns -1; the engine checks the argument count itself.
func (s *Stmt) NumInput() int {
	return -1
}

func namedValues(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return named
}

func positional(args []driver.NamedValue) []any {
	params := make([]any, len(args))
	for i, a := range args {
		params[i] = a.Value
	}
	return params
}

func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), namedValues(args))
}

// ExecContext runs the statement to completion and reports its changes.
func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	cur, err := s.conn.conn.Cursor()
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	if _, err := cur.ExecuteContext(ctx, s.query, positional(args)...); err != nil {
		return nil, err
	}
	// Rows produced by RETURNING clauses only take effect when stepped.
	if cur.Description() != nil {
		if _, err := cur.FetchAll(); err != nil {
			return nil, err
		}
	}
	affected, lastID, err := s.conn.conn.Changes(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.conn.autocommit(); err != nil {
		return nil, err
	}
	return &result{lastInsertID: lastID, rowsAffected: affected}, nil
}

func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), namedValues(args))
}

func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	cur, err := s.conn.conn.Cursor()
	if err != nil {
		return nil, err
	}
	if _, err := cur.ExecuteContext(ctx, s.query, positional(args)...); err != nil {
		cur.Close()
		return nil, err
	}
	return &Rows{cursor: cur, conn: s.conn}, nil
}

// --- Transaction implementation ---

// Tx implements the driver.Tx interface.
type Tx struct {
	conn *Conn
}

func (t *Tx) done() (*Conn, error) {
	if t.conn == nil {
		return nil, errors.New("driver: transaction already committed or rolled back")
	}
	c := t.conn
	t.conn = nil
	c.tx = nil
	return c, nil
}

func (t *Tx) Commit() error {
	c, err := t.done()
	if err != nil {
		return err
	}
	return c.conn.Commit()
}

func (t *Tx) Rollback() error {
	c, err := t.done()
	if err != nil {
		return err
	}
	return c.conn.Rollback()
}

// --- Result implementation ---

type result struct {
	lastInsertID int64
	rowsAffected int64
}

func (r *result) LastInsertId() (int64, error) {
	return r.lastInsertID, nil
}

func (r *result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

// --- Rows implementation ---

// Rows streams the rows of a cursor.
type Rows struct {
	cursor *dbapi.Cursor
	conn   *Conn
}

var (
	_ driver.RowsColumnTypeDatabaseTypeName = (*Rows)(nil)
	_ driver.RowsColumnTypeNullable         = (*Rows)(nil)
)

func (r *Rows) Columns() []string {
	return r.cursor.Description().Names()
}

func (r *Rows) ColumnTypeDatabaseTypeName(index int) string {
	return string(r.cursor.Description()[index].TypeCode)
}

func (r *Rows) ColumnTypeNullable(index int) (nullable, ok bool) {
	return r.cursor.Description()[index].NullOK, true
}

// Close releases the cursor and, outside of a transaction, commits.
func (r *Rows) Close() error {
	if r.cursor.Closed() {
		return nil
	}
	return errors.Join(r.cursor.Close(), r.conn.autocommit())
}

func (r *Rows) Next(dest []driver.Value) error {
	row, err := r.cursor.FetchOne()
	if err != nil {
		return err
	}
	if row == nil {
		return io.EOF
	}
	if len(row) != len(dest) {
		return fmt.Errorf("driver: column count mismatch. Expected %d, got %d", len(dest), len(row))
	}
	for i, v := range row {
		dest[i] = driverValue(v)
	}
	return nil
}

// driverValue maps converted column values back to the value types
// database/sql accepts from a driver.
func driverValue(v any) driver.Value {
	switch x := v.(type) {
	case civil.Date:
		return x.In(time.UTC)
	case civil.DateTime:
		return x.In(time.UTC)
	case civil.Time:
		return x.String()
	}
	return v
}
