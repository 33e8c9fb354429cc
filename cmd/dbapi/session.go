package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tomyedwab/sqlite-dbapi/audit"
	"github.com/tomyedwab/sqlite-dbapi/dbapi"
	"github.com/tomyedwab/sqlite-dbapi/dialect"
)

// session is one open database, plus the audit store when configured.
type session struct {
	conn    *dbapi.Connection
	auditDB *sqlx.DB
}

func openSession(target string) (*session, error) {
	s := &session{}
	var tracer dbapi.ExecTracer
	if cfg.AuditDB != "" {
		db, err := dialect.New("").OpenDB(&dialect.URL{Scheme: dialect.Scheme, Database: cfg.AuditDB})
		if err != nil {
			return nil, fmt.Errorf("opening audit database: %w", err)
		}
		auditLogger, err := audit.NewLogger(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing audit database: %w", err)
		}
		s.auditDB = db
		tracer = auditLogger
	}

	conn, err := connect(target, tracer)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.conn = conn
	logger.Info("Opened database", "target", target, "connection_id", conn.ID())
	return s, nil
}

func connect(target string, tracer dbapi.ExecTracer) (*dbapi.Connection, error) {
	if !strings.Contains(target, "://") {
		return dbapi.Open(dbapi.Config{
			Path:           target,
			IsolationLevel: cfg.IsolationLevel,
			Logger:         logger,
			Tracer:         tracer,
		})
	}

	var registry dialect.Registry
	dialect.Register(&registry, dialect.Options{Logger: logger, Tracer: tracer})
	d, u, err := registry.Resolve(target)
	if err != nil {
		return nil, err
	}
	if d.IsolationLevel == "" {
		d.IsolationLevel = cfg.IsolationLevel
	}
	return d.Connect(d.CreateConnectArgs(u))
}

// Close commits pending work and closes everything the session opened.
func (s *session) Close() error {
	var errs []error
	if s.conn != nil && !s.conn.Closed() {
		errs = append(errs, s.conn.Commit(), s.conn.Close())
	}
	if s.auditDB != nil {
		errs = append(errs, s.auditDB.Close())
	}
	return errors.Join(errs...)
}
