// Package database implements relstore's data-access client: one exclusively
// owned connection to a relational engine (SQLite by default, MySQL and
// Postgres through the same dialect seam), a mode-dispatched Execute for
// reads and writes, and ManageTable for table lifecycle work.
//
// The two entry points follow different error policies. Execute returns a
// typed *errs.Error; ManageTable and TableExists never fail loudly, they log
// and report false.
//
// Usage:
//
//	c, err := database.Open(ctx, database.DefaultConfig("addressbook.db"))
//	if err != nil { ... }
//	defer c.Close()
//
//	c.ManageTable(ctx, "contacts", "id INTEGER PRIMARY KEY, name TEXT", "create")
//	res, err := c.Execute(ctx, "SELECT * FROM contacts WHERE id = :id",
//	    database.Named{":id": 1}, "read")
package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/koustreak/relstore/internal/errs"
	"github.com/koustreak/relstore/internal/logger"
)

// queryer is satisfied by *sql.Conn and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Client owns a single connection to the engine.
//
// A Client is not safe for concurrent use: callers sharing one must
// serialize access themselves.
type Client struct {
	db      *sql.DB
	conn    *sql.Conn
	cfg     Config
	dialect *dialect
	log     *logger.Logger
	now     func() time.Time
}

// Option customises a Client at Open.
type Option func(*Client)

// WithLogger sets the logger used for diagnostics. The default writes
// errors as JSON to stderr, so table failures are never silent.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithClock sets the time source used to name backup tables.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Open connects to the target named by cfg and pins one connection for the
// lifetime of the Client. Any failure to open or reach the engine is
// returned as ErrKindConnectionFailed.
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "database config is required")
	}
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "database dsn is required")
	}

	c := &Client{cfg: *cfg, dialect: d, log: defaultLogger(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Component("database")

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	db, err := sql.Open(d.driverName, cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "database connection failed", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "database connection failed", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "database connection failed", err)
	}
	for _, stmt := range d.setup(cfg) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close()
			_ = db.Close()
			return nil, errs.Wrap(errs.ErrKindConnectionFailed, "database connection failed", err)
		}
	}

	c.db, c.conn = db, conn
	c.log.DebugWith("connection opened", map[string]any{"dialect": d.String()})
	return c, nil
}

// Close severs the connection. It is safe to call more than once.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	err := errors.Join(c.conn.Close(), c.db.Close())
	c.conn, c.db = nil, nil
	if err != nil {
		return errs.Wrap(errs.ErrKindConnectionFailed, "failed to close connection", err)
	}
	c.log.Debug("connection closed")
	return nil
}

// Execute runs query with params according to mode.
//
// For ModeRead it returns every row, fully materialized. For write modes it
// returns the affected-row count and, for inserts, the generated id. An
// unrecognised mode fails with ErrKindInvalidMode before anything reaches the
// engine; engine rejections fail with ErrKindQueryFailed.
func (c *Client) Execute(ctx context.Context, query string, params Params, mode string) (*Result, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	conn, err := c.handle()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return executor{q: conn, dialect: c.dialect}.run(ctx, query, params, m)
}

// LastInsertID returns the identifier assigned by the most recent successful
// insert on this client's connection. The value is connection-scoped: read it
// right after the insert it belongs to.
func (c *Client) LastInsertID(ctx context.Context) (string, error) {
	conn, err := c.handle()
	if err != nil {
		return "", err
	}
	return c.dialect.lastInsertID(ctx, conn)
}

func (c *Client) handle() (*sql.Conn, error) {
	if c == nil || c.conn == nil {
		return nil, errs.New(errs.ErrKindConnectionFailed, "database client is closed")
	}
	return c.conn, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.QueryTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.QueryTimeout)
	}
	return ctx, func() {}
}

// executor runs statements against a connection or a transaction.
type executor struct {
	q       queryer
	dialect *dialect
	inTx    bool
}

func (e executor) run(ctx context.Context, query string, params Params, mode Mode) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "sql statement is empty")
	}
	args, err := bindArgs(params)
	if err != nil {
		return nil, err
	}

	if mode == ModeRead {
		rows, err := e.q.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, e.dialect.mapError(err, "query execution failed")
		}
		columns, out, err := ScanRows(rows)
		if err != nil {
			return nil, err
		}
		return &Result{Mode: mode, Columns: columns, Rows: out}, nil
	}

	res, err := e.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, e.dialect.mapError(err, "query execution failed")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, e.dialect.mapError(err, "failed to read affected rows")
	}

	out := &Result{Mode: mode, RowsAffected: n}
	if mode == ModeInsert {
		out.LastInsertID = e.insertID(ctx, res)
	}
	return out, nil
}

// insertID prefers the id reported with the statement result. A failed
// session lookup would abort a Postgres transaction, so inside one the
// fallback is skipped.
func (e executor) insertID(ctx context.Context, res sql.Result) string {
	if e.dialect.reportsInsertID {
		if id, err := res.LastInsertId(); err == nil {
			return formatID(id)
		}
	}
	if e.inTx {
		return ""
	}
	id, err := e.dialect.lastInsertID(ctx, e.q)
	if err != nil {
		return ""
	}
	return id
}

func defaultLogger() *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Level = "error"
	return logger.New(cfg)
}
