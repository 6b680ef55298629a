package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/koustreak/relstore/internal/errs"
)

// dialect holds everything that differs between engines. The Client never
// branches on Driver directly.
type dialect struct {
	driver     Driver
	driverName string // name registered with database/sql

	// Catalog and session queries. Each takes the table name as its only
	// parameter where one is needed.
	existsSQL  string
	columnsSQL string
	lastIDSQL  string

	// quote wraps an already validated identifier for the engine.
	quote func(name string) string

	// maxIdentLen is the engine's identifier length limit; 0 means none.
	maxIdentLen int

	// setup returns statements run once on the pinned connection after Open.
	setup func(cfg *Config) []string

	// classify maps a native driver error to a kind, or ErrKindUnknown.
	classify func(err error) errs.ErrKind

	// reportsInsertID is false when sql.Result.LastInsertId is unsupported
	// and the session function must be queried instead.
	reportsInsertID bool
}

func dialectFor(d Driver) (*dialect, error) {
	switch Driver(strings.ToLower(string(d))) {
	case "", DriverSQLite, "sqlite3":
		return sqliteDialect, nil
	case DriverMySQL:
		return mysqlDialect, nil
	case DriverPostgres, "postgresql", "pgx":
		return postgresDialect, nil
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported driver %q", d)
	}
}

// quoteANSI wraps a SQL identifier in double-quotes (ANSI standard).
func quoteANSI(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// mapError translates a driver error into *errs.Error. err must be non-nil.
func (d *dialect) mapError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	if kind := d.classify(err); kind != errs.ErrKindUnknown {
		return errs.Wrap(kind, msg, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		}
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

// lastInsertID asks the engine for the session's last generated identifier.
func (d *dialect) lastInsertID(ctx context.Context, q queryer) (string, error) {
	var id sql.NullInt64
	if err := q.QueryRowContext(ctx, d.lastIDSQL).Scan(&id); err != nil {
		return "", d.mapError(err, "failed to read last insert id")
	}
	if !id.Valid {
		return "", nil
	}
	return formatID(id.Int64), nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (d *dialect) String() string {
	return fmt.Sprintf("%s(%s)", d.driver, d.driverName)
}
