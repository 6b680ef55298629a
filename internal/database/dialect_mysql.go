package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/koustreak/relstore/internal/errs"
)

// MySQL error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDBAccessDenied  = 1044
	errAccessDenied    = 1045
	errUnknownDatabase = 1049
	errTooManyConns    = 1040
	errLockWaitTimeout = 1205
	errQueryTimeout    = 3024
)

var mysqlDialect = &dialect{
	driver:     DriverMySQL,
	driverName: "mysql",

	existsSQL: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type   = 'BASE TABLE'
		  AND table_name   = ?`,

	columnsSQL: `
		SELECT column_name,
		       data_type,
		       is_nullable = 'YES',
		       column_key  = 'PRI'
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name   = ?
		ORDER BY ordinal_position`,

	lastIDSQL: `SELECT LAST_INSERT_ID()`,

	quote: func(name string) string {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	},

	maxIdentLen: 64,

	setup: func(*Config) []string { return nil },

	classify:        classifyMySQL,
	reportsInsertID: true,
}

func classifyMySQL(err error) errs.ErrKind {
	if errors.Is(err, mysql.ErrInvalidConn) {
		return errs.ErrKindConnectionFailed
	}

	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return errs.ErrKindUnknown
	}

	switch mysqlErr.Number {
	case errDBAccessDenied, errAccessDenied:
		return errs.ErrKindPermissionDenied
	case errUnknownDatabase, errTooManyConns:
		return errs.ErrKindConnectionFailed
	case errLockWaitTimeout, errQueryTimeout:
		return errs.ErrKindTimeout
	default:
		return errs.ErrKindQueryFailed
	}
}
