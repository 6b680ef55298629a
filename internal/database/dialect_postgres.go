package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register "pgx" driver
	"github.com/koustreak/relstore/internal/errs"
)

var postgresDialect = &dialect{
	driver:     DriverPostgres,
	driverName: "pgx",

	existsSQL: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type   = 'BASE TABLE'
		  AND table_name   = $1`,

	columnsSQL: `
		SELECT c.column_name,
		       c.data_type,
		       c.is_nullable = 'YES',
		       EXISTS (
		         SELECT 1
		         FROM information_schema.table_constraints tc
		         JOIN information_schema.key_column_usage kcu
		           ON tc.constraint_name = kcu.constraint_name
		          AND tc.table_schema    = kcu.table_schema
		         WHERE tc.constraint_type = 'PRIMARY KEY'
		           AND tc.table_schema    = c.table_schema
		           AND tc.table_name      = c.table_name
		           AND kcu.column_name    = c.column_name
		       )
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema()
		  AND c.table_name   = $1
		ORDER BY c.ordinal_position`,

	// lastval() raises when no sequence was used in the session.
	lastIDSQL: `SELECT lastval()`,

	quote: quoteANSI,

	// NAMEDATALEN-1
	maxIdentLen: 63,

	setup: func(*Config) []string { return nil },

	classify: classifyPostgres,

	// pgx's stdlib result does not implement LastInsertId.
	reportsInsertID: false,
}

// classifyPostgres maps SQLSTATE classes to an ErrKind.
// Codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
func classifyPostgres(err error) errs.ErrKind {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errs.ErrKindConnectionFailed
	}
	if pgconn.Timeout(err) {
		return errs.ErrKindTimeout
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return errs.ErrKindUnknown
	}

	switch {
	case pgErr.Code == "42501":
		return errs.ErrKindPermissionDenied
	case pgErr.Code == "57014", pgErr.Code == "55P03":
		return errs.ErrKindTimeout
	case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "3D"), strings.HasPrefix(pgErr.Code, "57P"):
		return errs.ErrKindConnectionFailed
	case strings.HasPrefix(pgErr.Code, "28"):
		return errs.ErrKindPermissionDenied
	default:
		return errs.ErrKindQueryFailed
	}
}
