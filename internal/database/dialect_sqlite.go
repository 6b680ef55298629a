package database

import (
	"errors"
	"fmt"

	"github.com/koustreak/relstore/internal/errs"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var sqliteDialect = &dialect{
	driver:     DriverSQLite,
	driverName: "sqlite",

	existsSQL: `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`,

	columnsSQL: `
		SELECT name,
		       type,
		       "notnull" = 0,
		       pk > 0
		FROM pragma_table_info(?)
		ORDER BY cid`,

	lastIDSQL: `SELECT last_insert_rowid()`,

	quote: quoteANSI,

	setup: func(cfg *Config) []string {
		return []string{
			"PRAGMA foreign_keys = ON",
			fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		}
	},

	classify:        classifySQLite,
	reportsInsertID: true,
}

// classifySQLite maps primary SQLite result codes to an ErrKind.
func classifySQLite(err error) errs.ErrKind {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return errs.ErrKindUnknown
	}

	switch sqliteErr.Code() & 0xff {
	case sqlite3lib.SQLITE_CANTOPEN, sqlite3lib.SQLITE_NOTADB:
		return errs.ErrKindConnectionFailed
	case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED, sqlite3lib.SQLITE_INTERRUPT:
		return errs.ErrKindTimeout
	case sqlite3lib.SQLITE_PERM, sqlite3lib.SQLITE_AUTH, sqlite3lib.SQLITE_READONLY:
		return errs.ErrKindPermissionDenied
	default:
		return errs.ErrKindQueryFailed
	}
}
