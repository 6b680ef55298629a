package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/relstore/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver Driver
		want   *dialect
	}{
		{"", sqliteDialect},
		{DriverSQLite, sqliteDialect},
		{"SQLite3", sqliteDialect},
		{DriverMySQL, mysqlDialect},
		{DriverPostgres, postgresDialect},
		{"postgresql", postgresDialect},
	}

	for _, tt := range tests {
		t.Run(string(tt.driver), func(t *testing.T) {
			got, err := dialectFor(tt.driver)
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}

	_, err := dialectFor("oracle")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestDialect_Quote(t *testing.T) {
	assert.Equal(t, `"contacts"`, sqliteDialect.quote("contacts"))
	assert.Equal(t, `"con""tacts"`, postgresDialect.quote(`con"tacts`))
	assert.Equal(t, "`contacts`", mysqlDialect.quote("contacts"))
}

func TestDialect_Setup(t *testing.T) {
	cfg := DefaultConfig(MemoryDSN)
	assert.Equal(t, []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"}, sqliteDialect.setup(cfg))
	assert.Empty(t, mysqlDialect.setup(cfg))
	assert.Empty(t, postgresDialect.setup(cfg))
}

func TestMapError_Generic(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errs.ErrKind
	}{
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), errs.ErrKindTimeout},
		{"canceled", context.Canceled, errs.ErrKindTimeout},
		{"conn done", sql.ErrConnDone, errs.ErrKindConnectionFailed},
		{"plain", errors.New("boom"), errs.ErrKindQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sqliteDialect.mapError(tt.err, "query execution failed")
			assert.Equal(t, tt.kind, errs.KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestMapError_MySQL(t *testing.T) {
	tests := []struct {
		number uint16
		kind   errs.ErrKind
	}{
		{errAccessDenied, errs.ErrKindPermissionDenied},
		{errUnknownDatabase, errs.ErrKindConnectionFailed},
		{errLockWaitTimeout, errs.ErrKindTimeout},
		{1146, errs.ErrKindQueryFailed}, // no such table
		{1062, errs.ErrKindQueryFailed}, // duplicate entry
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.number), func(t *testing.T) {
			err := mysqlDialect.mapError(&mysql.MySQLError{Number: tt.number, Message: "x"}, "query execution failed")
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}

	assert.True(t, errs.IsConnectionFailed(mysqlDialect.mapError(mysql.ErrInvalidConn, "ping failed")))
}

func TestMapError_Postgres(t *testing.T) {
	tests := []struct {
		code string
		kind errs.ErrKind
	}{
		{"42P01", errs.ErrKindQueryFailed}, // undefined_table
		{"23505", errs.ErrKindQueryFailed}, // unique_violation
		{"42501", errs.ErrKindPermissionDenied},
		{"28P01", errs.ErrKindPermissionDenied},
		{"57014", errs.ErrKindTimeout},
		{"08006", errs.ErrKindConnectionFailed},
		{"3D000", errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := postgresDialect.mapError(&pgconn.PgError{Code: tt.code, Message: "x"}, "query execution failed")
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}
}

func TestMapError_SQLiteNonEngineError(t *testing.T) {
	assert.Equal(t, errs.ErrKindUnknown, classifySQLite(errors.New("not sqlite")))
}
