package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/koustreak/relstore/internal/errs"
)

// ManageTable runs a table lifecycle action:
//
//   - create: CREATE TABLE IF NOT EXISTS table (columns). Idempotent.
//   - drop:   DROP TABLE IF EXISTS table. Idempotent.
//   - backup: CREATE TABLE table_backup_<YYYYMMDDHHMMSS> AS SELECT * FROM table.
//     Only columns and rows are copied; indexes, constraints and triggers are not.
//
// columns is used by create only. ManageTable never returns an error: any
// failure, including an unknown action, is logged and reported with OK false.
// The columns clause is passed to the engine verbatim and must come from a
// trusted caller.
func (c *Client) ManageTable(ctx context.Context, table, columns, action string) TableResult {
	res := TableResult{Table: table}

	act, err := ParseAction(action)
	if err != nil {
		return c.tableFailed(res, action, err)
	}
	res.Action = act

	if err := c.dialect.validateIdent(table); err != nil {
		return c.tableFailed(res, action, err)
	}
	conn, err := c.handle()
	if err != nil {
		return c.tableFailed(res, action, err)
	}

	var stmt, failure string
	switch act {
	case ActionCreate:
		if strings.TrimSpace(columns) == "" {
			return c.tableFailed(res, action,
				errs.Newf(errs.ErrKindInvalidInput, "column definitions are required to create table %q", table))
		}
		stmt = fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", c.dialect.quote(table), columns)
		failure = fmt.Sprintf("error creating table %q", table)
	case ActionDrop:
		stmt = "DROP TABLE IF EXISTS " + c.dialect.quote(table)
		failure = fmt.Sprintf("error dropping table %q", table)
	case ActionBackup:
		res.Table = BackupName(table, c.now())
		if err := c.dialect.validateIdent(res.Table); err != nil {
			return c.tableFailed(res, action, err)
		}
		stmt = fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s", c.dialect.quote(res.Table), c.dialect.quote(table))
		failure = fmt.Sprintf("error backing up table %q", table)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return c.tableFailed(res, action, c.dialect.mapError(err, failure))
	}

	res.OK = true
	c.log.DebugWith("table action applied", map[string]any{
		"action": string(act),
		"table":  res.Table,
	})
	return res
}

func (c *Client) tableFailed(res TableResult, action string, err error) TableResult {
	res.OK = false
	res.Err = err
	c.log.ErrorWith("table action failed", err, map[string]any{
		"action": action,
		"table":  res.Table,
	})
	return res
}

// TableExists reports whether the catalog lists a table named table.
// A failed lookup is logged and reported as false, so false means either
// "absent" or "could not tell".
func (c *Client) TableExists(ctx context.Context, table string) bool {
	ok, err := c.tableExists(ctx, table)
	if err != nil {
		c.log.ErrorWith("table existence check failed", err, map[string]any{"table": table})
		return false
	}
	return ok
}

func (c *Client) tableExists(ctx context.Context, table string) (bool, error) {
	conn, err := c.handle()
	if err != nil {
		return false, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var name string
	err = conn.QueryRowContext(ctx, c.dialect.existsSQL, table).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, c.dialect.mapError(err, "failed to check table existence")
	}
	return true, nil
}

// Columns returns the columns of table in declaration order.
// An unknown table fails with ErrKindNotFound.
func (c *Client) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	conn, err := c.handle()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	rows, err := conn.QueryContext(ctx, c.dialect.columnsSQL, table)
	if err != nil {
		return nil, c.dialect.mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &col.PrimaryKey); err != nil {
			return nil, c.dialect.mapError(err, "failed to scan column info")
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, c.dialect.mapError(err, "error iterating columns")
	}
	if len(cols) == 0 {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %q not found", table)
	}
	return cols, nil
}
