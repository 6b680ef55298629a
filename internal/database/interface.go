package database

import "context"

// Store is the contract the rest of relstore programs against.
// *Client is the only production implementation; tests substitute fakes.
type Store interface {
	// Execute runs a parameterized statement in the given mode
	// (read, insert, update, delete). Failures are returned as *errs.Error.
	Execute(ctx context.Context, query string, params Params, mode string) (*Result, error)

	// ManageTable runs a table lifecycle action (create, drop, backup).
	// It never returns an error: failures are logged and reported in TableResult.
	ManageTable(ctx context.Context, table, columns, action string) TableResult

	// TableExists reports whether the catalog lists table. Lookup errors
	// are logged and reported as false.
	TableExists(ctx context.Context, table string) bool

	// Columns returns the ordered column metadata of table.
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)

	// LastInsertID returns the identifier generated by the most recent
	// insert on this client's connection.
	LastInsertID(ctx context.Context) (string, error)

	// Close releases the connection handle.
	Close() error
}

var _ Store = (*Client)(nil)

// Result is the outcome of Execute.
type Result struct {
	Mode Mode `json:"mode"`

	// Read results. Rows is non-nil for ModeRead, even when empty.
	Columns []string `json:"columns,omitempty"`
	Rows    []Row    `json:"rows,omitempty"`

	// Write results.
	RowsAffected int64  `json:"rows_affected"`
	LastInsertID string `json:"last_insert_id,omitempty"` // set for ModeInsert when the engine reports one
}

// TableResult is the outcome of ManageTable.
type TableResult struct {
	Action Action
	Table  string // table acted on; for backups, the snapshot table
	OK     bool
	Err    error // classified cause when OK is false
}

// ColumnInfo describes a single column in a table.
type ColumnInfo struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}
