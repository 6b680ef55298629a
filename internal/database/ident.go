package database

import (
	"regexp"
	"time"

	"github.com/koustreak/relstore/internal/errs"
)

// backupTimeLayout renders the sortable YYYYMMDDHHMMSS suffix of backup tables.
const backupTimeLayout = "20060102150405"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdent rejects table names that are not plain SQL identifiers.
// Table names are spliced into DDL, so anything outside [A-Za-z0-9_]
// is refused instead of escaped. Length limits are engine specific and
// checked by the client.
func ValidateIdent(name string) error {
	if !identPattern.MatchString(name) {
		return errs.Newf(errs.ErrKindInvalidInput, "invalid table name %q", name)
	}
	return nil
}

// validateIdent is ValidateIdent plus the engine's identifier length limit.
func (d *dialect) validateIdent(name string) error {
	if err := ValidateIdent(name); err != nil {
		return err
	}
	if d.maxIdentLen > 0 && len(name) > d.maxIdentLen {
		return errs.Newf(errs.ErrKindInvalidInput,
			"table name %q exceeds %d characters", name, d.maxIdentLen)
	}
	return nil
}

// BackupName derives the snapshot table name for table taken at t.
func BackupName(table string, t time.Time) string {
	return table + "_backup_" + t.UTC().Format(backupTimeLayout)
}
