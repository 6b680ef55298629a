package database

import (
	"strings"

	"github.com/koustreak/relstore/internal/errs"
)

// Mode selects how Execute runs a statement.
type Mode string

const (
	ModeRead   Mode = "read"
	ModeInsert Mode = "insert"
	ModeUpdate Mode = "update"
	ModeDelete Mode = "delete"
)

// ParseMode resolves a case-insensitive mode name. "select" is accepted
// as an alias for read.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRead, ModeInsert, ModeUpdate, ModeDelete:
		return m, nil
	case "select":
		return ModeRead, nil
	default:
		return "", errs.Newf(errs.ErrKindInvalidMode,
			"invalid mode %q: allowed modes are read, insert, update, delete", s)
	}
}

// IsWrite reports whether the mode mutates the store.
func (m Mode) IsWrite() bool {
	return m == ModeInsert || m == ModeUpdate || m == ModeDelete
}

// Action selects a table lifecycle operation for ManageTable.
type Action string

const (
	ActionCreate Action = "create"
	ActionDrop   Action = "drop"
	ActionBackup Action = "backup"
)

// ParseAction resolves a case-insensitive table action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionCreate, ActionDrop, ActionBackup:
		return a, nil
	default:
		return "", errs.Newf(errs.ErrKindInvalidAction,
			"invalid table action %q: allowed actions are create, drop, backup", s)
	}
}
