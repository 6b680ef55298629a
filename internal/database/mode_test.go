package database

import (
	"strings"
	"testing"
	"time"

	"github.com/koustreak/relstore/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"read", ModeRead},
		{"SELECT", ModeRead},
		{" Insert ", ModeInsert},
		{"update", ModeUpdate},
		{"DELETE", ModeDelete},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "upsert", "exec"} {
		_, err := ParseMode(bad)
		assert.True(t, errs.IsInvalidMode(err), "mode %q", bad)
	}

	assert.True(t, ModeDelete.IsWrite())
	assert.False(t, ModeRead.IsWrite())
}

func TestParseAction(t *testing.T) {
	for in, want := range map[string]Action{"create": ActionCreate, "DROP": ActionDrop, "Backup": ActionBackup} {
		got, err := ParseAction(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", "exists", "truncate"} {
		_, err := ParseAction(bad)
		assert.True(t, errs.IsInvalidAction(err), "action %q", bad)
	}
}

func TestValidateIdent(t *testing.T) {
	for _, ok := range []string{"contacts", "_tmp", "Contacts_2026"} {
		assert.NoError(t, ValidateIdent(ok), ok)
	}

	for _, bad := range []string{"", "2fast", "contacts;", "a b", `x"y`, "ümlaut", string(make([]byte, 64))} {
		assert.True(t, errs.IsInvalidInput(ValidateIdent(bad)), "%q", bad)
	}

	assert.NoError(t, ValidateIdent(strings.Repeat("t", 200)))
}

func TestDialect_IdentLength(t *testing.T) {
	tests := []struct {
		dialect *dialect
		ok      int
		tooLong int
	}{
		{sqliteDialect, 500, 0},
		{mysqlDialect, 64, 65},
		{postgresDialect, 63, 64},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			assert.NoError(t, tt.dialect.validateIdent(strings.Repeat("t", tt.ok)))
			if tt.tooLong > 0 {
				err := tt.dialect.validateIdent(strings.Repeat("t", tt.tooLong))
				assert.True(t, errs.IsInvalidInput(err))
			}
		})
	}
}

func TestBackupName(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "contacts_backup_20260102020405", BackupName("contacts", at))
}
