package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relstore/internal/database"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, database.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultDSN, cfg.Database.DSN)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "relstore-exports", cfg.Export.Bucket)
	assert.False(t, cfg.Export.Enabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
database:
  dsn: contacts.db
  query_timeout: 2s
log:
  level: debug
http:
  addr: 127.0.0.1:9090
export:
  endpoint: localhost:9000
  bucket: from-file
`)
	t.Setenv("RELSTORE_DB_DSN", "override.db")
	t.Setenv("RELSTORE_EXPORT_BUCKET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "override.db", cfg.Database.DSN)
	assert.Equal(t, 2*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Addr)
	assert.Equal(t, "localhost:9000", cfg.Export.Endpoint)
	assert.Equal(t, "from-env", cfg.Export.Bucket)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing file",
			setup:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: "not found",
		},
		{
			name:    "bad yaml",
			setup:   func(t *testing.T) string { return writeFile(t, "database: [") },
			wantErr: "parse config",
		},
		{
			name: "bad env duration",
			setup: func(t *testing.T) string {
				t.Setenv("RELSTORE_DB_QUERY_TIMEOUT", "soon")
				return ""
			},
			wantErr: "parse env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.setup(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
