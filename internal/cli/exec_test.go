package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec_TextOutput(t *testing.T) {
	dsn := tempDSN(t)
	_, _, err := run(t, "--dsn", dsn, "table", "create", "contacts", "--columns", "id INTEGER PRIMARY KEY, name TEXT, phone TEXT")
	require.NoError(t, err)

	stdout, _, err := run(t, "--dsn", dsn, "exec", "--mode", "insert",
		"--param", "name=John Doe", "--param", "phone=123",
		"INSERT INTO contacts (name, phone) VALUES (:name, :phone)")
	require.NoError(t, err)
	assert.Equal(t, "1 rows affected\nlast insert id: 1\n", stdout)

	stdout, _, err = run(t, "--dsn", dsn, "exec", "--arg", "1", "SELECT name, phone FROM contacts WHERE id = ?")
	require.NoError(t, err)
	assert.Equal(t, "NAME      PHONE\nJohn Doe  123\n(1 rows)\n", stdout)

	stdout, _, err = run(t, "--dsn", dsn, "exec", "--mode", "delete", "--arg", "1", "DELETE FROM contacts WHERE id = ?")
	require.NoError(t, err)
	assert.Equal(t, "1 rows affected\n", stdout)

	stdout, _, err = run(t, "--dsn", dsn, "exec", "SELECT * FROM contacts")
	require.NoError(t, err)
	assert.Equal(t, "ID  NAME  PHONE\n(0 rows)\n", stdout)
}

func TestExec_JSONOutput(t *testing.T) {
	dsn := tempDSN(t)
	_, _, err := run(t, "--dsn", dsn, "table", "create", "contacts", "--columns", "id INTEGER PRIMARY KEY, name TEXT")
	require.NoError(t, err)
	_, _, err = run(t, "--dsn", dsn, "exec", "-m", "insert", "-a", "Jane", "INSERT INTO contacts (name) VALUES (?)")
	require.NoError(t, err)

	stdout, _, err := run(t, "--dsn", dsn, "--format", "json", "exec", "SELECT id, name FROM contacts")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Mode    string           `json:"mode"`
			Columns []string         `json:"columns"`
			Rows    []map[string]any `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "read", resp.Data.Mode)
	assert.Equal(t, []string{"id", "name"}, resp.Data.Columns)
	assert.Equal(t, []map[string]any{{"id": float64(1), "name": "Jane"}}, resp.Data.Rows)
}
