package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relstore/internal/database"
	"github.com/koustreak/relstore/internal/logger"
)

func newTestServer(t *testing.T) (*httptest.Server, *bytes.Buffer) {
	t.Helper()
	clock := func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	c, err := database.Open(context.Background(), database.DefaultConfig(database.MemoryDSN), database.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	var logs bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", Output: &logs})

	ts := httptest.NewServer(New(c, log).Handler())
	t.Cleanup(ts.Close)
	return ts, &logs
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServer_ContactsFlow(t *testing.T) {
	ts, logs := newTestServer(t)

	status, body := do(t, ts, http.MethodPut, "/tables/contacts", `{"columns":"id INTEGER PRIMARY KEY, name TEXT, phone TEXT"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "create", body["action"])

	status, body = do(t, ts, http.MethodGet, "/tables/contacts", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["exists"])

	status, body = do(t, ts, http.MethodPost, "/query",
		`{"sql":"INSERT INTO contacts (name, phone) VALUES (:name, :phone)","params":{"name":"John Doe","phone":"123-456-7890"},"mode":"insert"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1", body["last_insert_id"])
	assert.EqualValues(t, 1, body["rows_affected"])

	status, _ = do(t, ts, http.MethodPost, "/query",
		`{"sql":"INSERT INTO contacts (name, phone) VALUES (?, ?)","params":["Jane Smith","987-654-3210"],"mode":"insert"}`)
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, ts, http.MethodPost, "/query",
		`{"sql":"SELECT name FROM contacts WHERE id = :id","params":{"id":2},"mode":"read"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"name"}, body["columns"])
	assert.Equal(t, []any{map[string]any{"name": "Jane Smith"}}, body["rows"])

	status, body = do(t, ts, http.MethodGet, "/tables/contacts/rows", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["rows"], 2)

	status, body = do(t, ts, http.MethodPost, "/tables/contacts/backup", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "contacts_backup_20261019120000", body["table"])

	status, body = do(t, ts, http.MethodDelete, "/tables/contacts", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "drop", body["action"])

	assert.Contains(t, logs.String(), `"message":"request served"`)
	assert.Contains(t, logs.String(), `"path":"/tables/contacts/backup"`)
}

func TestServer_Columns(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, ts, http.MethodPut, "/tables/contacts", `{"columns":"id INTEGER PRIMARY KEY, name TEXT NOT NULL"}`)

	resp, err := ts.Client().Get(ts.URL + "/tables/contacts/columns")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cols []database.ColumnInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cols))
	require.Len(t, cols, 2)
	assert.Equal(t, database.ColumnInfo{Name: "id", DataType: "INTEGER", Nullable: true, PrimaryKey: true}, cols[0])
	assert.Equal(t, database.ColumnInfo{Name: "name", DataType: "TEXT", Nullable: false, PrimaryKey: false}, cols[1])
}

func TestServer_Errors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   string
	}{
		{"invalid mode", http.MethodPost, "/query", `{"sql":"SELECT 1","mode":"upsert"}`, http.StatusBadRequest, "invalid_mode"},
		{"bad body", http.MethodPost, "/query", `{`, http.StatusBadRequest, "invalid_input"},
		{"bad params", http.MethodPost, "/query", `{"sql":"SELECT 1","params":"x","mode":"read"}`, http.StatusBadRequest, "invalid_input"},
		{"nested param", http.MethodPost, "/query", `{"sql":"SELECT ?","params":[{"a":1}],"mode":"read"}`, http.StatusBadRequest, "invalid_input"},
		{"missing table query", http.MethodPost, "/query", `{"sql":"SELECT * FROM ghosts","mode":"read"}`, http.StatusInternalServerError, "query_failed"},
		{"missing rows", http.MethodGet, "/tables/ghosts/rows", "", http.StatusNotFound, "not_found"},
		{"missing columns", http.MethodGet, "/tables/ghosts/columns", "", http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, ts, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestServer_TableActionFailure(t *testing.T) {
	ts, _ := newTestServer(t)

	status, body := do(t, ts, http.MethodPost, "/tables/ghosts/backup", "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "ghosts")

	status, body = do(t, ts, http.MethodPut, "/tables/contacts", `{"columns":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, false, body["ok"])

	status, body = do(t, ts, http.MethodGet, "/tables/ghosts", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["exists"])
}

func TestServer_Health(t *testing.T) {
	ts, _ := newTestServer(t)
	status, body := do(t, ts, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestDecodeParams(t *testing.T) {
	p, err := decodeParams(json.RawMessage(`{"id": 3, "ratio": 0.5, "name": "x", "gone": null}`))
	require.NoError(t, err)
	assert.Equal(t, database.Named{"id": int64(3), "ratio": 0.5, "name": "x", "gone": nil}, p)

	p, err = decodeParams(json.RawMessage(`[1, true]`))
	require.NoError(t, err)
	assert.Equal(t, database.Positional{int64(1), true}, p)

	p, err = decodeParams(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = decodeParams(json.RawMessage(`42`))
	assert.Error(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	c, err := database.Open(context.Background(), database.DefaultConfig(database.MemoryDSN))
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(c, nil).Run(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
