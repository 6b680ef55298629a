package httpapi

import (
	"bytes"
	"encoding/json"

	"github.com/koustreak/relstore/internal/database"
	"github.com/koustreak/relstore/internal/errs"
)

// decodeParams turns a JSON object into database.Named and a JSON array into
// database.Positional. Absent or null params bind nothing.
func decodeParams(raw json.RawMessage) (database.Params, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid params", err)
	}

	switch v := v.(type) {
	case map[string]any:
		named := make(database.Named, len(v))
		for k, val := range v {
			named[k] = fromJSON(val)
		}
		return named, nil
	case []any:
		pos := make(database.Positional, len(v))
		for i, val := range v {
			pos[i] = fromJSON(val)
		}
		return pos, nil
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "params must be an object or an array")
	}
}

// fromJSON narrows json.Number to int64 when integral, float64 otherwise.
// Nested objects and arrays are passed through and rejected at bind time.
func fromJSON(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
