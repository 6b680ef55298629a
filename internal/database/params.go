package database

import (
	"database/sql"
	"database/sql/driver"
	"sort"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/koustreak/relstore/internal/errs"
)

// Params binds values to statement placeholders. It is implemented only by
// Named and Positional; a nil Params binds nothing.
type Params interface {
	args() ([]any, error)
}

// Named binds by placeholder name. Keys may carry the placeholder prefix
// (":name", "@name", "$name") or be bare ("name"); two keys naming the same
// placeholder are rejected.
//
// Named works with the SQLite driver only: the MySQL and pgx drivers reject
// sql.Named arguments. Use Positional there.
type Named map[string]any

// Positional binds to placeholders in order: "?" for SQLite and MySQL,
// "$1", "$2", ... for Postgres.
type Positional []any

func (n Named) args() ([]any, error) {
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	seen := make(map[string]string, len(keys))
	for _, k := range keys {
		name := trimPlaceholderPrefix(k)
		if r, _ := utf8.DecodeRuneInString(name); name == "" || !(unicode.IsLetter(r) || r == '_') {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "invalid parameter name %q", k)
		}
		if prev, ok := seen[name]; ok {
			return nil, errs.Newf(errs.ErrKindInvalidInput,
				"parameter names %q and %q both bind %q", prev, k, name)
		}
		seen[name] = k
		v, err := scalar(k, n[k])
		if err != nil {
			return nil, err
		}
		out = append(out, sql.Named(name, v))
	}
	return out, nil
}

func (p Positional) args() ([]any, error) {
	out := make([]any, len(p))
	for i, v := range p {
		s, err := scalar(i+1, v)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func bindArgs(p Params) ([]any, error) {
	if p == nil {
		return nil, nil
	}
	return p.args()
}

func trimPlaceholderPrefix(k string) string {
	if k != "" && (k[0] == ':' || k[0] == '@' || k[0] == '$') {
		return k[1:]
	}
	return k
}

// scalar accepts the value kinds a statement parameter may carry.
func scalar(key any, v any) (any, error) {
	switch v.(type) {
	case nil, string, []byte, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, time.Time, driver.Valuer:
		return v, nil
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "parameter %v has non-scalar type %T", key, v)
	}
}
