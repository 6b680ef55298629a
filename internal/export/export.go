// Package export copies a table's rows into object storage as JSON lines.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/koustreak/relstore/internal/database"
	"github.com/koustreak/relstore/internal/errs"
	"github.com/koustreak/relstore/internal/filestore"
	"github.com/koustreak/relstore/internal/logger"
)

// ContentType of uploaded exports.
const ContentType = "application/x-ndjson"

const keyTimeLayout = "20060102150405"

// Exporter dumps tables from a database.Store into a filestore.Store.
type Exporter struct {
	db     database.Store
	files  filestore.Store
	bucket string
	prefix string
	log    *logger.Logger
	now    func() time.Time
}

// New returns an Exporter writing to cfg.Bucket under cfg.Prefix.
func New(db database.Store, files filestore.Store, cfg *filestore.Config, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Exporter{
		db:     db,
		files:  files,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		log:    log.Component("export"),
		now:    time.Now,
	}
}

// Key returns the object key an export of table taken at t is written to.
func (e *Exporter) Key(table string, t time.Time) string {
	return path.Join(e.prefix, table, table+"_"+t.UTC().Format(keyTimeLayout)+".jsonl")
}

// ExportTable reads every row of table and uploads it as one JSON object per
// line, keys in column order. A missing table fails with ErrKindNotFound.
func (e *Exporter) ExportTable(ctx context.Context, table string) (*filestore.ObjectInfo, error) {
	if err := database.ValidateIdent(table); err != nil {
		return nil, err
	}
	if !e.db.TableExists(ctx, table) {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %q not found", table)
	}

	res, err := e.db.Execute(ctx, "SELECT * FROM "+table, nil, string(database.ModeRead))
	if err != nil {
		return nil, err
	}

	body, err := EncodeRows(res.Columns, res.Rows)
	if err != nil {
		return nil, err
	}

	if err := e.files.EnsureBucket(ctx, e.bucket); err != nil {
		return nil, err
	}
	key := e.Key(table, e.now())
	if _, err := e.files.PutObject(ctx, e.bucket, key, bytes.NewReader(body), int64(len(body)), ContentType); err != nil {
		return nil, err
	}

	// Read back what the store kept; a short object means a truncated upload.
	info, err := e.files.StatObject(ctx, e.bucket, key)
	if err != nil {
		return nil, err
	}
	if info.Size != int64(len(body)) {
		return nil, errs.Newf(errs.ErrKindQueryFailed,
			"export %s/%s stored %d bytes, expected %d", e.bucket, key, info.Size, len(body))
	}

	e.log.InfoWith("table exported", map[string]any{
		"table":  table,
		"rows":   len(res.Rows),
		"bucket": e.bucket,
		"key":    key,
		"size":   info.Size,
	})
	return info, nil
}

// ListExports returns earlier exports of table, oldest first. limit caps the
// result when positive.
func (e *Exporter) ListExports(ctx context.Context, table string, limit int) ([]filestore.ObjectInfo, error) {
	if err := database.ValidateIdent(table); err != nil {
		return nil, err
	}

	objects, err := e.files.ListObjects(ctx, e.bucket, filestore.ListOptions{
		Prefix:    path.Join(e.prefix, table) + "/",
		Recursive: true,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// EncodeRows renders rows as JSON lines with keys in column order.
func EncodeRows(columns []string, rows []database.Row) ([]byte, error) {
	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteByte('{')
		for i, col := range columns {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(col)
			if err != nil {
				return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to encode column name", err)
			}
			v, err := json.Marshal(row[col])
			if err != nil {
				return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("failed to encode column %q", col), err)
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteString("}\n")
	}
	return buf.Bytes(), nil
}
