package filestore

import "time"

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Bucket holds the object.
	Bucket string `json:"bucket"`

	// Key is the full object path within the bucket (e.g. "contacts/contacts_20261019120000.jsonl").
	Key string `json:"key"`

	// Size is the byte size of the object. -1 if unknown.
	Size int64 `json:"size"`

	// ContentType is the MIME type.
	ContentType string `json:"content_type,omitempty"`

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string `json:"etag,omitempty"`

	// LastModified is when the object was last written.
	LastModified time.Time `json:"last_modified,omitzero"`
}

// ListOptions controls how ListObjects filters results.
type ListOptions struct {
	// Prefix restricts results to objects whose key starts with this string.
	Prefix string

	// Recursive lists everything under Prefix instead of one level.
	Recursive bool

	// Limit caps the number of results returned. 0 means no cap.
	Limit int
}
