package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	cause := errors.New("no such table: ghosts")

	assert.Equal(t, "[query_failed] query execution failed: no such table: ghosts",
		Wrap(ErrKindQueryFailed, "query execution failed", cause).Error())
	assert.Equal(t, "[invalid_mode] invalid mode \"upsert\"",
		Newf(ErrKindInvalidMode, "invalid mode %q", "upsert").Error())
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := Wrap(ErrKindQueryFailed, "write failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrKindQueryFailed, KindOf(fmt.Errorf("outer: %w", err)))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		kind  ErrKind
		check func(error) bool
	}{
		{ErrKindNotFound, IsNotFound},
		{ErrKindTimeout, IsTimeout},
		{ErrKindConnectionFailed, IsConnectionFailed},
		{ErrKindQueryFailed, IsQueryFailed},
		{ErrKindInvalidInput, IsInvalidInput},
		{ErrKindPermissionDenied, IsPermissionDenied},
		{ErrKindInvalidMode, IsInvalidMode},
		{ErrKindInvalidAction, IsInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.True(t, tt.check(New(tt.kind, "boom")))
			assert.False(t, tt.check(New(ErrKindUnknown, "boom")))
			assert.False(t, tt.check(errors.New("plain")))
			assert.False(t, tt.check(nil))
		})
	}
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "unknown", ErrKind(99).String())
}
