package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound, "missing")

	require.NotNil(t, err)
	assert.Equal(t, CodeNotFound, err.Code())
	assert.Equal(t, "missing", err.Message())
	assert.Equal(t, ClassificationPermanent, err.Classification())
	assert.Nil(t, err.Unwrap())
	assert.Nil(t, err.Context())
	assert.Equal(t, "[NOT_FOUND] missing", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeUnsupported, "%s does not support %s", "spiffs", "directories")
	assert.Equal(t, "spiffs does not support directories", err.Message())
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(cause, CodeIOFailure, "write failed")

	require.NotNil(t, err)
	assert.Equal(t, CodeIOFailure, err.Code())
	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, "[IO_FAILURE] write failed: disk on fire", err.Error())
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeNotFound, "test"))
	assert.Nil(t, Wrapf(nil, CodeNotFound, "test %d", 1))
	assert.Nil(t, WrapWithContext(nil, CodeNotFound, "test", nil))
}

func TestWrap_PreservesClassification(t *testing.T) {
	original := New(CodeNetwork, "connection reset")
	require.True(t, original.Classification().IsRetryable())

	wrapped := Wrap(original, CodeIOFailure, "read failed")
	assert.True(t, wrapped.Classification().IsRetryable())
}

func TestWrapWithContext_CopiesMap(t *testing.T) {
	ctx := map[string]interface{}{"path": "/a"}
	err := WrapWithContext(stderrors.New("boom"), CodeIOFailure, "remove", ctx)

	ctx["path"] = "/mutated"
	assert.Equal(t, "/a", err.Context()["path"])

	got := err.Context()
	got["path"] = "/again"
	assert.Equal(t, "/a", err.Context()["path"])
}

func TestWithContext(t *testing.T) {
	err := WithContext(New(CodeNotFound, "missing"), "path", "/x")
	err = WithContext(err, "op", "open")

	assert.Equal(t, CodeNotFound, err.Code())
	assert.Equal(t, map[string]interface{}{"path": "/x", "op": "open"}, err.Context())
}

func TestWithContext_StandardError(t *testing.T) {
	err := WithContext(stderrors.New("plain"), "k", "v")
	assert.Equal(t, CodeUnknown, err.Code())
	assert.Equal(t, "plain", err.Message())
	assert.Nil(t, WithContext(nil, "k", "v"))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{
			name: "platform error",
			err:  New(CodeNotFound, "not found"),
			want: CodeNotFound,
		},
		{
			name: "outermost code wins",
			err:  Wrap(New(CodeTimeout, "timeout"), CodeIOFailure, "read"),
			want: CodeIOFailure,
		},
		{
			name: "fmt wrapped",
			err:  fmt.Errorf("ctx: %w", New(CodeUnsupported, "flat")),
			want: CodeUnsupported,
		},
		{
			name: "standard error",
			err:  stderrors.New("standard error"),
			want: CodeUnknown,
		},
		{
			name: "nil error",
			err:  nil,
			want: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(New(CodeNotEmpty, "x"), CodeNotEmpty))
	assert.False(t, HasCode(nil, CodeUnknown))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(CodeTimeout, "slow")))
	assert.False(t, IsRetryable(New(CodeNotFound, "gone")))
	assert.False(t, IsRetryable(stderrors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestFromFS(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"not exist", fs.ErrNotExist, CodeNotFound},
		{"path error not exist", &fs.PathError{Op: "open", Path: "a", Err: fs.ErrNotExist}, CodeNotFound},
		{"exist", fs.ErrExist, CodeAlreadyExists},
		{"permission", fs.ErrPermission, CodePermission},
		{"closed", fs.ErrClosed, CodeClosed},
		{"unsupported", fmt.Errorf("%w: O_APPEND", stderrors.ErrUnsupported), CodeUnsupported},
		{"not a directory", &fs.PathError{Op: "readdir", Path: "f", Err: syscall.ENOTDIR}, CodeNotADirectory},
		{"not empty", &fs.PathError{Op: "remove", Path: "d", Err: syscall.ENOTEMPTY}, CodeNotEmpty},
		{"deadline", context.DeadlineExceeded, CodeTimeout},
		{"other", stderrors.New("weird"), CodeIOFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromFS("op", "/p", tt.err)
			require.NotNil(t, err)
			assert.Equal(t, tt.want, err.Code())
			assert.True(t, stderrors.Is(err, tt.err))
			assert.Equal(t, "/p", err.Context()["path"])
		})
	}
}

func TestFromFS_PassThrough(t *testing.T) {
	original := New(CodeUnsupported, "no dirs")
	assert.Equal(t, original, FromFS("mkdir", "/d", original))
	assert.Nil(t, FromFS("mkdir", "/d", nil))
}
