// Package fs translates the rich errors of the write path into the single
// POSIX errno the kernel understands, and emits the structured events that
// preserve what the errno throws away.
package fs

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/marmos91/bucketfs/pkg/client"
	"github.com/marmos91/bucketfs/pkg/metadata"
	"github.com/marmos91/bucketfs/pkg/upload"
)

// ToErrno is implemented by errors that classify themselves to a POSIX
// errno. Classification is a capability of the error value, not a central
// registry: each layer's errors know their own errno.
type ToErrno interface {
	error
	ToErrno() syscall.Errno
}

// Error is a filesystem operation failure: an errno for the kernel plus an
// internal message, cause chain, severity, and diagnostic metadata for the
// event log. Everything but the errno stays on this side of the kernel
// boundary.
type Error struct {
	// Errno is what the kernel sees.
	Errno syscall.Errno

	// Message describes the failure for the event log. It never reaches
	// the caller of the filesystem operation.
	Message string

	// Cause is the underlying error, or nil.
	Cause error

	// Level is the severity the event log emits this error at.
	Level zerolog.Level

	// Metadata is the diagnostic context for the event log.
	Metadata ErrorMetadata
}

// ErrorOption customizes an Error built by NewError.
type ErrorOption func(*Error)

// WithCause attaches the underlying error.
func WithCause(cause error) ErrorOption {
	return func(e *Error) {
		e.Cause = cause
	}
}

// WithLevel overrides the severity (default: warn).
func WithLevel(level zerolog.Level) ErrorOption {
	return func(e *Error) {
		e.Level = level
	}
}

// WithMetadata attaches diagnostic metadata, merged over anything already
// collected from the cause.
func WithMetadata(meta ErrorMetadata) ErrorOption {
	return func(e *Error) {
		e.Metadata = meta.Merge(e.Metadata)
	}
}

// NewError builds a filesystem error with the given errno and printf-style
// internal message. Options attach a cause, severity, and metadata; when a
// cause is attached its own metadata is folded in automatically.
func NewError(errno syscall.Errno, format string, args ...any) *Error {
	e := &Error{
		Errno:   errno,
		Message: fmt.Sprintf(format, args...),
		Level:   zerolog.WarnLevel,
	}
	return e
}

// Apply runs the options against the error and returns it, folding in
// metadata carried by the cause chain.
func (e *Error) Apply(opts ...ErrorOption) *Error {
	for _, opt := range opts {
		opt(e)
	}
	e.Metadata = e.Metadata.Merge(metadataFromCause(e.Cause))
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ToErrno returns the errno the kernel sees.
func (e *Error) ToErrno() syscall.Errno {
	return e.Errno
}

// FromInodeError translates a namespace failure. The internal message is a
// fixed string; the variant detail travels in the cause and metadata.
func FromInodeError(err *metadata.InodeError) *Error {
	e := NewError(err.ToErrno(), "inode error").Apply(
		WithCause(err),
		WithMetadata(ErrorMetadata{
			BucketName: err.Bucket,
			ObjectKey:  err.Key,
		}),
	)
	return e
}

// FromUploadError translates a write-path failure. The internal message is
// a fixed string; the variant detail travels in the cause, and upstream
// service details are pulled from any backend client error in the chain.
func FromUploadError(err ToErrno) *Error {
	return NewError(err.ToErrno(), "upload error").Apply(WithCause(err))
}

// ErrnoOf resolves any error to the errno the kernel should see. Errors
// that classify themselves are asked; raw errnos pass through; anything
// else is EIO.
func ErrnoOf(err error) syscall.Errno {
	var te ToErrno
	if errors.As(err, &te) {
		return te.ToErrno()
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return unix.EIO
}

// metadataFromCause extracts diagnostic metadata carried by errors in the
// cause chain.
func metadataFromCause(cause error) ErrorMetadata {
	if cause == nil {
		return ErrorMetadata{}
	}

	var meta ErrorMetadata

	var ie *metadata.InodeError
	if errors.As(cause, &ie) {
		meta = meta.Merge(ErrorMetadata{BucketName: ie.Bucket, ObjectKey: ie.Key})
	}

	var ce *client.Error
	if errors.As(cause, &ce) {
		meta = meta.Merge(ErrorMetadata{
			BucketName: ce.Bucket,
			ObjectKey:  ce.Key,
			Client:     ce.Meta,
		})
	}

	return meta
}

// ensure the upload package's errors satisfy the classification capability
var (
	_ ToErrno = &upload.OutOfOrderWriteError{}
	_ ToErrno = &upload.PutRequestFailedError{}
	_ ToErrno = &upload.ObjectTooBigError{}
)
