package client

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrorMetadata carries upstream failure detail reported by the backend.
//
// The zero value means "no upstream detail available". Fields are populated
// opportunistically by the implementation that observed the failure; they
// feed diagnostic logging and never influence the errno returned to the
// filesystem caller.
type ErrorMetadata struct {
	// HTTPStatus is the upstream HTTP status code, or 0 if unknown.
	HTTPStatus int

	// ErrorCode is the backend's error code (e.g. "AccessDenied"), or "".
	ErrorCode string

	// ErrorMessage is the backend's error message, or "".
	ErrorMessage string
}

// Empty reports whether no upstream detail was captured.
func (m ErrorMetadata) Empty() bool {
	return m.HTTPStatus == 0 && m.ErrorCode == "" && m.ErrorMessage == ""
}

// Error is a structured backend failure.
//
// It records which operation failed against which bucket/key, wraps the SDK
// cause for diagnostic chains, and carries any upstream HTTP detail that
// could be extracted from it.
type Error struct {
	// Op is the backend operation that failed (e.g. "PutObject",
	// "UploadPart", "CompleteMultipartUpload").
	Op string

	// Bucket and Key identify the object the operation targeted.
	Bucket string
	Key    string

	// Meta is the upstream detail extracted from Err, if any.
	Meta ErrorMetadata

	// Err is the underlying SDK error.
	Err error
}

func (e *Error) Error() string {
	if e.Meta.ErrorCode != "" {
		return fmt.Sprintf("%s s3://%s/%s: %s: %v", e.Op, e.Bucket, e.Key, e.Meta.ErrorCode, e.Err)
	}
	return fmt.Sprintf("%s s3://%s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ToErrno classifies any backend failure as an I/O error. The richer detail
// in Meta is only ever surfaced through logs.
func (e *Error) ToErrno() syscall.Errno {
	return unix.EIO
}
