package upload

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// Every upload error variant classifies itself to a POSIX errno. Protocol
// violations by the caller (out-of-order writes, operating on a terminal
// request) map to EINVAL/EPERM; backend failures map to EIO; size-limit
// violations map to EFBIG. The richer cause chain never crosses the errno
// boundary - it is only visible through logs.

type alreadyCompletedError struct{}

func (alreadyCompletedError) Error() string {
	return "put request had already completed"
}

func (alreadyCompletedError) ToErrno() syscall.Errno {
	return unix.EPERM
}

type previouslyFailedError struct{}

func (previouslyFailedError) Error() string {
	return "put request had previously failed"
}

func (previouslyFailedError) ToErrno() syscall.Errno {
	return unix.EPERM
}

var (
	// ErrPutRequestAlreadyCompleted is returned by Write and Complete once
	// the request reached the Completed state.
	ErrPutRequestAlreadyCompleted error = alreadyCompletedError{}

	// ErrPutRequestPreviouslyFailed is returned by Write and Complete once
	// the request reached the Failed state.
	ErrPutRequestPreviouslyFailed error = previouslyFailedError{}
)

// OutOfOrderWriteError reports a write whose offset does not match the next
// expected offset. The request state is unchanged: the caller may retry at
// the expected offset.
type OutOfOrderWriteError struct {
	WriteOffset    uint64
	ExpectedOffset uint64
}

func (e *OutOfOrderWriteError) Error() string {
	return fmt.Sprintf("out of order write; expected offset %d but got %d", e.ExpectedOffset, e.WriteOffset)
}

func (e *OutOfOrderWriteError) ToErrno() syscall.Errno {
	return unix.EINVAL
}

// PutRequestFailedError wraps a backend failure that permanently poisoned
// the upload.
type PutRequestFailedError struct {
	Err error
}

func (e *PutRequestFailedError) Error() string {
	return fmt.Sprintf("put request failed: %v", e.Err)
}

func (e *PutRequestFailedError) Unwrap() error {
	return e.Err
}

func (e *PutRequestFailedError) ToErrno() syscall.Errno {
	return unix.EIO
}

// ObjectTooBigError reports a write that would push the object past the
// backend's size cap. The upload is permanently failed.
type ObjectTooBigError struct {
	Size    uint64
	MaxSize uint64
}

func (e *ObjectTooBigError) Error() string {
	return fmt.Sprintf("object size %d would exceed maximum of %d", e.Size, e.MaxSize)
}

func (e *ObjectTooBigError) ToErrno() syscall.Errno {
	return unix.EFBIG
}
