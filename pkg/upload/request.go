package upload

import (
	"context"
	"io"
	"time"

	"github.com/marmos91/bucketfs/internal/logger"
	"github.com/marmos91/bucketfs/pkg/client"
)

// abortTimeout bounds the best-effort backend abort that runs when a request
// is poisoned, so cleanup cannot hang a caller that is already handling a
// failure.
const abortTimeout = 30 * time.Second

// stateKind tags the three states of an upload request. The terminal states
// are absorbing: once Completed or Failed, a request never becomes
// InProgress again.
type stateKind int

const (
	stateInProgress stateKind = iota
	stateCompleted
	stateFailed
)

// UploadRequest manages the upload of one object.
//
// It handles the lifecycle of a streaming put request, invalidates it on
// errors, and enforces sequential writes: the backend stream is strictly
// sequential and non-seekable, so any out-of-order write is rejected locally
// before touching the backend, giving an immediate attributable error
// instead of an opaque backend-side failure later.
//
// Concurrency contract: operations on distinct requests may run
// concurrently, but calls on one UploadRequest must be serialized by the
// caller (the filesystem-protocol layer serializes operations per file
// handle). The read-state/decide/mutate sequences below are not protected by
// a lock and are not safe if two calls on the same request race.
type UploadRequest struct {
	bucket     string
	key        string
	nextOffset uint64
	maxSize    uint64 // 0 means no cap advertised by the client

	kind    stateKind
	request client.PutObjectRequest // valid only while kind == stateInProgress
	handle  io.Closer               // released exactly once on leaving InProgress
}

// Key returns the object key this request uploads to.
func (r *UploadRequest) Key() string {
	return r.key
}

// Size returns the number of bytes accepted so far, which is also the offset
// the next write must start at.
func (r *UploadRequest) Size() uint64 {
	return r.nextOffset
}

// InProgress reports whether the request has neither completed nor failed.
func (r *UploadRequest) InProgress() bool {
	return r.kind == stateInProgress
}

// Write appends data to the upload at the given offset.
//
// The offset must equal Size(); anything else fails with
// OutOfOrderWriteError and leaves the request untouched, so the caller may
// retry at the expected offset. On success the full length is always
// written - partial writes are not a supported outcome of this layer. A
// backend failure permanently poisons the request.
func (r *UploadRequest) Write(ctx context.Context, offset int64, data []byte) (int, error) {
	next := r.nextOffset
	if uint64(offset) != next {
		return 0, &OutOfOrderWriteError{WriteOffset: uint64(offset), ExpectedOffset: next}
	}

	switch r.kind {
	case stateCompleted:
		logger.Error("write to already uploaded object: key=%s", r.key)
		return 0, ErrPutRequestAlreadyCompleted
	case stateFailed:
		logger.Error("write after previous error: key=%s", r.key)
		return 0, ErrPutRequestPreviouslyFailed
	}

	if r.maxSize > 0 && next+uint64(len(data)) > r.maxSize {
		size := next + uint64(len(data))
		r.fail()
		return 0, &ObjectTooBigError{Size: size, MaxSize: r.maxSize}
	}

	if err := r.request.Write(ctx, data); err != nil {
		logger.Error("write failed: key=%s offset=%d error=%v", r.key, offset, err)
		r.fail()
		return 0, &PutRequestFailedError{Err: err}
	}

	r.nextOffset += uint64(len(data))
	return len(data), nil
}

// Complete finalizes the upload, making the object visible as a whole.
//
// The state is swapped to Completed before the backend call: under the
// serialization contract no other call can be in flight, and marking the
// terminal state up front guarantees a re-entrant Write or Complete is
// rejected rather than racing with the finalize. The caller's handle is
// released here regardless of the backend outcome.
func (r *UploadRequest) Complete(ctx context.Context) (*client.PutObjectResult, error) {
	switch r.kind {
	case stateCompleted:
		logger.Error("object already uploaded: key=%s", r.key)
		return nil, ErrPutRequestAlreadyCompleted
	case stateFailed:
		logger.Error("complete after previous error: key=%s", r.key)
		return nil, ErrPutRequestPreviouslyFailed
	}

	request := r.request
	r.kind = stateCompleted
	r.request = nil

	// The handle's cleanup runs here regardless of the backend outcome.
	r.releaseHandle()

	result, err := request.Complete(ctx)
	if err != nil {
		r.kind = stateFailed
		logger.Error("put failed, object was not uploaded: key=%s size=%d error=%v", r.key, r.nextOffset, err)
		abortBackend(request, r.key)
		return nil, &PutRequestFailedError{Err: err}
	}

	logger.Debug("put succeeded: key=%s size=%d", r.key, r.nextOffset)
	return result, nil
}

// Abort abandons an in-progress upload without making the object visible.
//
// The owning filesystem handle calls this when it is released while a write
// is still in flight (e.g. the file was closed without flushing, or the
// mount is being torn down). The caller's handle is released and the backend
// stream is aborted explicitly rather than left to the backend's
// orphaned-upload handling. Aborting a request that already reached a
// terminal state is a no-op.
func (r *UploadRequest) Abort(ctx context.Context) error {
	if r.kind != stateInProgress {
		return nil
	}

	request := r.request
	r.kind = stateFailed
	r.request = nil
	r.releaseHandle()

	if err := request.Abort(ctx); err != nil {
		logger.Warn("failed to abort upload: key=%s error=%v", r.key, err)
		return err
	}
	return nil
}

// fail moves the request to the Failed state, releasing the handle and
// aborting the backend stream best-effort.
func (r *UploadRequest) fail() {
	request := r.request
	r.kind = stateFailed
	r.request = nil
	r.releaseHandle()
	abortBackend(request, r.key)
}

// releaseHandle runs the caller handle's cleanup. Nil-guarded so every exit
// path out of InProgress can call it without risking a double release.
func (r *UploadRequest) releaseHandle() {
	if r.handle == nil {
		return
	}
	if err := r.handle.Close(); err != nil {
		logger.Warn("failed to release handle: key=%s error=%v", r.key, err)
	}
	r.handle = nil
}

// abortBackend aborts a backend stream with its own deadline. Best effort:
// the upload is already failed and the object can never become visible, so
// an abort failure only delays the backend's own cleanup.
func abortBackend(request client.PutObjectRequest, key string) {
	if request == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), abortTimeout)
	defer cancel()
	if err := request.Abort(ctx); err != nil {
		logger.Warn("failed to abort backend stream: key=%s error=%v", key, err)
	}
}
