// Package client defines the contract between BucketFS and the object
// storage backend that performs the actual bytes-on-the-wire work.
//
// The write path only needs one capability from the backend: a streaming,
// append-only "create object" operation that becomes visible as a whole
// object when finalized. Implementations live in subpackages (pkg/client/s3
// for real S3-compatible stores, pkg/client/mock for tests).
package client

import "context"

// ObjectClient starts streaming create-object operations against a backend
// store.
//
// Implementations must be safe for concurrent use across independent keys:
// one client instance is shared by arbitrarily many in-flight uploads and
// holds no per-key state.
type ObjectClient interface {
	// PutObject initiates a streaming create-object operation for the given
	// bucket and key. On failure no partially-initialized stream is leaked;
	// the returned error describes the backend failure.
	PutObject(ctx context.Context, bucket, key string, params *PutObjectParams) (PutObjectRequest, error)
}

// PutObjectRequest is one in-flight streaming upload.
//
// The stream is strictly sequential and non-seekable: each Write appends the
// whole buffer after all previously written bytes. Calls on a single request
// must be serialized by the caller. Once any call fails, the request is
// unusable and the object must never become visible.
type PutObjectRequest interface {
	// Write appends data to the stream. Partial writes are not a supported
	// outcome: either the whole buffer is accepted or an error is returned.
	Write(ctx context.Context, data []byte) error

	// Complete finalizes the upload, making the object visible as a whole.
	Complete(ctx context.Context) (*PutObjectResult, error)

	// Abort abandons the upload without making the object visible.
	// It is idempotent and safe to call after a failed Write.
	Abort(ctx context.Context) error
}

// PutObjectParams carries optional per-upload settings.
//
// The zero value is valid and selects backend defaults.
type PutObjectParams struct {
	// ContentType is stored as the object's Content-Type when non-empty.
	ContentType string

	// StorageClass selects a backend storage class when non-empty.
	StorageClass string
}

// PutObjectResult describes a successfully finalized object.
type PutObjectResult struct {
	// ETag is the backend's entity tag for the finalized object.
	ETag string

	// Size is the total number of bytes in the finalized object.
	Size uint64
}

// ObjectSizeLimiter is an optional ObjectClient capability advertising the
// largest object the backend can accept on this client's configuration.
//
// The upload layer uses it to reject oversized writes locally, before the
// backend would fail them with an opaque error.
type ObjectSizeLimiter interface {
	// MaxObjectSize returns the object size cap in bytes, or 0 for no cap.
	MaxObjectSize() uint64
}
