// Package upload turns a sequence of filesystem write calls into a single
// backend create-object operation.
//
// An Uploader opens streaming put requests against a shared object client;
// each UploadRequest owns one in-flight stream and enforces the invariant
// the backend demands but the kernel does not guarantee: writes must be
// strictly ordered and contiguous, and once the stream fails the object is
// permanently unusable.
package upload

import (
	"context"
	"io"

	"github.com/marmos91/bucketfs/pkg/client"
)

// Uploader creates and manages streaming put requests.
//
// One Uploader is shared across arbitrarily many concurrent Put calls for
// different keys; it holds no per-key state.
type Uploader struct {
	client client.ObjectClient
}

// NewUploader creates an Uploader that will make requests to the given
// client.
func NewUploader(c client.ObjectClient) *Uploader {
	return &Uploader{client: c}
}

// Put starts a new streaming upload for the given object.
//
// On success the returned request is InProgress and owns both the backend
// stream and the caller's handle; the handle is released exactly once, when
// the request leaves the InProgress state. On backend failure the client's
// error is returned untouched - translation to an errno is the caller's
// responsibility - and no stream or handle ownership is taken.
func (u *Uploader) Put(ctx context.Context, bucket, key string, handle io.Closer) (*UploadRequest, error) {
	request, err := u.client.PutObject(ctx, bucket, key, &client.PutObjectParams{})
	if err != nil {
		return nil, err
	}

	var maxSize uint64
	if limiter, ok := u.client.(client.ObjectSizeLimiter); ok {
		maxSize = limiter.MaxObjectSize()
	}

	return &UploadRequest{
		bucket:  bucket,
		key:     key,
		maxSize: maxSize,
		kind:    stateInProgress,
		request: request,
		handle:  handle,
	}, nil
}
