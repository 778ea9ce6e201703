// Package mock provides an in-memory client.ObjectClient for tests.
//
// The mock is byte-accurate about visibility: an object only appears in the
// store once its upload has been completed, and an aborted or failed upload
// never makes it visible. Failures can be injected per key to exercise the
// error paths of the upload lifecycle.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/marmos91/bucketfs/pkg/client"
)

// Client is an in-memory object store.
//
// Safe for concurrent use.
type Client struct {
	mu sync.Mutex

	objects    map[string][]byte
	inProgress map[string]*putRequest

	putFailure      error
	writeFailures   map[string]error
	completeFailure map[string]error

	writeCalls    map[string]int
	completeCalls map[string]int
}

// NewClient creates an empty in-memory object store.
func NewClient() *Client {
	return &Client{
		objects:         make(map[string][]byte),
		inProgress:      make(map[string]*putRequest),
		writeFailures:   make(map[string]error),
		completeFailure: make(map[string]error),
		writeCalls:      make(map[string]int),
		completeCalls:   make(map[string]int),
	}
}

// FailPutObject makes every subsequent PutObject call fail with err.
// Pass nil to clear.
func (c *Client) FailPutObject(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putFailure = err
}

// FailWrites makes stream writes for the given key fail with err.
func (c *Client) FailWrites(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeFailures[key] = err
}

// FailComplete makes stream completion for the given key fail with err.
func (c *Client) FailComplete(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completeFailure[key] = err
}

// Contains reports whether a completed object exists for key.
func (c *Client) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.objects[key]
	return ok
}

// ObjectData returns the bytes of a completed object, or nil.
func (c *Client) ObjectData(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.objects[key]...)
}

// UploadInProgress reports whether an upload for key has been started but
// neither completed nor aborted.
func (c *Client) UploadInProgress(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inProgress[key]
	return ok
}

// WriteCalls returns how many stream writes reached the backend for key.
func (c *Client) WriteCalls(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeCalls[key]
}

// CompleteCalls returns how many completions reached the backend for key.
func (c *Client) CompleteCalls(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completeCalls[key]
}

// PutObject starts a new in-memory upload.
func (c *Client) PutObject(ctx context.Context, bucket, key string, params *client.PutObjectParams) (client.PutObjectRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.putFailure != nil {
		return nil, &client.Error{Op: "PutObject", Bucket: bucket, Key: key, Err: c.putFailure}
	}

	req := &putRequest{client: c, bucket: bucket, key: key}
	c.inProgress[key] = req
	return req, nil
}

// putRequest is one in-memory streaming upload.
type putRequest struct {
	client *Client
	bucket string
	key    string
	data   []byte
	done   bool
}

func (r *putRequest) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c := r.client
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writeCalls[r.key]++

	if r.done {
		return &client.Error{Op: "UploadPart", Bucket: r.bucket, Key: r.key, Err: fmt.Errorf("upload already terminated")}
	}
	if err := c.writeFailures[r.key]; err != nil {
		return &client.Error{Op: "UploadPart", Bucket: r.bucket, Key: r.key, Err: err}
	}

	r.data = append(r.data, data...)
	return nil
}

func (r *putRequest) Complete(ctx context.Context) (*client.PutObjectResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := r.client
	c.mu.Lock()
	defer c.mu.Unlock()

	c.completeCalls[r.key]++

	if r.done {
		return nil, &client.Error{Op: "CompleteMultipartUpload", Bucket: r.bucket, Key: r.key, Err: fmt.Errorf("upload already terminated")}
	}
	if err := c.completeFailure[r.key]; err != nil {
		r.done = true
		delete(c.inProgress, r.key)
		return nil, &client.Error{Op: "CompleteMultipartUpload", Bucket: r.bucket, Key: r.key, Err: err}
	}

	r.done = true
	delete(c.inProgress, r.key)
	c.objects[r.key] = r.data

	return &client.PutObjectResult{
		ETag: fmt.Sprintf("mock-etag-%d", len(r.data)),
		Size: uint64(len(r.data)),
	}, nil
}

func (r *putRequest) Abort(ctx context.Context) error {
	c := r.client
	c.mu.Lock()
	defer c.mu.Unlock()

	r.done = true
	delete(c.inProgress, r.key)
	return nil
}
