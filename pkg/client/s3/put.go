package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/bucketfs/pkg/client"
)

func storageClass(name string) types.StorageClass {
	return types.StorageClass(name)
}

// putRequest implements client.PutObjectRequest over an S3 multipart upload.
//
// Writes accumulate in a single part buffer; a part is shipped whenever the
// buffer reaches the client's part size, so memory usage is bounded by
// roughly one part per in-flight upload. Calls must be serialized by the
// caller.
type putRequest struct {
	client   *Client
	bucket   string
	key      string
	uploadID string
	params   *client.PutObjectParams

	buf     bytes.Buffer
	partNum int32
	parts   []types.CompletedPart
	total   uint64
}

// Write appends data to the stream, shipping full parts as they accumulate.
func (r *putRequest) Write(ctx context.Context, data []byte) error {
	r.buf.Write(data)
	r.total += uint64(len(data))

	for int64(r.buf.Len()) >= r.client.partSize {
		if err := r.uploadPart(ctx, r.buf.Next(int(r.client.partSize))); err != nil {
			return err
		}
	}

	return nil
}

func (r *putRequest) uploadPart(ctx context.Context, data []byte) error {
	if r.partNum >= r.client.maxParts {
		return &client.Error{
			Op:     "UploadPart",
			Bucket: r.bucket,
			Key:    r.key,
			Err:    fmt.Errorf("part limit of %d exceeded", r.client.maxParts),
		}
	}

	r.partNum++
	partNum := r.partNum

	// bytes.Buffer.Next returns a slice into the buffer that later writes
	// may reuse, so the part is copied before the upload.
	part := append([]byte(nil), data...)

	start := time.Now()
	result, err := r.client.api.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(r.bucket),
		Key:        aws.String(r.key),
		UploadId:   aws.String(r.uploadID),
		PartNumber: aws.Int32(partNum),
		Body:       bytes.NewReader(part),
	})
	r.client.metrics.ObserveOperation("UploadPart", time.Since(start), err)
	if err != nil {
		return r.client.wrapError("UploadPart", r.bucket, r.key, err)
	}

	r.client.metrics.RecordBytes("write", int64(len(part)))
	r.parts = append(r.parts, types.CompletedPart{
		ETag:       result.ETag,
		PartNumber: aws.Int32(partNum),
	})

	return nil
}

// Complete finalizes the upload.
//
// If at least one part was shipped, any remaining buffered bytes go out as
// the final (possibly short) part and the multipart upload is completed.
// If no part was ever shipped, the multipart upload is aborted and the whole
// object goes up as a single PutObject, which is both cheaper and the only
// valid way to create an empty object.
func (r *putRequest) Complete(ctx context.Context) (*client.PutObjectResult, error) {
	if len(r.parts) == 0 {
		return r.completeSinglePut(ctx)
	}

	if r.buf.Len() > 0 {
		if err := r.uploadPart(ctx, r.buf.Bytes()); err != nil {
			return nil, err
		}
		r.buf.Reset()
	}

	start := time.Now()
	result, err := r.client.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(r.bucket),
		Key:      aws.String(r.key),
		UploadId: aws.String(r.uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: r.parts,
		},
	})
	r.client.metrics.ObserveOperation("CompleteMultipartUpload", time.Since(start), err)
	if err != nil {
		return nil, r.client.wrapError("CompleteMultipartUpload", r.bucket, r.key, err)
	}

	return &client.PutObjectResult{
		ETag: aws.ToString(result.ETag),
		Size: r.total,
	}, nil
}

func (r *putRequest) completeSinglePut(ctx context.Context) (*client.PutObjectResult, error) {
	// The multipart upload was created eagerly but never used; abort it so
	// the backend does not accumulate orphaned uploads. Best effort: the
	// object itself does not depend on it.
	abortCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	_ = r.abort(abortCtx)

	data := r.buf.Bytes()

	start := time.Now()
	result, err := r.client.api.PutObject(ctx, r.singlePutInput(data))
	r.client.metrics.ObserveOperation("PutObject", time.Since(start), err)
	if err != nil {
		return nil, r.client.wrapError("PutObject", r.bucket, r.key, err)
	}

	r.client.metrics.RecordBytes("write", int64(len(data)))

	return &client.PutObjectResult{
		ETag: aws.ToString(result.ETag),
		Size: r.total,
	}, nil
}

// singlePutInput builds the input for the single-request path, carrying the
// same per-upload settings the multipart path applied at creation time.
func (r *putRequest) singlePutInput(data []byte) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Body:   bytes.NewReader(data),
	}
	if r.params.ContentType != "" {
		input.ContentType = aws.String(r.params.ContentType)
	}
	if r.params.StorageClass != "" {
		input.StorageClass = storageClass(r.params.StorageClass)
	}
	return input
}

// Abort abandons the multipart upload so the object never becomes visible.
// Idempotent: aborting an upload S3 no longer knows about succeeds.
func (r *putRequest) Abort(ctx context.Context) error {
	return r.abort(ctx)
}

func (r *putRequest) abort(ctx context.Context) error {
	start := time.Now()
	_, err := r.client.api.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(r.bucket),
		Key:      aws.String(r.key),
		UploadId: aws.String(r.uploadID),
	})
	r.client.metrics.ObserveOperation("AbortMultipartUpload", time.Since(start), err)
	if err != nil {
		var noSuchUpload *types.NoSuchUpload
		if errors.As(err, &noSuchUpload) {
			return nil
		}
		return r.client.wrapError("AbortMultipartUpload", r.bucket, r.key, err)
	}

	return nil
}
