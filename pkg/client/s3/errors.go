package s3

import (
	"errors"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"

	"github.com/marmos91/bucketfs/pkg/client"
)

// wrapError converts an AWS SDK error into a structured client.Error,
// extracting whatever upstream HTTP detail the SDK exposes.
//
// The extracted metadata (status code, S3 error code and message) exists
// purely for diagnostics; error classification at the filesystem boundary
// only ever sees the client.Error itself.
func (c *Client) wrapError(op, bucket, key string, err error) *client.Error {
	return &client.Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Meta:   extractErrorMetadata(err),
		Err:    err,
	}
}

// extractErrorMetadata pulls upstream detail out of an SDK error chain.
func extractErrorMetadata(err error) client.ErrorMetadata {
	var meta client.ErrorMetadata

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		meta.ErrorCode = apiErr.ErrorCode()
		meta.ErrorMessage = apiErr.ErrorMessage()
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		meta.HTTPStatus = respErr.HTTPStatusCode()
	}

	return meta
}
