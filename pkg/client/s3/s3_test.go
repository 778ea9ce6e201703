package s3

import (
	"errors"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/bucketfs/pkg/client"
)

func TestNew(t *testing.T) {
	t.Run("RequiresAPIClient", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
	})

	t.Run("AppliesDefaults", func(t *testing.T) {
		c, err := New(Config{API: &s3.Client{}})
		require.NoError(t, err)
		assert.Equal(t, int64(DefaultPartSize), c.PartSize())
		assert.Equal(t, uint64(DefaultPartSize)*uint64(DefaultMaxParts), c.MaxObjectSize())
	})

	t.Run("RejectsPartSizeBelowMinimum", func(t *testing.T) {
		_, err := New(Config{API: &s3.Client{}, PartSize: MinPartSize - 1})
		require.Error(t, err)
	})

	t.Run("RejectsPartSizeAboveMaximum", func(t *testing.T) {
		_, err := New(Config{API: &s3.Client{}, PartSize: MaxPartSize + 1})
		require.Error(t, err)
	})

	t.Run("RejectsTooManyParts", func(t *testing.T) {
		_, err := New(Config{API: &s3.Client{}, MaxParts: DefaultMaxParts + 1})
		require.Error(t, err)
	})

	t.Run("MaxObjectSizeFollowsConfig", func(t *testing.T) {
		c, err := New(Config{API: &s3.Client{}, PartSize: MinPartSize, MaxParts: 100})
		require.NoError(t, err)
		assert.Equal(t, uint64(MinPartSize)*100, c.MaxObjectSize())
	})
}

func TestSinglePutInputCarriesParams(t *testing.T) {
	c, err := New(Config{API: &s3.Client{}})
	require.NoError(t, err)

	t.Run("AppliesContentTypeAndStorageClass", func(t *testing.T) {
		r := &putRequest{
			client: c,
			bucket: "b",
			key:    "a.txt",
			params: &client.PutObjectParams{
				ContentType:  "text/plain",
				StorageClass: "STANDARD_IA",
			},
		}

		input := r.singlePutInput([]byte("hello"))
		require.NotNil(t, input.ContentType)
		assert.Equal(t, "text/plain", *input.ContentType)
		assert.Equal(t, types.StorageClassStandardIa, input.StorageClass)
	})

	t.Run("ZeroParamsSelectBackendDefaults", func(t *testing.T) {
		r := &putRequest{
			client: c,
			bucket: "b",
			key:    "a.txt",
			params: &client.PutObjectParams{},
		}

		input := r.singlePutInput(nil)
		assert.Nil(t, input.ContentType)
		assert.Empty(t, input.StorageClass)
	})
}

func TestExtractErrorMetadata(t *testing.T) {
	t.Run("APIError", func(t *testing.T) {
		err := &smithy.GenericAPIError{
			Code:    "AccessDenied",
			Message: "Access Denied",
		}

		meta := extractErrorMetadata(err)
		assert.Equal(t, "AccessDenied", meta.ErrorCode)
		assert.Equal(t, "Access Denied", meta.ErrorMessage)
		assert.Zero(t, meta.HTTPStatus)
	})

	t.Run("ResponseError", func(t *testing.T) {
		err := &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{
					Response: &http.Response{StatusCode: 403},
				},
				Err: errors.New("boom"),
			},
		}

		meta := extractErrorMetadata(err)
		assert.Equal(t, 403, meta.HTTPStatus)
	})

	t.Run("PlainError", func(t *testing.T) {
		meta := extractErrorMetadata(errors.New("dial tcp: timeout"))
		assert.True(t, meta.Empty())
	})
}

func TestWrapError(t *testing.T) {
	c, err := New(Config{API: &s3.Client{}})
	require.NoError(t, err)

	cause := &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "bucket missing"}
	wrapped := c.wrapError("CreateMultipartUpload", "b", "a.txt", cause)

	assert.Equal(t, "CreateMultipartUpload", wrapped.Op)
	assert.Equal(t, "b", wrapped.Bucket)
	assert.Equal(t, "a.txt", wrapped.Key)
	assert.Equal(t, "NoSuchBucket", wrapped.Meta.ErrorCode)
	assert.Contains(t, wrapped.Error(), "s3://b/a.txt")
	require.ErrorIs(t, wrapped, cause)
}
