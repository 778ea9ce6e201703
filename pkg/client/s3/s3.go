// Package s3 implements the BucketFS object client on Amazon S3 or
// S3-compatible storage (MinIO, Localstack, Cubbit DS3, etc.).
//
// A streaming create-object operation is mapped onto S3 multipart uploads:
// sequential writes are accumulated into fixed-size parts and shipped as they
// fill, and Complete assembles them into the final object. Objects small
// enough to never fill a part fall back to a single PutObject.
package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/bucketfs/pkg/client"
)

const (
	// MinPartSize is the smallest part S3 accepts (5MB).
	MinPartSize = 5 * 1024 * 1024

	// MaxPartSize is the largest part S3 accepts (5GB).
	MaxPartSize = 5 * 1024 * 1024 * 1024

	// DefaultPartSize is used when the configuration does not set one.
	DefaultPartSize = 10 * 1024 * 1024

	// DefaultMaxParts is the S3 limit on parts per multipart upload.
	DefaultMaxParts = 10000
)

// Client implements client.ObjectClient on the AWS SDK.
//
// Thread safety: a single Client is shared across arbitrarily many
// concurrent uploads for different keys; it holds no per-key state. The
// individual PutObjectRequest values it hands out are not safe for
// concurrent use (see client.PutObjectRequest).
type Client struct {
	api      *s3.Client
	partSize int64
	maxParts int32
	metrics  Metrics
}

// Config contains configuration for the S3 object client.
type Config struct {
	// API is the configured AWS SDK S3 client.
	API *s3.Client

	// PartSize is the size of each part for multipart uploads.
	// Must be between 5MB and 5GB. Defaults to 10MB.
	PartSize int64

	// MaxParts caps the number of parts per upload. Defaults to the
	// S3 limit of 10000. Together with PartSize it bounds object size.
	MaxParts int32

	// Metrics receives operation observations. Optional; nil disables
	// metrics collection with zero overhead.
	Metrics Metrics
}

// New creates an S3-backed object client.
//
// The bucket is chosen per upload, not per client, so no bucket access check
// happens here; permission failures surface on PutObject.
func New(cfg Config) (*Client, error) {
	if cfg.API == nil {
		return nil, fmt.Errorf("S3 API client is required")
	}

	partSize := cfg.PartSize
	if partSize == 0 {
		partSize = DefaultPartSize
	}
	if partSize < MinPartSize {
		return nil, fmt.Errorf("part size must be at least 5MB, got %d bytes", partSize)
	}
	if partSize > MaxPartSize {
		return nil, fmt.Errorf("part size must be at most 5GB, got %d bytes", partSize)
	}

	maxParts := cfg.MaxParts
	if maxParts == 0 {
		maxParts = DefaultMaxParts
	}
	if maxParts < 1 || maxParts > DefaultMaxParts {
		return nil, fmt.Errorf("max parts must be between 1 and %d, got %d", DefaultMaxParts, maxParts)
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Client{
		api:      cfg.API,
		partSize: partSize,
		maxParts: maxParts,
		metrics:  metrics,
	}, nil
}

// MaxObjectSize returns the largest object this client can upload with its
// configured part size. Implements client.ObjectSizeLimiter.
func (c *Client) MaxObjectSize() uint64 {
	return uint64(c.partSize) * uint64(c.maxParts)
}

// PartSize returns the configured multipart part size.
func (c *Client) PartSize() int64 {
	return c.partSize
}

// AWSOptions configures construction of the underlying AWS SDK client.
type AWSOptions struct {
	// Region is the AWS region (required).
	Region string

	// Endpoint is a custom endpoint URL for S3-compatible storage.
	// Empty selects the standard AWS endpoints.
	Endpoint string

	// AccessKeyID and SecretAccessKey select static credentials.
	// When empty, the SDK's default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// ForcePathStyle enables path-style addressing, required by most
	// S3-compatible stores (MinIO, Localstack).
	ForcePathStyle bool
}

// NewAWSClient builds an AWS SDK S3 client from the given options.
func NewAWSClient(ctx context.Context, opts AWSOptions) (*s3.Client, error) {
	if opts.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	configOptions := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(opts.Region),
	}

	if opts.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck
				return aws.Endpoint{
					URL:               opts.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.ForcePathStyle
	}), nil
}

// PutObject initiates a streaming upload by creating a multipart upload for
// the target object.
//
// Creating the multipart upload eagerly means backend failures (permission
// denied, missing bucket, network errors) surface here rather than on the
// first write. On failure nothing is leaked: no multipart upload exists
// unless a request is returned.
func (c *Client) PutObject(ctx context.Context, bucket, key string, params *client.PutObjectParams) (client.PutObjectRequest, error) {
	if params == nil {
		params = &client.PutObjectParams{}
	}

	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if params.ContentType != "" {
		input.ContentType = aws.String(params.ContentType)
	}
	if params.StorageClass != "" {
		input.StorageClass = storageClass(params.StorageClass)
	}

	result, err := c.api.CreateMultipartUpload(ctx, input)
	if err != nil {
		return nil, c.wrapError("CreateMultipartUpload", bucket, key, err)
	}

	return &putRequest{
		client:   c,
		bucket:   bucket,
		key:      key,
		uploadID: aws.ToString(result.UploadId),
		params:   params,
	}, nil
}
