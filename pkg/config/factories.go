package config

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/bucketfs/internal/logger"
	"github.com/marmos91/bucketfs/pkg/client"
	"github.com/marmos91/bucketfs/pkg/client/mock"
	s3client "github.com/marmos91/bucketfs/pkg/client/s3"
)

// BuildObjectClient creates an object client based on configuration.
//
// This factory function uses the Type field to determine which client
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the client's constructor.
//
// Supported types:
//   - "s3": Uses pkg/client/s3 (Amazon S3 or compatible storage)
//   - "mock": Uses pkg/client/mock (in-memory, for development and tests)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Object client configuration
//   - metrics: Metrics sink for the S3 client (nil disables collection)
//
// Returns:
//   - client.ObjectClient: Initialized object client
//   - error: Configuration or initialization error
func BuildObjectClient(ctx context.Context, cfg *ContentConfig, metrics s3client.Metrics) (client.ObjectClient, error) {
	switch cfg.Type {
	case "s3":
		return buildS3Client(ctx, cfg.S3, metrics)
	case "mock":
		return mock.NewClient(), nil
	default:
		return nil, fmt.Errorf("unknown object client type: %q", cfg.Type)
	}
}

// buildS3Client creates an S3-backed object client.
func buildS3Client(ctx context.Context, options map[string]any, metrics s3client.Metrics) (client.ObjectClient, error) {
	// Configuration shape of the "s3" section
	type S3ClientConfig struct {
		Region          string `mapstructure:"region"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		ForcePathStyle  bool   `mapstructure:"force_path_style"`
		PartSize        int64  `mapstructure:"part_size"`
		MaxParts        int32  `mapstructure:"max_parts"`
	}

	var clientCfg S3ClientConfig
	if err := mapstructure.Decode(options, &clientCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 client config: %w", err)
	}

	if clientCfg.Region == "" {
		return nil, fmt.Errorf("S3 client: region is required")
	}

	api, err := s3client.NewAWSClient(ctx, s3client.AWSOptions{
		Region:          clientCfg.Region,
		Endpoint:        clientCfg.Endpoint,
		AccessKeyID:     clientCfg.AccessKeyID,
		SecretAccessKey: clientCfg.SecretAccessKey,
		ForcePathStyle:  clientCfg.ForcePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS client: %w", err)
	}

	c, err := s3client.New(s3client.Config{
		API:      api,
		PartSize: clientCfg.PartSize,
		MaxParts: clientCfg.MaxParts,
		Metrics:  metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	if clientCfg.Endpoint != "" {
		logger.Debug("using custom S3 endpoint: %s", clientCfg.Endpoint)
	}

	return c, nil
}
