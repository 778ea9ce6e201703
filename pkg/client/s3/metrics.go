package s3

import "time"

// Metrics provides observability for S3 operations.
//
// Implementations can collect operation counts, latency and throughput.
// This is optional - if not provided, metrics collection is skipped.
//
// Example implementations:
//   - Prometheus metrics (pkg/metrics)
//   - In-memory counters for testing
type Metrics interface {
	// ObserveOperation records an S3 operation with its duration and outcome
	ObserveOperation(operation string, duration time.Duration, err error)

	// RecordBytes records bytes transferred for write operations
	RecordBytes(operation string, bytes int64)
}

// noopMetrics is a default no-op metrics implementation
type noopMetrics struct{}

func (noopMetrics) ObserveOperation(operation string, duration time.Duration, err error) {}
func (noopMetrics) RecordBytes(operation string, bytes int64)                            {}
