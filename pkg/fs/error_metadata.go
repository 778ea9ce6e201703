package fs

import "github.com/marmos91/bucketfs/pkg/client"

// Well-known error codes attached to filesystem error events. Operator
// alarms key off these, so they are part of the log contract and must not
// change between releases.
const (
	// ErrorCodeInternal marks an error with no more specific code.
	ErrorCodeInternal = "BUCKETFS_ERROR_INTERNAL"

	// ErrorCodeUnsupported marks an operation BucketFS does not implement.
	ErrorCodeUnsupported = "BUCKETFS_ERROR_UNSUPPORTED"
)

// ErrorMetadata is the diagnostic context carried alongside a filesystem
// error. It feeds the structured event log and never influences the errno
// returned to the kernel.
type ErrorMetadata struct {
	// ErrorCode is the well-known code for this failure, or empty when
	// none applies (the event log substitutes ErrorCodeInternal).
	ErrorCode string

	// BucketName and ObjectKey locate the object involved, when known.
	BucketName string
	ObjectKey  string

	// Client carries upstream service details (HTTP status, service error
	// code and message) when the failure originated in the backend.
	Client client.ErrorMetadata
}

// Empty reports whether no diagnostic context is present.
func (m ErrorMetadata) Empty() bool {
	return m.ErrorCode == "" && m.BucketName == "" && m.ObjectKey == "" && m.Client.Empty()
}

// Merge fills in any fields of m that are unset from other. Existing values
// win: metadata attached closer to the failure site is more specific.
func (m ErrorMetadata) Merge(other ErrorMetadata) ErrorMetadata {
	if m.ErrorCode == "" {
		m.ErrorCode = other.ErrorCode
	}
	if m.BucketName == "" {
		m.BucketName = other.BucketName
	}
	if m.ObjectKey == "" {
		m.ObjectKey = other.ObjectKey
	}
	if m.Client.Empty() {
		m.Client = other.Client
	}
	return m
}
