package fs

import (
	"github.com/rs/zerolog"

	"github.com/marmos91/bucketfs/internal/logger"
)

// eventVersion is the schema version stamped on every error event. Bump it
// whenever a field is renamed or its meaning changes.
const eventVersion = "1"

// LogFSErrorEvent emits the machine-readable "fs-error" event for a failed
// filesystem operation. Two records leave the process for one failure: the
// human-readable log line at the error's own severity, and this event at
// trace level on a fixed schema that operator tooling can alarm on.
//
// Absent optional fields are omitted from the event rather than emitted
// empty.
func LogFSErrorEvent(err *Error, operation string, requestID uint64) {
	logger.Log().WithLevel(err.Level).Msgf("%s failed: %v", operation, err)

	errorCode := err.Metadata.ErrorCode
	if errorCode == "" {
		errorCode = ErrorCodeInternal
	}

	ev := logger.Log().Trace().
		Str("event", "fs-error").
		Str("operation", operation).
		Uint64("request_id", requestID).
		Str("error_code", errorCode).
		Int("errno", int(err.Errno)).
		Str("internal_message", err.Error())

	ev = metadataFields(ev, err.Metadata)
	ev.Str("version", eventVersion).Send()
}

// LogUnsupportedEvent emits the "fs-unsupported" event for an operation
// BucketFS does not implement. Unsupported operations are expected traffic
// (kernels probe for capabilities), so the human-readable line is debug
// rather than warn.
func LogUnsupportedEvent(operation string, requestID uint64) {
	logger.Debug("operation not supported: %s", operation)

	logger.Log().Trace().
		Str("event", "fs-unsupported").
		Str("operation", operation).
		Uint64("request_id", requestID).
		Str("error_code", ErrorCodeUnsupported).
		Str("version", eventVersion).
		Send()
}

func metadataFields(ev *zerolog.Event, meta ErrorMetadata) *zerolog.Event {
	if meta.BucketName != "" {
		ev = ev.Str("bucket_name", meta.BucketName)
	}
	if meta.ObjectKey != "" {
		ev = ev.Str("object_key", meta.ObjectKey)
	}
	if meta.Client.HTTPStatus != 0 {
		ev = ev.Int("upstream_http_status", meta.Client.HTTPStatus)
	}
	if meta.Client.ErrorCode != "" {
		ev = ev.Str("upstream_error_code", meta.Client.ErrorCode)
	}
	if meta.Client.ErrorMessage != "" {
		ev = ev.Str("upstream_error_message", meta.Client.ErrorMessage)
	}
	return ev
}
