package fs_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/marmos91/bucketfs/internal/logger"
	"github.com/marmos91/bucketfs/pkg/client"
	"github.com/marmos91/bucketfs/pkg/fs"
	"github.com/marmos91/bucketfs/pkg/upload"
)

// captureEvents redirects the logger to a buffer in JSON mode at trace
// level and returns the decoded events emitted by fn.
func captureEvents(t *testing.T, fn func()) []map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger.SetFormat("json")
	logger.SetLevel("TRACE")
	logger.SetOutput(&buf)
	t.Cleanup(func() {
		logger.SetOutput(os.Stdout)
		logger.SetFormat("text")
		logger.SetLevel("INFO")
	})

	fn()

	var events []map[string]any
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var event map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	require.NoError(t, scanner.Err())
	return events
}

// eventNamed returns the first record with the given event field.
func eventNamed(t *testing.T, events []map[string]any, name string) map[string]any {
	t.Helper()
	for _, event := range events {
		if event["event"] == name {
			return event
		}
	}
	t.Fatalf("no %q event among %d records", name, len(events))
	return nil
}

func TestLogFSErrorEvent(t *testing.T) {
	t.Run("FullMetadata", func(t *testing.T) {
		clientErr := &client.Error{
			Op:     "CompleteMultipartUpload",
			Bucket: "test-bucket",
			Key:    "a.txt",
			Meta: client.ErrorMetadata{
				HTTPStatus:   500,
				ErrorCode:    "InternalError",
				ErrorMessage: "We encountered an internal error.",
			},
			Err: errors.New("api error InternalError"),
		}
		fsErr := fs.FromUploadError(&upload.PutRequestFailedError{Err: clientErr})

		events := captureEvents(t, func() {
			fs.LogFSErrorEvent(fsErr, "release", 77)
		})

		event := eventNamed(t, events, "fs-error")
		assert.Equal(t, "release", event["operation"])
		assert.Equal(t, float64(77), event["request_id"])
		assert.Equal(t, fs.ErrorCodeInternal, event["error_code"])
		assert.Equal(t, float64(unix.EIO), event["errno"])
		assert.Equal(t, fsErr.Error(), event["internal_message"])
		assert.Equal(t, "test-bucket", event["bucket_name"])
		assert.Equal(t, "a.txt", event["object_key"])
		assert.Equal(t, float64(500), event["upstream_http_status"])
		assert.Equal(t, "InternalError", event["upstream_error_code"])
		assert.Equal(t, "We encountered an internal error.", event["upstream_error_message"])
		assert.Equal(t, "1", event["version"])
	})

	t.Run("MessageCarriesCauseChain", func(t *testing.T) {
		clientErr := &client.Error{
			Op:     "UploadPart",
			Bucket: "test-bucket",
			Key:    "a.txt",
			Err:    errors.New("connection reset"),
		}
		fsErr := fs.FromUploadError(&upload.PutRequestFailedError{Err: clientErr})

		events := captureEvents(t, func() {
			fs.LogFSErrorEvent(fsErr, "write", 3)
		})

		// The boundary message stays fixed for aggregation, but the event
		// carries the whole chain down to the root cause.
		event := eventNamed(t, events, "fs-error")
		message, ok := event["internal_message"].(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(message, "upload error"))
		assert.Contains(t, message, "put request failed")
		assert.Contains(t, message, "s3://test-bucket/a.txt")
		assert.Contains(t, message, "connection reset")
	})

	t.Run("AbsentFieldsOmitted", func(t *testing.T) {
		fsErr := fs.FromUploadError(&upload.OutOfOrderWriteError{WriteOffset: 3, ExpectedOffset: 5})

		events := captureEvents(t, func() {
			fs.LogFSErrorEvent(fsErr, "write", 12)
		})

		event := eventNamed(t, events, "fs-error")
		assert.Equal(t, float64(unix.EINVAL), event["errno"])
		assert.NotContains(t, event, "bucket_name")
		assert.NotContains(t, event, "object_key")
		assert.NotContains(t, event, "upstream_http_status")
		assert.NotContains(t, event, "upstream_error_code")
	})

	t.Run("HumanReadableLineAtErrorLevel", func(t *testing.T) {
		fsErr := fs.NewError(unix.EIO, "upload error")

		events := captureEvents(t, func() {
			fs.LogFSErrorEvent(fsErr, "release", 1)
		})

		// Two records per failure: the human-readable line at the error's
		// severity and the trace-level event.
		require.Len(t, events, 2)
		assert.Equal(t, "warn", events[0]["level"])
		assert.Equal(t, "trace", events[1]["level"])
	})
}

func TestLogUnsupportedEvent(t *testing.T) {
	events := captureEvents(t, func() {
		fs.LogUnsupportedEvent("setxattr", 9)
	})

	event := eventNamed(t, events, "fs-unsupported")
	assert.Equal(t, "setxattr", event["operation"])
	assert.Equal(t, float64(9), event["request_id"])
	assert.Equal(t, fs.ErrorCodeUnsupported, event["error_code"])
	assert.Equal(t, "1", event["version"])
}
