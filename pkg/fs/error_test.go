package fs_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/marmos91/bucketfs/pkg/client"
	"github.com/marmos91/bucketfs/pkg/fs"
	"github.com/marmos91/bucketfs/pkg/metadata"
	"github.com/marmos91/bucketfs/pkg/upload"
)

func TestFromInodeError(t *testing.T) {
	inodeErr := &metadata.InodeError{
		Code:   metadata.InodeErrFileDoesNotExist,
		Ino:    42,
		Name:   "missing.txt",
		Bucket: "test-bucket",
		Key:    "dir/missing.txt",
	}

	fsErr := fs.FromInodeError(inodeErr)

	assert.Equal(t, unix.ENOENT, fsErr.ToErrno())
	assert.Equal(t, "inode error", fsErr.Message)
	assert.Equal(t, "test-bucket", fsErr.Metadata.BucketName)
	assert.Equal(t, "dir/missing.txt", fsErr.Metadata.ObjectKey)
	require.ErrorIs(t, fsErr, inodeErr)
}

func TestFromUploadError(t *testing.T) {
	t.Run("OutOfOrderWrite", func(t *testing.T) {
		fsErr := fs.FromUploadError(&upload.OutOfOrderWriteError{WriteOffset: 3, ExpectedOffset: 5})

		assert.Equal(t, unix.EINVAL, fsErr.ToErrno())
		assert.Equal(t, "upload error", fsErr.Message)
	})

	t.Run("BackendFailureCarriesClientMetadata", func(t *testing.T) {
		clientErr := &client.Error{
			Op:     "UploadPart",
			Bucket: "test-bucket",
			Key:    "a.txt",
			Meta: client.ErrorMetadata{
				HTTPStatus:   403,
				ErrorCode:    "AccessDenied",
				ErrorMessage: "Access Denied",
			},
			Err: errors.New("api error AccessDenied"),
		}
		fsErr := fs.FromUploadError(&upload.PutRequestFailedError{Err: clientErr})

		assert.Equal(t, unix.EIO, fsErr.ToErrno())
		assert.Equal(t, "test-bucket", fsErr.Metadata.BucketName)
		assert.Equal(t, "a.txt", fsErr.Metadata.ObjectKey)
		assert.Equal(t, 403, fsErr.Metadata.Client.HTTPStatus)
		assert.Equal(t, "AccessDenied", fsErr.Metadata.Client.ErrorCode)
	})
}

func TestNewError(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		fsErr := fs.NewError(unix.EIO, "something broke: %d", 7)

		assert.Equal(t, unix.EIO, fsErr.Errno)
		assert.Equal(t, "something broke: 7", fsErr.Message)
		assert.Equal(t, zerolog.WarnLevel, fsErr.Level)
		assert.True(t, fsErr.Metadata.Empty())
	})

	t.Run("Options", func(t *testing.T) {
		cause := errors.New("root cause")
		fsErr := fs.NewError(unix.EPERM, "sealed").Apply(
			fs.WithCause(cause),
			fs.WithLevel(zerolog.ErrorLevel),
			fs.WithMetadata(fs.ErrorMetadata{ObjectKey: "a.txt"}),
		)

		assert.Equal(t, zerolog.ErrorLevel, fsErr.Level)
		assert.Equal(t, "a.txt", fsErr.Metadata.ObjectKey)
		assert.Equal(t, "sealed: root cause", fsErr.Error())
		require.ErrorIs(t, fsErr, cause)
	})

	t.Run("MetadataClosestToFailureWins", func(t *testing.T) {
		clientErr := &client.Error{
			Op:     "UploadPart",
			Bucket: "cause-bucket",
			Key:    "cause-key",
			Err:    errors.New("boom"),
		}
		fsErr := fs.NewError(unix.EIO, "upload error").Apply(
			fs.WithCause(clientErr),
			fs.WithMetadata(fs.ErrorMetadata{ObjectKey: "explicit-key"}),
		)

		assert.Equal(t, "explicit-key", fsErr.Metadata.ObjectKey)
		assert.Equal(t, "cause-bucket", fsErr.Metadata.BucketName)
	})
}

func TestErrnoOf(t *testing.T) {
	t.Run("SelfClassifyingError", func(t *testing.T) {
		assert.Equal(t, unix.EFBIG, fs.ErrnoOf(&upload.ObjectTooBigError{Size: 10, MaxSize: 5}))
	})

	t.Run("WrappedSelfClassifyingError", func(t *testing.T) {
		wrapped := errors.Join(errors.New("outer"), upload.ErrPutRequestAlreadyCompleted)
		assert.Equal(t, unix.EPERM, fs.ErrnoOf(wrapped))
	})

	t.Run("RawErrno", func(t *testing.T) {
		assert.Equal(t, unix.ENOENT, fs.ErrnoOf(unix.ENOENT))
	})

	t.Run("UnclassifiedFallsBackToEIO", func(t *testing.T) {
		assert.Equal(t, unix.EIO, fs.ErrnoOf(errors.New("mystery")))
	})
}
