package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/bucketfs/pkg/client"
)

func TestVisibility(t *testing.T) {
	c := NewClient()

	request, err := c.PutObject(context.Background(), "b", "a.txt", nil)
	require.NoError(t, err)
	require.NoError(t, request.Write(context.Background(), []byte("hello")))

	assert.False(t, c.Contains("a.txt"), "object must stay invisible until completed")
	assert.True(t, c.UploadInProgress("a.txt"))

	result, err := request.Complete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), result.Size)
	assert.True(t, c.Contains("a.txt"))
	assert.False(t, c.UploadInProgress("a.txt"))
	assert.Equal(t, []byte("hello"), c.ObjectData("a.txt"))
}

func TestAbortDiscardsData(t *testing.T) {
	c := NewClient()

	request, err := c.PutObject(context.Background(), "b", "a.txt", nil)
	require.NoError(t, err)
	require.NoError(t, request.Write(context.Background(), []byte("partial")))

	require.NoError(t, request.Abort(context.Background()))
	assert.False(t, c.Contains("a.txt"))
	assert.False(t, c.UploadInProgress("a.txt"))
}

func TestInjectedFailures(t *testing.T) {
	t.Run("PutObject", func(t *testing.T) {
		c := NewClient()
		c.FailPutObject(errors.New("no such bucket"))

		_, err := c.PutObject(context.Background(), "b", "a.txt", nil)

		var clientErr *client.Error
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, "PutObject", clientErr.Op)

		// Clearing the failure restores normal behavior.
		c.FailPutObject(nil)
		_, err = c.PutObject(context.Background(), "b", "a.txt", nil)
		require.NoError(t, err)
	})

	t.Run("Write", func(t *testing.T) {
		c := NewClient()
		c.FailWrites("a.txt", errors.New("connection reset"))

		request, err := c.PutObject(context.Background(), "b", "a.txt", nil)
		require.NoError(t, err)

		err = request.Write(context.Background(), []byte("x"))
		var clientErr *client.Error
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, 1, c.WriteCalls("a.txt"))
	})

	t.Run("Complete", func(t *testing.T) {
		c := NewClient()
		c.FailComplete("a.txt", errors.New("internal error"))

		request, err := c.PutObject(context.Background(), "b", "a.txt", nil)
		require.NoError(t, err)
		require.NoError(t, request.Write(context.Background(), []byte("x")))

		_, err = request.Complete(context.Background())
		require.Error(t, err)
		assert.False(t, c.Contains("a.txt"))
		assert.False(t, c.UploadInProgress("a.txt"))
	})
}

func TestTerminatedUploadRejectsFurtherCalls(t *testing.T) {
	c := NewClient()

	request, err := c.PutObject(context.Background(), "b", "a.txt", nil)
	require.NoError(t, err)

	_, err = request.Complete(context.Background())
	require.NoError(t, err)

	assert.Error(t, request.Write(context.Background(), []byte("late")))
	_, err = request.Complete(context.Background())
	assert.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	c := NewClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.PutObject(ctx, "b", "a.txt", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
