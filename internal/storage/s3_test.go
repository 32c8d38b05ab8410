//go:build integration

package storage

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/cloo-solutions/inbox/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Client_SnapshotLifecycle(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRustFSContainer(ctx, t)
	t.Cleanup(func() { _ = rc.Terminate(context.Background()) })

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		AccessKeyID:     testutil.S3AccessKey,
		SecretAccessKey: testutil.S3SecretKey,
		Bucket:          "snapshots",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))
	require.NoError(t, client.EnsureBucket(ctx))

	body := []byte("<html><body>archived</body></html>")
	require.NoError(t, client.PutSnapshot(ctx, "snapshots/item-1.html", body))

	url, err := client.SnapshotURL(ctx, "snapshots/item-1.html")
	require.NoError(t, err)

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	require.NoError(t, client.DeleteSnapshot(ctx, "snapshots/item-1.html"))
	require.NoError(t, client.DeleteSnapshot(ctx, "snapshots/item-1.html"))
}
