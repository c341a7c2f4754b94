// Copyright © 2018 One Concern

package gcs

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	gcsStorage "cloud.google.com/go/storage"
	"github.com/oneconcern/datagit/internal/rand"
	"github.com/oneconcern/datagit/pkg/errors"
	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/oneconcern/datagit/pkg/storage/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func setup(t testing.TB, keys ...string) (storage.Store, string, func()) {
	t.Helper()
	project := os.Getenv("DATAGIT_TEST_GCS_PROJECT")
	if project == "" {
		t.Skipf("no GCS project configured for tests")
		runtime.Goexit()
	}
	ctx := context.Background()
	bucket := "deleteme-datagittest-" + rand.LetterString(15)

	client, err := gcsStorage.NewClient(ctx)
	require.NoError(t, err)
	require.NoError(t, client.Bucket(bucket).Create(ctx, project, nil), "failed to create bucket:"+bucket)

	ws := t.TempDir()
	gcs := New(bucket, "", LocalFs(afero.NewOsFs())) // Use GOOGLE_APPLICATION_CREDENTIALS env variable
	require.NoError(t, gcs.Connect(ctx))
	for _, key := range keys {
		pth := filepath.Join(ws, key)
		require.NoError(t, os.WriteFile(pth, []byte(key), 0600))
		_, err = gcs.Put(ctx, pth, key)
		require.NoError(t, err)
	}

	cleanup := func() {
		for _, key := range keys {
			_ = client.Bucket(bucket).Object(key).Delete(ctx)
		}
		_ = client.Bucket(bucket).Delete(ctx)
		_ = client.Close()
	}
	return gcs, ws, cleanup
}

func TestSentinelErrors(t *testing.T) {
	assert.True(t, errors.Is(toSentinelErrors(gcsStorage.ErrObjectNotExist), status.ErrNotExists))
	assert.True(t, errors.Is(toSentinelErrors(&googleapi.Error{Code: http.StatusForbidden}), status.ErrForbidden))
	assert.True(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusPreconditionFailed}))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusNotFound}))
	assert.NoError(t, toSentinelErrors(nil))
}

func TestNotConnected(t *testing.T) {
	bs := New("bucket", "")
	assert.Equal(t, "gcsh://bucket", bs.String())
	err := bs.Get(context.Background(), "/x", "k")
	assert.True(t, errors.Is(err, status.ErrNotConnected))
}

func TestPutGetList(t *testing.T) {
	gcs, ws, cleanup := setup(t, "sixteentons", "seventeentons")
	defer cleanup()
	ctx := context.Background()

	// putting twice the same key is a no-op
	_, err := gcs.Put(ctx, filepath.Join(ws, "sixteentons"), "sixteentons")
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "dl", "sixteentons")
	require.NoError(t, gcs.Get(ctx, dest, "sixteentons"))
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "sixteentons", string(b))

	keys, err := gcs.List(ctx, "s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sixteentons", "seventeentons"}, keys)

	require.NoError(t, gcs.Delete(ctx, "seventeentons"))
	keys, err = gcs.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sixteentons"}, keys)

	err = gcs.Get(ctx, dest, "fifteentons")
	assert.True(t, errors.Is(err, status.ErrNotExists))
}
