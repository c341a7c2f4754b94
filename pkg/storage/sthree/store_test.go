package sthree

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/oneconcern/datagit/internal/rand"
	"github.com/oneconcern/datagit/pkg/errors"
	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/oneconcern/datagit/pkg/storage/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minioConfig() *aws.Config {
	endpoint := os.Getenv("DATAGIT_TEST_MINIO")
	if endpoint == "" {
		endpoint = "http://127.0.0.1:9000"
	}
	return &aws.Config{
		Credentials:      credentials.NewStaticCredentials("access-key", "secret-key-thing", ""),
		Region:           aws.String("us-west-2"),
		Endpoint:         aws.String(endpoint),
		S3ForcePathStyle: aws.Bool(true),
		MaxRetries:       aws.Int(0),
	}
}

func setupStore(t testing.TB) (storage.Store, afero.Fs, func()) {
	t.Helper()

	bucket := aws.String("datagit-" + rand.LetterString(15))
	cfg := minioConfig()
	sess, err := session.NewSession(cfg)
	require.NoError(t, err)

	cl := s3.New(sess)
	if _, err = cl.ListBuckets(nil); err != nil {
		t.Skipf("minio is not running")
		runtime.Goexit()
	}
	_, err = cl.CreateBucket(&s3.CreateBucketInput{
		Bucket: bucket,
		CreateBucketConfiguration: &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String("us-west-2"),
		},
	})
	require.NoError(t, err)

	local := afero.NewOsFs()
	ws := t.TempDir()
	require.NoError(t, afero.WriteFile(local, filepath.Join(ws, "sixteentons"), []byte("this is the text"), 0644))
	require.NoError(t, afero.WriteFile(local, filepath.Join(ws, "seventeentons"), []byte("this is the text for another thing"), 0644))

	bs := New(*bucket, AWSConfig(cfg), LocalFs(local))
	require.NoError(t, bs.Connect(context.Background()))
	for _, key := range []string{"sixteentons", "seventeentons"} {
		_, err = bs.Put(context.Background(), filepath.Join(ws, key), key)
		require.NoError(t, err)
	}

	cleanup := func() {
		for _, key := range []string{"sixteentons", "seventeentons"} {
			_, _ = cl.DeleteObject(&s3.DeleteObjectInput{Bucket: bucket, Key: aws.String(key)})
		}
		_, _ = cl.DeleteBucket(&s3.DeleteBucketInput{Bucket: bucket})
	}
	return bs, local, cleanup
}

func TestString(t *testing.T) {
	assert.Equal(t, "s3h://mybucket", New("mybucket").String())
}

func TestNotConnected(t *testing.T) {
	_, err := New("mybucket").Put(context.Background(), "/x", "k")
	assert.True(t, errors.Is(err, status.ErrNotConnected))
}

func TestSentinelErrors(t *testing.T) {
	notFound := awserr.NewRequestFailure(awserr.New("NoSuchKey", "missing", nil), http.StatusNotFound, "req")
	assert.True(t, errors.Is(toSentinelErrors(notFound), status.ErrNotExists))

	noBucket := awserr.NewRequestFailure(awserr.New("NoSuchBucket", "missing", nil), http.StatusNotFound, "req")
	assert.True(t, errors.Is(toSentinelErrors(noBucket), status.ErrNotFound))

	forbidden := awserr.NewRequestFailure(awserr.New("AccessDenied", "no", nil), http.StatusForbidden, "req")
	assert.True(t, errors.Is(toSentinelErrors(forbidden), status.ErrForbidden))

	assert.NoError(t, toSentinelErrors(nil))
}

func TestGet(t *testing.T) {
	bs, local, cleanup := setupStore(t)
	defer cleanup()

	dest := filepath.Join(t.TempDir(), "a", "sixteentons")
	require.NoError(t, bs.Get(context.Background(), dest, "sixteentons"))
	b, err := afero.ReadFile(local, dest)
	require.NoError(t, err)
	assert.Equal(t, "this is the text", string(b))

	err = bs.Get(context.Background(), filepath.Join(t.TempDir(), "fifteentons"), "fifteentons")
	assert.True(t, errors.Is(err, status.ErrNotExists))
}

func TestList(t *testing.T) {
	bs, _, cleanup := setupStore(t)
	defer cleanup()

	keys, err := bs.List(context.Background(), "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sixteentons", "seventeentons"}, keys)

	keys, err = bs.List(context.Background(), "six")
	require.NoError(t, err)
	assert.Equal(t, []string{"sixteentons"}, keys)
}

func TestDelete(t *testing.T) {
	bs, _, cleanup := setupStore(t)
	defer cleanup()

	require.NoError(t, bs.Delete(context.Background(), "seventeentons"))
	k, _ := bs.List(context.Background(), "")
	assert.Len(t, k, 1)
}
