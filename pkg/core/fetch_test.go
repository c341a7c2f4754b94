package core

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/oneconcern/datagit/internal/rand"
	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/errors"
	"github.com/oneconcern/datagit/pkg/manifest"
	"github.com/oneconcern/datagit/pkg/sample"
	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pushed stores files in a first repository and pushes them to a backend
func pushed(t *testing.T, files map[string][]byte) (*manifest.Manifest, storage.Store) {
	t.Helper()
	origin := testRepository(t)
	backend := testBackend(t)
	m := addFiles(t, origin, files)
	_, err := origin.PushTo(context.Background(), backend)
	require.NoError(t, err)
	return m, backend
}

func sharedChunkFiles() map[string][]byte {
	shared := rand.Bytes(testBlockSize)
	return map[string][]byte{
		"a.bin": append(append([]byte{}, shared...), rand.Bytes(testBlockSize)...),
		"b.bin": append(append([]byte{}, shared...), rand.Bytes(testBlockSize)...),
	}
}

func TestFetch(t *testing.T) {
	files := randomFiles(7, 5*testBlockSize/2)
	m, backend := pushed(t, files)

	r := testRepository(t, Window(3))
	res, err := r.FetchFrom(context.Background(), m, backend)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Links)
	assert.Equal(t, 7*3, res.Chunks)

	for name, data := range files {
		key, ok := m.Search(name)
		require.True(t, ok)
		var buf bytes.Buffer
		_, err = r.Objects().Reassemble(key, &buf)
		require.NoError(t, err)
		assert.Equal(t, data, buf.Bytes())
	}

	// objects already present are not downloaded again
	faulty := newFaultyStore(backend)
	res, err = r.FetchFrom(context.Background(), m, faulty)
	require.NoError(t, err)
	assert.Zero(t, res.Links)
	assert.Zero(t, res.Chunks)
	assert.Empty(t, faulty.downloads())

	// fetched objects are not scheduled for push
	logged, err := r.Objects().Log()
	require.NoError(t, err)
	assert.Empty(t, logged)
}

func TestFetchDependencyOrder(t *testing.T) {
	m, backend := pushed(t, sharedChunkFiles())
	require.Equal(t, 2, m.Len())

	r := testRepository(t)
	faulty := newFaultyStore(backend)
	res, err := r.FetchFrom(context.Background(), m, faulty)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Links)
	assert.Equal(t, 3, res.Chunks)

	downloads := faulty.downloads()
	require.Len(t, downloads, 5)
	assert.ElementsMatch(t, m.Keys(), downloads[:2])
	for _, key := range downloads[2:] {
		assert.NotContains(t, m.Keys(), key)
	}
}

func TestFetchLinkFailure(t *testing.T) {
	m, backend := pushed(t, sharedChunkFiles())

	r := testRepository(t)
	faulty := newFaultyStore(backend)
	faulty.failGet[m.Keys()[0]] = true

	_, err := r.FetchFrom(context.Background(), m, faulty)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrRemoteIO))
	assert.True(t, errors.Is(err, errInjected))

	// no chunk is requested once a link object failed
	for _, key := range faulty.downloads() {
		assert.Contains(t, m.Keys(), key)
	}
}

func TestFetchFailFast(t *testing.T) {
	m, backend := pushed(t, randomFiles(4, testBlockSize))
	keys := m.Keys()

	r := testRepository(t, Window(1))
	faulty := newFaultyStore(backend)
	faulty.failGet[keys[1]] = true

	_, err := r.FetchFrom(context.Background(), m, faulty)
	require.Error(t, err)

	// first window complete, second window failed after its retry, later windows never started
	assert.True(t, r.Objects().Exists(keys[0]))
	downloads := faulty.downloads()
	assert.Contains(t, downloads, keys[1])
	assert.NotContains(t, downloads, keys[2])
	assert.NotContains(t, downloads, keys[3])
	assert.False(t, r.Objects().Exists(keys[2]))
}

func TestFetchCorrupted(t *testing.T) {
	m, backend := pushed(t, randomFiles(1, testBlockSize))

	r := testRepository(t)
	_, err := r.FetchFrom(context.Background(), m, &corruptingStore{Store: backend, content: []byte("not the content")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrConsistency))
	assert.False(t, r.Objects().Exists(m.Keys()[0]))
}

// corruptingStore serves the same content for any key
type corruptingStore struct {
	storage.Store
	content []byte
}

func (c *corruptingStore) Get(_ context.Context, localPath, _ string) error {
	return os.WriteFile(localPath, c.content, 0644)
}

func TestFetchSamplingFirst(t *testing.T) {
	m, _ := pushed(t, randomFiles(3, testBlockSize))
	r := testRepository(t)

	s, err := sample.Parse("range", "0:10:1", 0)
	require.NoError(t, err)

	// the test backend resolver fails the test when called
	_, err = r.Fetch(context.Background(), m, "localh://remote", s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sample.ErrInvalidDirective))
	assert.Equal(t, status.ConfigError, status.CodeOf(err))
}

func TestFetchSampled(t *testing.T) {
	m, backend := pushed(t, randomFiles(4, testBlockSize))

	r := testRepository(t, WithBackends(func(context.Context, string) (storage.Store, error) {
		return backend, nil
	}))
	s, err := sample.Parse("range", "0:2:1", 0)
	require.NoError(t, err)

	res, err := r.Fetch(context.Background(), m, "localh://remote", s)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Manifest.FileCount())
	assert.Equal(t, 2, res.Links)
	for _, key := range res.Manifest.Keys() {
		assert.True(t, r.Objects().Exists(key))
	}
}
