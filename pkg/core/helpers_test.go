package core

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/oneconcern/datagit/internal/rand"
	"github.com/oneconcern/datagit/pkg/errors"
	"github.com/oneconcern/datagit/pkg/hashfs"
	"github.com/oneconcern/datagit/pkg/manifest"
	"github.com/oneconcern/datagit/pkg/model"
	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/oneconcern/datagit/pkg/storage/localfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testBlockSize = 16

var errInjected = errors.New("injected failure")

func testRepository(t testing.TB, opts ...Option) *LocalRepository {
	t.Helper()
	layout, err := model.NewLayout(t.TempDir(), model.Dataset)
	require.NoError(t, err)

	opts = append([]Option{
		Fs(afero.NewOsFs()),
		HashFSOptions(hashfs.BlockSize(testBlockSize)),
		Concurrency(4),
		Retry(1),
		WithBackends(func(context.Context, string) (storage.Store, error) {
			t.Fatal("unexpected backend resolution")
			return nil, nil
		}),
	}, opts...)
	r, err := New(layout, opts...)
	require.NoError(t, err)
	return r
}

func testBackend(t testing.TB) storage.Store {
	t.Helper()
	backend := localfs.New("remote", t.TempDir(), nil)
	require.NoError(t, backend.Connect(context.Background()))
	return backend
}

// addFiles writes files in a scratch directory and stores them in the committed block store
func addFiles(t testing.TB, r *LocalRepository, files map[string][]byte) *manifest.Manifest {
	t.Helper()
	fs := afero.NewOsFs()
	dir := t.TempDir()
	m := manifest.New()
	for name, data := range files {
		pth := filepath.Join(dir, name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(pth), 0755))
		require.NoError(t, afero.WriteFile(fs, pth, data, 0644))
		res, err := r.Objects().PutFile(fs, pth)
		require.NoError(t, err)
		m.Add(res.Key, name)
	}
	return m
}

func randomFiles(n, size int) map[string][]byte {
	files := make(map[string][]byte, n)
	for i := 0; i < n; i++ {
		files[rand.LetterString(8)+".bin"] = rand.Bytes(size)
	}
	return files
}

// faultyStore injects failures on some keys and records the order of downloads
type faultyStore struct {
	storage.Store

	failPut map[string]bool
	failGet map[string]bool

	mx   sync.Mutex
	gets []string
}

func newFaultyStore(store storage.Store) *faultyStore {
	return &faultyStore{
		Store:   store,
		failPut: make(map[string]bool),
		failGet: make(map[string]bool),
	}
}

func (f *faultyStore) Put(ctx context.Context, localPath, key string) (string, error) {
	if f.failPut[key] {
		return "", errInjected.Detailf("put %s", key)
	}
	return f.Store.Put(ctx, localPath, key)
}

func (f *faultyStore) Get(ctx context.Context, localPath, key string) error {
	f.mx.Lock()
	f.gets = append(f.gets, key)
	f.mx.Unlock()
	if f.failGet[key] {
		return errInjected.Detailf("get %s", key)
	}
	return f.Store.Get(ctx, localPath, key)
}

func (f *faultyStore) downloads() []string {
	f.mx.Lock()
	defer f.mx.Unlock()
	res := make([]string, len(f.gets))
	copy(res, f.gets)
	return res
}

func sortedCopy(in []string) []string {
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}
