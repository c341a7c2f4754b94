package core

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/errors"
	hashfsstatus "github.com/oneconcern/datagit/pkg/hashfs/status"
	"github.com/oneconcern/datagit/pkg/manifest"
	"github.com/oneconcern/datagit/pkg/pool"
	"github.com/oneconcern/datagit/pkg/sample"
	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// FetchResult summarizes a fetch
type FetchResult struct {
	// Manifest actually fetched, after sampling
	Manifest *manifest.Manifest
	Links    int
	Chunks   int
}

// Sampled applies an optional sampler to a manifest. An invalid directive is a configuration error.
func Sampled(m *manifest.Manifest, sampler sample.Sampler) (*manifest.Manifest, error) {
	if sampler == nil {
		return m, nil
	}
	sampled, err := sample.Apply(m, sampler)
	if err != nil {
		return nil, status.ErrConfiguration.Detailf("sampling %s", sampler).Wrap(err)
	}
	return sampled, nil
}

// Fetch downloads all objects needed to materialize a manifest from the backend named by identifier.
//
// Sampling is applied before any connection to the backend.
func (r *LocalRepository) Fetch(ctx context.Context, m *manifest.Manifest, identifier string, sampler sample.Sampler) (FetchResult, error) {
	sampled, err := Sampled(m, sampler)
	if err != nil {
		return FetchResult{}, err
	}
	backend, err := r.Backend(ctx, identifier)
	if err != nil {
		return FetchResult{}, err
	}
	return r.FetchFrom(ctx, sampled, backend)
}

// FetchFrom downloads all objects needed to materialize a manifest from a connected backend.
//
// Keys are processed in windows. For each window, missing link objects are downloaded first,
// then the missing chunks they reference. The first failed window aborts the fetch.
// Objects already present in the block store are not downloaded again.
func (r *LocalRepository) FetchFrom(ctx context.Context, m *manifest.Manifest, backend storage.Store) (FetchResult, error) {
	res := FetchResult{Manifest: m}

	if err := r.fs.MkdirAll(r.layout.RepoDir(), 0755); err != nil {
		return res, status.ErrLocalIO.Wrap(err)
	}
	staging, err := afero.TempDir(r.fs, r.layout.RepoDir(), ".fetch-")
	if err != nil {
		return res, status.ErrLocalIO.Wrap(err)
	}
	defer func() {
		_ = r.fs.RemoveAll(staging)
	}()

	download := r.downloader(backend, staging)
	p := r.newPool("fetch")
	keys := m.Keys()

	for start, window := 0, 0; start < len(keys); start, window = start+r.window, window+1 {
		end := start + r.window
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		var links []string
		for _, key := range batch {
			if !r.objects.Exists(key) {
				links = append(links, key)
			}
		}
		if err = r.fetchBatch(ctx, p, links, download, window); err != nil {
			return res, err
		}
		res.Links += len(links)

		chunks, err := r.missingChunks(batch)
		if err != nil {
			return res, err
		}
		if err = r.fetchBatch(ctx, p, chunks, download, window); err != nil {
			return res, err
		}
		res.Chunks += len(chunks)

		r.l.Debug("window fetched", zap.Int("window", window), zap.Int("links", len(links)), zap.Int("chunks", len(chunks)))
	}

	r.l.Info("objects fetched",
		zap.Stringer("backend", backend),
		zap.Int("links", res.Links),
		zap.Int("chunks", res.Chunks),
		zap.Object("transfers", p.Stats()),
	)
	return res, nil
}

func (r *LocalRepository) fetchBatch(ctx context.Context, p *pool.Pool, keys []string, download pool.Task, window int) error {
	if len(keys) == 0 {
		return nil
	}
	defer p.Reset()

	for _, key := range keys {
		p.Submit(ctx, key, download)
	}
	failed := p.Wait().Failed()
	if len(failed) == 0 {
		return nil
	}

	corrupted := false
	for _, f := range failed {
		r.l.Error("object not fetched", zap.Int("window", window), zap.String("key", f.Key), zap.Error(f.Err))
		if errors.Is(f.Err, hashfsstatus.ErrCorruptedObject) {
			corrupted = true
		}
	}
	if corrupted {
		return status.ErrConsistency.Detailf("window %d", window).Wrap(failed.Err())
	}
	return status.ErrRemoteIO.Detailf("window %d: %d objects failed", window, len(failed)).Wrap(failed.Err())
}

// missingChunks lists the chunks referenced by some link objects and not present locally, without duplicates
func (r *LocalRepository) missingChunks(keys []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, key := range keys {
		missing, err := r.objects.Missing(key)
		if err != nil {
			return nil, status.ErrConsistency.Detailf("link object %s", key).Wrap(err)
		}
		for _, chunk := range missing {
			seen[chunk] = struct{}{}
		}
	}
	chunks := make([]string, 0, len(seen))
	for chunk := range seen {
		chunks = append(chunks, chunk)
	}
	sort.Strings(chunks)
	return chunks, nil
}

// downloader yields a task which retrieves an object into a staging directory, verifies that its content
// hashes to its key, then stores it in the block store
func (r *LocalRepository) downloader(backend storage.Store, staging string) pool.Task {
	return func(ctx context.Context, key string) error {
		tmp := filepath.Join(staging, key)
		defer func() {
			_ = r.fs.Remove(tmp)
		}()

		if err := backend.Get(ctx, tmp, key); err != nil {
			return err
		}
		data, err := afero.ReadFile(r.fs, tmp)
		if err != nil {
			return err
		}
		actual, err := r.objects.Scheme().Sum(data)
		if err != nil {
			return err
		}
		if actual != key {
			return hashfsstatus.ErrCorruptedObject.Detailf("downloaded %s hashes to %s", key, actual)
		}
		_, err = r.objects.Put(key, data)
		return err
	}
}
