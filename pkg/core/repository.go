// Package core implements the sync engine of datagit: commit of the staging area into the
// local block store, push to and fetch from remote backends, and materialization of
// workspaces through a cache of hard-linked files.
package core

import (
	"context"
	"time"

	"github.com/oneconcern/datagit/pkg/config"
	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/hashfs"
	"github.com/oneconcern/datagit/pkg/index"
	"github.com/oneconcern/datagit/pkg/manifest"
	"github.com/oneconcern/datagit/pkg/model"
	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/oneconcern/datagit/pkg/storage/factory"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// DefaultWindow is the number of manifest keys fetched per batch
	DefaultWindow = 20

	// DefaultConcurrency is the number of concurrent transfers
	DefaultConcurrency = 10

	// DefaultRetry is the number of additional attempts of a failed transfer
	DefaultRetry = 2
)

// LocalRepository holds the committed block store of an entity type, and moves content
// between this store, remote backends and workspaces.
type LocalRepository struct {
	layout       model.Layout
	fs           afero.Fs
	objects      *hashfs.Store
	storeOptions []hashfs.Option
	backends     Backends
	concurrency  int
	retry        int
	backoff      time.Duration
	rateLimit    float64
	window       int
	l            *zap.Logger
}

// DefaultBackends resolves backend identifiers with the storage settings of a configuration
func DefaultBackends(cfg config.StorageConfig, fs afero.Fs, l *zap.Logger) Backends {
	return func(ctx context.Context, identifier string) (storage.Store, error) {
		return factory.New(ctx, identifier, cfg, factory.LocalFs(fs), factory.Logger(l))
	}
}

// New local repository for an entity type
func New(layout model.Layout, opts ...Option) (*LocalRepository, error) {
	r := &LocalRepository{
		layout:      layout,
		fs:          afero.NewOsFs(),
		concurrency: DefaultConcurrency,
		retry:       DefaultRetry,
		window:      DefaultWindow,
		l:           zap.NewNop(),
	}
	for _, apply := range opts {
		apply(r)
	}
	if r.backends == nil {
		r.backends = DefaultBackends(config.StorageConfig{}, r.fs, r.l)
	}

	objects, err := hashfs.New(layout.ObjectsDir(), r.hashFSOptions()...)
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}
	r.objects = objects
	return r, nil
}

func (r *LocalRepository) hashFSOptions() []hashfs.Option {
	return append([]hashfs.Option{hashfs.Fs(r.fs), hashfs.Logger(r.l)}, r.storeOptions...)
}

// Objects is the committed block store
func (r *LocalRepository) Objects() *hashfs.Store {
	return r.objects
}

// Layout of the repository
func (r *LocalRepository) Layout() model.Layout {
	return r.layout
}

// CommitIndex moves all objects staged in an index into the committed block store.
// The log of staged objects is appended to the log of the committed store, to be pushed.
func (r *LocalRepository) CommitIndex(idx *index.Index) error {
	if err := idx.Store().MergeInto(r.objects); err != nil {
		return status.ErrLocalIO.Wrap(err)
	}
	r.l.Debug("staged objects committed", zap.String("spec", idx.Spec()))
	return nil
}

// Fsck verifies the committed block store and returns the keys of corrupted objects
func (r *LocalRepository) Fsck() ([]string, error) {
	corrupted, err := r.objects.Fsck()
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}
	return corrupted, nil
}

// Backend resolves and connects the backend of a version
func (r *LocalRepository) Backend(ctx context.Context, identifier string) (storage.Store, error) {
	store, err := r.backends(ctx, identifier)
	if err != nil {
		if status.CodeOf(err) == status.ConfigError {
			return nil, err
		}
		return nil, status.ErrRemoteIO.Detailf("backend %s", identifier).Wrap(err)
	}
	return store, nil
}

// Sizer returns the size of the files identified by link object keys, found either in a staging index
// or in the committed block store. Keys absent from both count as empty.
func (r *LocalRepository) Sizer(idx *index.Index) manifest.Sizer {
	return func(key string) (int64, error) {
		for _, store := range []*hashfs.Store{idx.Store(), r.objects} {
			if !store.Exists(key) {
				continue
			}
			links, err := store.Links(key)
			if err != nil {
				return 0, status.ErrConsistency.Detailf("key %s", key).Wrap(err)
			}
			return links.Size(), nil
		}
		r.l.Debug("size of content not known locally", zap.String("key", key))
		return 0, nil
	}
}
