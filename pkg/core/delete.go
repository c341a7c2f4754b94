package core

import (
	"context"
	"sort"

	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/storage"
	"go.uber.org/zap"
)

// DeleteRemote removes some objects from a backend and returns the keys actually deleted.
//
// Failures are logged, and reported as a single remote I/O error once all deletions are done.
func (r *LocalRepository) DeleteRemote(ctx context.Context, backend storage.Store, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	p := r.newPool("delete")
	for _, key := range keys {
		p.Submit(ctx, key, func(ctx context.Context, key string) error {
			return backend.Delete(ctx, key)
		})
	}
	results := p.Wait()

	var deleted []string
	for _, res := range results {
		if res.Err != nil {
			r.l.Error("object not deleted", zap.Stringer("backend", backend), zap.String("key", res.Key), zap.Error(res.Err))
			continue
		}
		deleted = append(deleted, res.Key)
	}
	sort.Strings(deleted)

	if failed := results.Failed(); len(failed) > 0 {
		return deleted, status.ErrRemoteIO.Detailf("%d objects not deleted", len(failed)).Wrap(failed.Err())
	}
	return deleted, nil
}
