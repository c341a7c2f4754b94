package core

import (
	"context"

	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/storage"
	"go.uber.org/zap"
)

// PushResult summarizes an upload of the logged objects
type PushResult struct {
	Pushed []string
	Failed []string
	// Kept holds the keys left in the log for a later push: failed keys and link objects depending on them
	Kept []string
}

// Push uploads every object recorded in the log of the block store to the backend named by identifier.
//
// The log is read before any connection to the backend: Push returns ErrNothingToPush when it is
// empty, whether the backend is reachable or not.
func (r *LocalRepository) Push(ctx context.Context, identifier string) (PushResult, error) {
	keys, err := r.logged()
	if err != nil {
		return PushResult{}, err
	}
	backend, err := r.Backend(ctx, identifier)
	if err != nil {
		return PushResult{}, err
	}
	return r.push(ctx, backend, keys)
}

// PushTo uploads every object recorded in the log of the block store to a connected backend.
//
// The log is cleared only when all uploads succeed. When some uploads fail, the log is left
// with the failed keys and the link objects referencing them, so that a new push retries
// what is still necessary. In that case, the returned error is ErrPartialPush.
//
// PushTo returns ErrNothingToPush when the log is empty.
func (r *LocalRepository) PushTo(ctx context.Context, backend storage.Store) (PushResult, error) {
	keys, err := r.logged()
	if err != nil {
		return PushResult{}, err
	}
	return r.push(ctx, backend, keys)
}

func (r *LocalRepository) logged() ([]string, error) {
	keys, err := r.objects.Log()
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}
	if len(keys) == 0 {
		return nil, status.ErrNothingToPush
	}
	return keys, nil
}

func (r *LocalRepository) push(ctx context.Context, backend storage.Store, keys []string) (PushResult, error) {
	var res PushResult
	r.l.Info("pushing objects", zap.Stringer("backend", backend), zap.Int("objects", len(keys)))
	p := r.newPool("push")
	for _, key := range keys {
		p.Submit(ctx, key, func(ctx context.Context, key string) error {
			_, err := backend.Put(ctx, r.objects.RealPath(key), key)
			return err
		})
	}
	results := p.Wait()

	failed := results.Failed()
	if len(failed) == 0 {
		if err := r.objects.ResetLog(); err != nil {
			return res, status.ErrLocalIO.Wrap(err)
		}
		res.Pushed = keys
		r.l.Info("objects pushed", zap.Stringer("backend", backend), zap.Int("objects", len(keys)), zap.Object("transfers", p.Stats()))
		return res, nil
	}

	for _, f := range failed {
		r.l.Error("object not pushed", zap.String("key", f.Key), zap.Int("attempts", f.Attempts), zap.Error(f.Err))
	}
	res.Failed = failed.Keys()
	kept, err := r.dependents(keys, res.Failed)
	if err != nil {
		return res, err
	}
	res.Kept = kept

	isKept := make(map[string]struct{}, len(res.Kept))
	for _, key := range res.Kept {
		isKept[key] = struct{}{}
	}
	for _, key := range keys {
		if _, ok := isKept[key]; !ok {
			res.Pushed = append(res.Pushed, key)
		}
	}

	if err = r.objects.RewriteLog(res.Kept); err != nil {
		return res, status.ErrLocalIO.Wrap(err)
	}
	r.l.Warn("objects partially pushed", zap.Stringer("backend", backend), zap.Int("kept", len(res.Kept)), zap.Object("transfers", p.Stats()))
	return res, status.ErrPartialPush.Detailf("%d of %d objects failed", len(res.Failed), len(keys)).Wrap(failed.Err())
}

// dependents returns the failed keys, plus the logged link objects which reference any of them,
// in log order
func (r *LocalRepository) dependents(logged, failed []string) ([]string, error) {
	isFailed := make(map[string]struct{}, len(failed))
	for _, key := range failed {
		isFailed[key] = struct{}{}
	}
	links, err := r.objects.LoggedLinks()
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}

	var kept []string
	for _, key := range logged {
		if _, ok := isFailed[key]; ok {
			kept = append(kept, key)
			continue
		}
		if _, ok := links[key]; !ok {
			continue
		}
		children, err := r.objects.Links(key)
		if err != nil {
			return nil, status.ErrConsistency.Detailf("link object %s", key).Wrap(err)
		}
		for _, chunk := range children.Keys() {
			if _, ok := isFailed[chunk]; ok {
				kept = append(kept, key)
				break
			}
		}
	}
	return kept, nil
}
