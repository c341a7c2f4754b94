package core

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/errors"
	"github.com/oneconcern/datagit/pkg/hashfs"
	"github.com/oneconcern/datagit/pkg/manifest"
	"github.com/oneconcern/datagit/pkg/model"
	"github.com/oneconcern/datagit/pkg/sample"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// GetOption alters the materialization of a workspace
type GetOption func(*getOptions)

type getOptions struct {
	sampler  sample.Sampler
	metadata string
}

// WithSampler materializes only a sample of the manifest
func WithSampler(s sample.Sampler) GetOption {
	return func(o *getOptions) {
		o.sampler = s
	}
}

// WithCompanions copies the README and spec files found in some metadata directory into the workspace
func WithCompanions(dir string) GetOption {
	return func(o *getOptions) {
		o.metadata = dir
	}
}

// GetResult summarizes the materialization of a workspace
type GetResult struct {
	Files  int
	Cached int
	Copied int
	Pruned []string
}

// IsProtected tells if a workspace file is a metadata companion, never pruned
func IsProtected(pth string) bool {
	base := filepath.Base(pth)
	return base == model.ReadmeFile || strings.HasSuffix(base, model.SpecSuffix)
}

// PruneSet returns the workspace files which are neither in the manifest nor protected, sorted
func PruneSet(workspaceFiles, manifestPaths []string) []string {
	keep := make(map[string]struct{}, len(manifestPaths))
	for _, pth := range manifestPaths {
		keep[filepath.Clean(pth)] = struct{}{}
	}

	var prune []string
	for _, pth := range workspaceFiles {
		if _, ok := keep[filepath.Clean(pth)]; ok || IsProtected(pth) {
			continue
		}
		prune = append(prune, pth)
	}
	sort.Strings(prune)
	return prune
}

// Cache of reassembled files, keyed like the block store
func (r *LocalRepository) Cache() (*hashfs.Store, error) {
	cache, err := hashfs.New(r.layout.CacheDir(), r.hashFSOptions()...)
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}
	return cache, nil
}

// Get materializes a manifest in a workspace.
//
// Every file is reassembled once in the cache, then hard-linked into the workspace at each of
// its paths. Files of the workspace absent from the manifest are removed, except metadata companions.
// All objects must be present in the block store.
func (r *LocalRepository) Get(ctx context.Context, m *manifest.Manifest, workspace string, opts ...GetOption) (GetResult, error) {
	var (
		o   getOptions
		res GetResult
	)
	for _, apply := range opts {
		apply(&o)
	}

	target, err := Sampled(m, o.sampler)
	if err != nil {
		return res, err
	}

	for _, key := range target.Keys() {
		if !r.objects.Exists(key) {
			return res, status.ErrConsistency.Detailf("key %s is not in the local block store, it must be fetched first", key)
		}
		missing, err := r.objects.Missing(key)
		if err != nil {
			return res, status.ErrConsistency.Detailf("key %s", key).Wrap(err)
		}
		if len(missing) > 0 {
			return res, status.ErrConsistency.Detailf("key %s: %d chunks are not in the local block store, it must be fetched first", key, len(missing))
		}
	}

	cache, err := r.Cache()
	if err != nil {
		return res, err
	}
	if err = r.fs.MkdirAll(workspace, 0755); err != nil {
		return res, status.ErrLocalIO.Wrap(err)
	}

	for _, key := range target.Keys() {
		if err = ctx.Err(); err != nil {
			return res, err
		}
		written, err := cache.PutStream(key, func(w io.Writer) error {
			_, e := r.objects.Reassemble(key, w)
			return e
		})
		if err != nil {
			return res, status.ErrLocalIO.Detailf("caching key %s", key).Wrap(err)
		}
		if written {
			res.Cached++
		}

		for _, pth := range target.Paths(key) {
			copied, err := r.link(cache.RealPath(key), filepath.Join(workspace, pth))
			if err != nil {
				return res, status.ErrLocalIO.Detailf("path %s", pth).Wrap(err)
			}
			if copied {
				res.Copied++
			}
			res.Files++
		}
	}

	res.Pruned, err = r.prune(workspace, target)
	if err != nil {
		return res, err
	}

	if o.metadata != "" {
		if err = r.copyCompanions(o.metadata, workspace); err != nil {
			return res, err
		}
	}

	r.l.Info("workspace materialized",
		zap.String("workspace", workspace),
		zap.Int("files", res.Files),
		zap.Int("cached", res.Cached),
		zap.Int("pruned", len(res.Pruned)),
	)
	return res, nil
}

// link places a cached file at some workspace location. It returns true when the file had to be copied.
func (r *LocalRepository) link(src, dest string) (bool, error) {
	if err := r.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return false, err
	}

	if dfi, err := r.fs.Stat(dest); err == nil {
		if sfi, e := r.fs.Stat(src); e == nil && os.SameFile(sfi, dfi) {
			return false, nil
		}
		if err = r.fs.Remove(dest); err != nil {
			return false, err
		}
	}

	if _, ok := r.fs.(*afero.OsFs); !ok {
		return true, r.copyFile(src, dest)
	}

	err := os.Link(src, dest)
	if err == nil {
		return false, nil
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && linkErr.Err == unix.EXDEV {
		r.l.Warn("cache and workspace are on different devices, copying files", zap.String("path", dest))
		return true, r.copyFile(src, dest)
	}
	return false, err
}

func (r *LocalRepository) copyFile(src, dest string) error {
	in, err := r.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := r.fs.Create(dest)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func (r *LocalRepository) prune(workspace string, target *manifest.Manifest) ([]string, error) {
	var files []string
	err := afero.Walk(r.fs, workspace, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(workspace, pth)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, status.ErrLocalIO.Wrap(err)
	}

	paths := make([]string, 0, target.FileCount())
	for pth := range target.Files() {
		paths = append(paths, pth)
	}

	pruned := PruneSet(files, paths)
	for _, pth := range pruned {
		if err = r.fs.Remove(filepath.Join(workspace, pth)); err != nil {
			return nil, status.ErrLocalIO.Detailf("pruning %s", pth).Wrap(err)
		}
		r.l.Debug("file pruned from workspace", zap.String("path", pth))
	}
	return pruned, nil
}

func (r *LocalRepository) copyCompanions(metadataDir, workspace string) error {
	entries, err := afero.ReadDir(r.fs, metadataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return status.ErrLocalIO.Wrap(err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !IsProtected(entry.Name()) {
			continue
		}
		dest := filepath.Join(workspace, entry.Name())
		if err = r.fs.Remove(dest); err != nil && !os.IsNotExist(err) {
			return status.ErrLocalIO.Wrap(err)
		}
		if err = r.copyFile(filepath.Join(metadataDir, entry.Name()), dest); err != nil {
			return status.ErrLocalIO.Detailf("companion %s", entry.Name()).Wrap(err)
		}
	}
	return nil
}
