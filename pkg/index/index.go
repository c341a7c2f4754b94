package index

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/oneconcern/datagit/pkg/hashfs"
	"github.com/oneconcern/datagit/pkg/manifest"
	"github.com/oneconcern/datagit/pkg/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Summary of an add operation
type Summary struct {
	Added     int
	Changed   int
	Untouched int
	Deleted   int
	Size      int64 // bytes hashed
	Written   int   // objects newly written in the staging block store
}

// Index is the staging area for a spec
type Index struct {
	layout       model.Layout
	spec         string
	fs           afero.Fs
	store        *hashfs.Store
	storeOptions []hashfs.Option
	l            *zap.Logger
}

// New staging index for a spec. The staging block store is created if needed.
func New(layout model.Layout, spec string, opts ...Option) (*Index, error) {
	i := &Index{
		layout: layout,
		spec:   spec,
		fs:     afero.NewOsFs(),
		l:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(i)
	}

	storeOptions := append([]hashfs.Option{hashfs.Fs(i.fs), hashfs.Logger(i.l)}, i.storeOptions...)
	store, err := hashfs.New(layout.IndexHashFS(), storeOptions...)
	if err != nil {
		return nil, err
	}
	i.store = store
	return i, nil
}

// Store is the staging block store
func (i *Index) Store() *hashfs.Store {
	return i.store
}

// Spec name of this index
func (i *Index) Spec() string {
	return i.spec
}

// Fragment is the manifest of content staged since the last commit
func (i *Index) Fragment() (*manifest.Manifest, error) {
	return manifest.Load(i.fs, i.layout.IndexManifest(i.spec))
}

// Full index of the workspace
func (i *Index) Full() (FullIndex, error) {
	return LoadFullIndex(i.fs, i.layout.FullIndex(i.spec))
}

// HasChanges tells if something was added since the last commit
func (i *Index) HasChanges() (bool, error) {
	exists, err := afero.Exists(i.fs, i.layout.IndexManifest(i.spec))
	if err != nil || exists {
		return exists, err
	}
	full, err := i.Full()
	if err != nil {
		return false, err
	}
	return len(full.Paths(Deleted)) > 0, nil
}

// Committed clears the manifest fragment and marks everything in the full index as committed
func (i *Index) Committed() error {
	full, err := i.Full()
	if err != nil {
		return err
	}
	full.Committed()
	if err = full.Save(i.fs, i.layout.FullIndex(i.spec)); err != nil {
		return err
	}
	if err = i.fs.Remove(i.layout.IndexManifest(i.spec)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// isCompanion tells if a workspace file is a metadata companion rather than content
func isCompanion(rel, spec string) bool {
	return rel == model.ReadmeFile || rel == model.SpecFileName(spec)
}

// Add stages a workspace: new and changed files are split into the staging block store,
// untouched files (same size and modification time as last staged) are skipped,
// and files gone from the workspace are marked as deleted.
//
// The spec file and README.md at the root of the workspace are copied to the staged metadata.
func (i *Index) Add(workspace string) (Summary, error) {
	var summary Summary

	if err := i.stageCompanions(workspace); err != nil {
		return summary, err
	}

	full, err := i.Full()
	if err != nil {
		return summary, err
	}
	fragment, err := i.Fragment()
	if err != nil {
		return summary, err
	}

	seen := make(map[string]struct{}, len(full))
	err = afero.Walk(i.fs, workspace, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if pth != workspace && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(workspace, pth)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if isCompanion(rel, i.spec) || strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		seen[rel] = struct{}{}

		previous, known := full[rel]
		if known && previous.Status != Deleted && previous.Size == info.Size() && previous.MTime == info.ModTime().UnixNano() {
			summary.Untouched++
			return nil
		}

		res, err := i.store.PutFile(i.fs, pth)
		if err != nil {
			return err
		}
		summary.Size += res.Size
		summary.Written += len(res.Written)

		status := Added
		switch {
		case known && previous.Hash == res.Key:
			// touched but same content
			status = previous.Status
			if status == Deleted {
				status = Untouched
			}
			summary.Untouched++
		case known && previous.Status != Added:
			status = Changed
			summary.Changed++
		default:
			summary.Added++
		}

		if status != Untouched {
			fragment.Add(res.Key, rel)
		}
		full[rel] = Entry{
			Hash:   res.Key,
			MTime:  info.ModTime().UnixNano(),
			Size:   info.Size(),
			Status: status,
		}
		i.l.Debug("staged", zap.String("path", rel), zap.String("key", res.Key), zap.String("status", string(status)))
		return nil
	})
	if err != nil {
		return summary, err
	}

	for pth, entry := range full {
		if _, ok := seen[pth]; ok {
			continue
		}
		switch entry.Status {
		case Added:
			// never committed: just forget about it
			fragment.Remove(entry.Hash, pth)
			delete(full, pth)
			summary.Deleted++
		case Deleted:
		default:
			fragment.Remove(entry.Hash, pth)
			entry.Status = Deleted
			full[pth] = entry
			summary.Deleted++
		}
	}

	if fragment.FileCount() > 0 {
		if err = fragment.Save(i.fs, i.layout.IndexManifest(i.spec)); err != nil {
			return summary, err
		}
	} else if err = i.fs.Remove(i.layout.IndexManifest(i.spec)); err != nil && !os.IsNotExist(err) {
		return summary, err
	}
	if err = full.Save(i.fs, i.layout.FullIndex(i.spec)); err != nil {
		return summary, err
	}

	i.l.Info("workspace staged",
		zap.String("spec", i.spec),
		zap.Int("added", summary.Added),
		zap.Int("changed", summary.Changed),
		zap.Int("untouched", summary.Untouched),
		zap.Int("deleted", summary.Deleted),
	)
	return summary, nil
}

func (i *Index) stageCompanions(workspace string) error {
	dst := i.layout.IndexMetadataDir(i.spec)
	if err := i.fs.MkdirAll(dst, 0755); err != nil {
		return err
	}
	for _, name := range []string{model.SpecFileName(i.spec), model.ReadmeFile} {
		data, err := afero.ReadFile(i.fs, filepath.Join(workspace, name))
		if err != nil {
			if os.IsNotExist(err) && name == model.ReadmeFile {
				continue
			}
			return err
		}
		if err = afero.WriteFile(i.fs, filepath.Join(dst, name), data, 0644); err != nil {
			return err
		}
	}
	return nil
}
