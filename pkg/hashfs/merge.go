package hashfs

import (
	"os"
	"path/filepath"

	"github.com/oneconcern/datagit/pkg/hashfs/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// MergeInto moves all objects of this store into another store, then appends this store's logs
// to the destination logs and clears them.
//
// Whole shard directories are renamed whenever the destination does not have them yet:
// objects are not copied one by one. Both stores must live on the same file system and
// share the same layout.
func (s *Store) MergeInto(dst *Store) error {
	if s.levels != dst.levels || s.scheme.Name() != dst.scheme.Name() {
		return status.ErrMerge.Detailf("incompatible layouts: %s and %s", s, dst)
	}

	if err := dst.fs.MkdirAll(dst.root, dirPerm); err != nil {
		return status.ErrMerge.Wrap(err)
	}

	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return status.ErrMerge.Wrap(err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == logDir || name == tmpDir {
			continue
		}
		if err = s.mergeEntry(filepath.Join(s.root, name), filepath.Join(dst.root, name), entry.IsDir()); err != nil {
			return status.ErrMerge.Detailf("%s", name).Wrap(err)
		}
	}

	keys, err := s.Log()
	if err != nil {
		return status.ErrMerge.Wrap(err)
	}
	links, err := s.readLines(s.LinksLogPath())
	if err != nil {
		return status.ErrMerge.Wrap(err)
	}
	if err = dst.AppendLog(keys...); err != nil {
		return err
	}
	if err = dst.AppendLinksLog(links...); err != nil {
		return err
	}
	s.links.Purge()

	s.l.Debug("hashfs merged", zap.Stringer("source", s), zap.Stringer("destination", dst), zap.Int("logged", len(keys)))
	return s.ResetLog()
}

func (s *Store) mergeEntry(src, dst string, isDir bool) error {
	if !isDir {
		exists, err := afero.Exists(s.fs, dst)
		if err != nil {
			return err
		}
		if exists {
			// same key, same content
			return s.fs.Remove(src)
		}
		return s.fs.Rename(src, dst)
	}

	exists, err := afero.DirExists(s.fs, dst)
	if err != nil {
		return err
	}
	if !exists {
		return s.fs.Rename(src, dst)
	}

	entries, err := afero.ReadDir(s.fs, src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err = s.mergeEntry(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name()), entry.IsDir()); err != nil {
			return err
		}
	}
	return s.fs.Remove(src)
}
