// Copyright © 2018 One Concern

// Package localfs implements a storage backend on a local directory, such as an NFS mount.
package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/oneconcern/datagit/pkg/storage/status"
	"github.com/spf13/afero"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// staging area within the remote file system: objects are renamed into place once complete
const nestedPutStageName = ".put-stage"

// Option for the local file system backend
type Option func(*localFS)

// LocalFs sets the file system on which local object files are read and written. Defaults to the OS file system.
func LocalFs(fs afero.Fs) Option {
	return func(l *localFS) {
		if fs != nil {
			l.local = fs
		}
	}
}

// Logger specifies a logger for this store
func Logger(logger *zap.Logger) Option {
	return func(l *localFS) {
		if logger != nil {
			l.l = logger
		}
	}
}

// New creates a new local file system backed storage, keeping objects in the fs.
//
// When fs is nil, objects are kept under the root directory on the OS file system.
func New(name, root string, fs afero.Fs, opts ...Option) storage.Store {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), root)
	}
	l := &localFS{
		name:  name,
		root:  root,
		fs:    fs,
		local: afero.NewOsFs(),
		l:     zap.NewNop(),
	}
	for _, apply := range opts {
		apply(l)
	}
	return l
}

type localFS struct {
	name      string
	root      string
	fs        afero.Fs
	local     afero.Fs
	connected atomic.Bool
	l         *zap.Logger
}

func (l *localFS) String() string {
	return "localh://" + l.name
}

func (l *localFS) Connect(_ context.Context) error {
	if err := l.fs.MkdirAll(nestedPutStageName, 0700); err != nil {
		return status.ErrConnect.Detailf("%s at %q", l, l.root).Wrap(err)
	}
	l.connected.Store(true)
	return nil
}

func maybeInvalidKey(key string) error {
	if key == "" || strings.ContainsRune(key, os.PathSeparator) || strings.HasPrefix(key, ".") {
		return status.ErrInvalidResource.Detailf("key %q", key)
	}
	return nil
}

func (l *localFS) check(key string) error {
	if !l.connected.Load() {
		return status.ErrNotConnected.Detailf("%s", l)
	}
	return maybeInvalidKey(key)
}

func (l *localFS) has(key string) (bool, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !fi.IsDir(), nil
}

func (l *localFS) Put(ctx context.Context, localPath, key string) (string, error) {
	if err := l.check(key); err != nil {
		return "", err
	}
	has, err := l.has(key)
	if err != nil {
		return "", status.ErrStorageAPI.Wrap(err)
	}
	if has {
		l.l.Debug("object already stored", zap.String("key", key))
		return key, nil
	}

	source, err := l.local.Open(localPath)
	if err != nil {
		return "", status.ErrLocalIO.Detailf("path %s", localPath).Wrap(err)
	}
	defer source.Close()

	/* the put is atomic: the object is first written in the staging area, then Rename()d into place */
	putStageKey := filepath.Join(nestedPutStageName, key)
	target, err := l.fs.OpenFile(putStageKey, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", status.ErrStorageAPI.Detailf("create record for %q", key).Wrap(err)
	}
	if _, err = io.Copy(target, source); err != nil {
		_ = target.Close()
		_ = l.fs.Remove(putStageKey)
		return "", status.ErrStorageAPI.Detailf("write record for %q", key).Wrap(err)
	}
	if err = target.Close(); err != nil {
		_ = l.fs.Remove(putStageKey)
		return "", status.ErrStorageAPI.Detailf("write record for %q", key).Wrap(err)
	}
	if err = l.fs.Rename(putStageKey, key); err != nil {
		return "", status.ErrStorageAPI.Detailf("write record for %q", key).Wrap(err)
	}
	return key, nil
}

func (l *localFS) Get(ctx context.Context, localPath, key string) error {
	if err := l.check(key); err != nil {
		return err
	}
	source, err := l.fs.Open(key)
	if err != nil {
		if os.IsNotExist(err) {
			return status.ErrNotExists.Detailf("key %s", key)
		}
		return status.ErrStorageAPI.Wrap(err)
	}
	defer source.Close()

	err = storage.WriteAtomic(l.local, localPath, func(w io.Writer) error {
		_, e := io.Copy(w, source)
		return e
	})
	if err != nil {
		return status.ErrLocalIO.Detailf("path %s", localPath).Wrap(err)
	}
	return nil
}

func (l *localFS) Delete(ctx context.Context, key string) error {
	if err := l.check(key); err != nil {
		return err
	}
	if err := l.fs.Remove(key); err != nil && !os.IsNotExist(err) {
		return status.ErrStorageAPI.Detailf("removing %q", key).Wrap(err)
	}
	return nil
}

func (l *localFS) List(ctx context.Context, prefix string) ([]string, error) {
	if !l.connected.Load() {
		return nil, status.ErrNotConnected.Detailf("%s", l)
	}
	entries, err := afero.ReadDir(l.fs, ".")
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	var res []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || maybeInvalidKey(name) != nil {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			res = append(res, name)
		}
	}
	return res, nil
}
