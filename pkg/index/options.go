package index

import (
	"github.com/oneconcern/datagit/pkg/hashfs"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option for the staging index
type Option func(*Index)

// Fs sets the file system for the workspace and the index files
func Fs(fs afero.Fs) Option {
	return func(i *Index) {
		if fs != nil {
			i.fs = fs
		}
	}
}

// Logger sets a logger
func Logger(l *zap.Logger) Option {
	return func(i *Index) {
		if l != nil {
			i.l = l
		}
	}
}

// HashFSOptions configure the staging block store (block size, key scheme, sharding levels)
func HashFSOptions(opts ...hashfs.Option) Option {
	return func(i *Index) {
		i.storeOptions = append(i.storeOptions, opts...)
	}
}
