package hashfs

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option to configure a block store
type Option func(*Store)

// Levels sets the number of sharding directory levels
func Levels(levels int) Option {
	return func(s *Store) {
		s.levels = levels
	}
}

// BlockSize sets the size of chunks produced when splitting files
func BlockSize(size int) Option {
	return func(s *Store) {
		s.blockSize = size
	}
}

// WithScheme sets the content key scheme
func WithScheme(scheme Scheme) Option {
	return func(s *Store) {
		if scheme != nil {
			s.scheme = scheme
		}
	}
}

// Fs specifies the underlying file system. Stores to be merged must share the same file system.
func Fs(fs afero.Fs) Option {
	return func(s *Store) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// Logger sets a logger for this store
func Logger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// LinksCacheSize sets the size of the LRU cache for decoded link objects, in number of objects
func LinksCacheSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.linksCacheSize = size
		}
	}
}
