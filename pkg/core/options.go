package core

import (
	"context"
	"time"

	"github.com/oneconcern/datagit/pkg/hashfs"
	"github.com/oneconcern/datagit/pkg/pool"
	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Backends resolves a backend identifier (e.g. s3h://mybucket) into a connected store
type Backends func(ctx context.Context, identifier string) (storage.Store, error)

// Option for the local repository
type Option func(*LocalRepository)

// Fs sets the file system for block stores, workspaces and metadata.
//
// Hard links into workspaces require the OS file system.
func Fs(fs afero.Fs) Option {
	return func(r *LocalRepository) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// Logger sets a logger for the sync engine
func Logger(l *zap.Logger) Option {
	return func(r *LocalRepository) {
		if l != nil {
			r.l = l
		}
	}
}

// HashFSOptions configure the objects and cache block stores
func HashFSOptions(opts ...hashfs.Option) Option {
	return func(r *LocalRepository) {
		r.storeOptions = append(r.storeOptions, opts...)
	}
}

// Concurrency sets the number of concurrent transfers
func Concurrency(n int) Option {
	return func(r *LocalRepository) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// Retry sets the number of additional attempts of a failed transfer
func Retry(n int) Option {
	return func(r *LocalRepository) {
		if n >= 0 {
			r.retry = n
		}
	}
}

// Backoff sets the pause between two attempts of a transfer
func Backoff(d time.Duration) Option {
	return func(r *LocalRepository) {
		r.backoff = d
	}
}

// RateLimit caps the number of transfers started per second. Zero means no limit.
func RateLimit(perSecond float64) Option {
	return func(r *LocalRepository) {
		r.rateLimit = perSecond
	}
}

// Window sets the number of manifest keys fetched per batch
func Window(n int) Option {
	return func(r *LocalRepository) {
		if n > 0 {
			r.window = n
		}
	}
}

// WithBackends sets the resolver of backend identifiers
func WithBackends(b Backends) Option {
	return func(r *LocalRepository) {
		if b != nil {
			r.backends = b
		}
	}
}

func (r *LocalRepository) newPool(name string) *pool.Pool {
	return pool.New(
		pool.Name(name),
		pool.Concurrency(r.concurrency),
		pool.Retry(r.retry),
		pool.Backoff(r.backoff),
		pool.RateLimit(r.rateLimit),
		pool.Logger(r.l),
	)
}
