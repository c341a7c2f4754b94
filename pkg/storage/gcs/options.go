package gcs

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option is a functor to pass optional parameters to the gcs store
type Option func(*gcs)

// Logger specifies a logger for this store
func Logger(logger *zap.Logger) Option {
	return func(g *gcs) {
		if logger != nil {
			g.l = logger
		}
	}
}

// LocalFs sets the file system on which local object files are read and written
func LocalFs(fs afero.Fs) Option {
	return func(g *gcs) {
		if fs != nil {
			g.local = fs
		}
	}
}
