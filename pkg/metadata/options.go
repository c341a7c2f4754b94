package metadata

import (
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option for the metadata store
type Option func(*Metadata)

// Fs sets the file system holding metadata
func Fs(fs afero.Fs) Option {
	return func(m *Metadata) {
		if fs != nil {
			m.fs = fs
		}
	}
}

// Logger sets a logger
func Logger(l *zap.Logger) Option {
	return func(m *Metadata) {
		if l != nil {
			m.l = l
		}
	}
}

// Clock sets the source of commit timestamps
func Clock(now func() time.Time) Option {
	return func(m *Metadata) {
		if now != nil {
			m.now = now
		}
	}
}
