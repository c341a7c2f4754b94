// Copyright © 2018 One Concern

package storage

import (
	"context"
)

// Store implementations know how to move content-addressed objects between a local
// file and a remote backend.
//
// Typically this is something bucket-like. Examples are S3, GCS, NFS, ...
// Implementations of this interface are assumed to be fairly simple.
//
// Put must be content-addressed-safe: uploading the same key twice is a no-op.
// List returns keys without any guaranteed ordering.
type Store interface {
	String() string
	Connect(ctx context.Context) error
	Put(ctx context.Context, localPath, key string) (string, error)
	Get(ctx context.Context, localPath, key string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}
