// Package factory builds connected storage backends from their identifier, e.g. s3h://mybucket.
package factory

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/oneconcern/datagit/pkg/config"
	corestatus "github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/oneconcern/datagit/pkg/storage/gcs"
	"github.com/oneconcern/datagit/pkg/storage/localfs"
	"github.com/oneconcern/datagit/pkg/storage/status"
	"github.com/oneconcern/datagit/pkg/storage/sthree"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Backend schemes
const (
	S3    = "s3h"
	GCS   = "gcsh"
	Local = "localh"
)

// Option for the factory
type Option func(*factory)

type factory struct {
	local afero.Fs
	l     *zap.Logger
}

// LocalFs sets the file system for local files read and written by backends
func LocalFs(fs afero.Fs) Option {
	return func(f *factory) {
		f.local = fs
	}
}

// Logger for backends
func Logger(l *zap.Logger) Option {
	return func(f *factory) {
		if l != nil {
			f.l = l
		}
	}
}

// Parse a backend identifier into its scheme and bucket
func Parse(identifier string) (string, string, error) {
	parts := strings.SplitN(identifier, "://", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", corestatus.ErrConfiguration.Wrap(status.ErrUnknownBackend.Detailf("%q: expected scheme://bucket", identifier))
	}
	switch parts[0] {
	case S3, GCS, Local:
		return parts[0], parts[1], nil
	default:
		return "", "", corestatus.ErrConfiguration.Wrap(
			status.ErrUnknownBackend.Detailf("%q: supported schemes are %s, %s and %s", identifier, S3, GCS, Local))
	}
}

// Build a backend for an identifier, without connecting it
func Build(identifier string, cfg config.StorageConfig, opts ...Option) (storage.Store, error) {
	f := &factory{l: zap.NewNop()}
	for _, apply := range opts {
		apply(f)
	}

	scheme, bucket, err := Parse(identifier)
	if err != nil {
		return nil, err
	}

	var store storage.Store
	switch scheme {
	case S3:
		s3cfg := cfg.S3H[bucket]
		awsConfig := aws.NewConfig()
		if s3cfg.Region != "" {
			awsConfig = awsConfig.WithRegion(s3cfg.Region)
		}
		if s3cfg.Endpoint != "" {
			awsConfig = awsConfig.WithEndpoint(s3cfg.Endpoint).WithS3ForcePathStyle(true)
		}
		if s3cfg.AccessKeyID != "" {
			awsConfig = awsConfig.WithCredentials(credentials.NewStaticCredentials(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, ""))
		}
		store = sthree.New(bucket, sthree.AWSConfig(awsConfig), sthree.Profile(s3cfg.Profile), sthree.LocalFs(f.local), sthree.Logger(f.l))
	case GCS:
		store = gcs.New(bucket, cfg.GCSH[bucket].Credentials, gcs.LocalFs(f.local), gcs.Logger(f.l))
	case Local:
		local, ok := cfg.LocalH[bucket]
		if !ok || local.Path == "" {
			return nil, corestatus.ErrConfiguration.Wrap(
				status.ErrBackendConfig.Detailf("storage.%s.%s.path is not set", Local, bucket))
		}
		store = localfs.New(bucket, local.Path, nil, localfs.LocalFs(f.local), localfs.Logger(f.l))
	}
	return storage.Logged(store, f.l), nil
}

// New builds and connects a backend. A backend which fails to connect is not returned.
func New(ctx context.Context, identifier string, cfg config.StorageConfig, opts ...Option) (storage.Store, error) {
	store, err := Build(identifier, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err = store.Connect(ctx); err != nil {
		return nil, corestatus.ErrRemoteIO.Wrap(err)
	}
	return store, nil
}
