// Copyright © 2018 One Concern

// Package gcs implements a storage backend on Google Cloud Storage.
package gcs

import (
	"context"
	"io"

	gcsStorage "cloud.google.com/go/storage"
	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/oneconcern/datagit/pkg/storage/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type gcs struct {
	client      *gcsStorage.Client
	bucket      string
	credentials string
	local       afero.Fs
	l           *zap.Logger
}

// New GCS backend for a bucket. The client is created by Connect.
//
// When no credentials file is given, the GOOGLE_APPLICATION_CREDENTIALS environment variable applies.
func New(bucket, credentialFile string, opts ...Option) storage.Store {
	googleStore := &gcs{
		bucket:      bucket,
		credentials: credentialFile,
		local:       afero.NewOsFs(),
		l:           zap.NewNop(),
	}
	for _, apply := range opts {
		apply(googleStore)
	}
	return googleStore
}

func (g *gcs) String() string {
	return "gcsh://" + g.bucket
}

func (g *gcs) Connect(ctx context.Context) error {
	clientOptions := []option.ClientOption{option.WithScopes(gcsStorage.ScopeFullControl)}
	if g.credentials != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(g.credentials))
	}

	client, err := gcsStorage.NewClient(ctx, clientOptions...)
	if err != nil {
		return status.ErrConnect.Detailf("%s", g).Wrap(toSentinelErrors(err))
	}
	if _, err = client.Bucket(g.bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return status.ErrConnect.Detailf("%s", g).Wrap(toSentinelErrors(err))
	}

	g.client = client
	g.l.Debug("gcs backend connected", zap.String("bucket", g.bucket))
	return nil
}

func (g *gcs) connected() error {
	if g.client == nil {
		return status.ErrNotConnected.Detailf("%s", g)
	}
	return nil
}

func (g *gcs) Put(ctx context.Context, localPath, key string) (string, error) {
	if err := g.connected(); err != nil {
		return "", err
	}
	source, err := g.local.Open(localPath)
	if err != nil {
		return "", status.ErrLocalIO.Detailf("path %s", localPath).Wrap(err)
	}
	defer source.Close()

	// Put if not present
	writer := g.client.Bucket(g.bucket).Object(key).If(gcsStorage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if _, err = io.Copy(writer, source); err != nil {
		_ = writer.Close()
		return "", toSentinelErrors(err)
	}
	if err = writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			g.l.Debug("object already stored", zap.String("key", key))
			return key, nil
		}
		return "", toSentinelErrors(err)
	}
	return key, nil
}

func (g *gcs) Get(ctx context.Context, localPath, key string) error {
	if err := g.connected(); err != nil {
		return err
	}
	objectReader, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return toSentinelErrors(err)
	}
	defer objectReader.Close()

	err = storage.WriteAtomic(g.local, localPath, func(w io.Writer) error {
		_, e := io.Copy(w, objectReader)
		return e
	})
	if err != nil {
		return status.ErrLocalIO.Detailf("path %s", localPath).Wrap(err)
	}
	return nil
}

func (g *gcs) Delete(ctx context.Context, key string) error {
	if err := g.connected(); err != nil {
		return err
	}
	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if err == gcsStorage.ErrObjectNotExist {
		return nil
	}
	return toSentinelErrors(err)
}

func (g *gcs) List(ctx context.Context, prefix string) ([]string, error) {
	if err := g.connected(); err != nil {
		return nil, err
	}
	var keys []string
	objectsIterator := g.client.Bucket(g.bucket).Objects(ctx, &gcsStorage.Query{Prefix: prefix})
	for {
		attrs, err := objectsIterator.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, toSentinelErrors(err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}
