// Copyright © 2018 One Concern

package storage

import (
	"context"

	"go.uber.org/zap"
)

// Logged decorates a store to trace every call to the backend at debug level
func Logged(store Store, l *zap.Logger) Store {
	if l == nil {
		return store
	}
	return &loggedStore{
		store: store,
		l:     l.With(zap.Stringer("backend", store)),
	}
}

type loggedStore struct {
	store Store
	l     *zap.Logger
}

func (s *loggedStore) String() string {
	return s.store.String()
}

func (s *loggedStore) Connect(ctx context.Context) error {
	err := s.store.Connect(ctx)
	s.l.Debug("storage connect", zap.Error(err))
	return err
}

func (s *loggedStore) Put(ctx context.Context, localPath, key string) (string, error) {
	remote, err := s.store.Put(ctx, localPath, key)
	s.l.Debug("storage put", zap.String("key", key), zap.String("path", localPath), zap.Error(err))
	return remote, err
}

func (s *loggedStore) Get(ctx context.Context, localPath, key string) error {
	err := s.store.Get(ctx, localPath, key)
	s.l.Debug("storage get", zap.String("key", key), zap.String("path", localPath), zap.Error(err))
	return err
}

func (s *loggedStore) Delete(ctx context.Context, key string) error {
	err := s.store.Delete(ctx, key)
	s.l.Debug("storage delete", zap.String("key", key), zap.Error(err))
	return err
}

func (s *loggedStore) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.store.List(ctx, prefix)
	s.l.Debug("storage list", zap.String("prefix", prefix), zap.Int("keys", len(keys)), zap.Error(err))
	return keys, err
}
