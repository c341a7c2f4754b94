package factory

import (
	"context"
	"testing"

	"github.com/oneconcern/datagit/pkg/config"
	corestatus "github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/errors"
	"github.com/oneconcern/datagit/pkg/storage/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	scheme, bucket, err := Parse("s3h://mybucket")
	require.NoError(t, err)
	assert.Equal(t, S3, scheme)
	assert.Equal(t, "mybucket", bucket)

	for _, invalid := range []string{"", "mybucket", "s3h://", "azureh://mybucket"} {
		_, _, err = Parse(invalid)
		require.Error(t, err, invalid)
		assert.True(t, errors.Is(err, corestatus.ErrConfiguration), invalid)
		assert.True(t, errors.Is(err, status.ErrUnknownBackend), invalid)
	}
}

func TestBuild(t *testing.T) {
	cfg := config.StorageConfig{
		LocalH: map[string]config.LocalConfig{"nfs": {Path: t.TempDir()}},
	}

	for _, identifier := range []string{"s3h://mybucket", "gcsh://mybucket", "localh://nfs"} {
		store, err := Build(identifier, cfg)
		require.NoError(t, err, identifier)
		assert.Equal(t, identifier, store.String())
	}

	_, err := Build("localh://other", cfg)
	assert.True(t, errors.Is(err, corestatus.ErrConfiguration))
	assert.True(t, errors.Is(err, status.ErrBackendConfig))
}

func TestNewLocal(t *testing.T) {
	cfg := config.StorageConfig{
		LocalH: map[string]config.LocalConfig{"nfs": {Path: t.TempDir()}},
	}
	store, err := New(context.Background(), "localh://nfs", cfg)
	require.NoError(t, err)

	keys, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
