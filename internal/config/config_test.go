package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLazyrefFromFile(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		lazyref, err := NewLazyrefFromFile("testdata/http.lazyref.yml")
		require.NoError(t, err)
		require.NotNil(t, lazyref)

		assert.Equal(t, "http", lazyref.Store.Type)
		assert.Equal(t, "raise", lazyref.Engine.Policy)
		require.Len(t, lazyref.Models, 2)
		assert.Equal(t, "Post", lazyref.Models[0].Class)
		assert.Equal(t, "author_id", lazyref.Models[0].Associations[0].Column)
		assert.Equal(t, []string{"Post", "Author"}, lazyref.Snapshot.Classes)
		assert.Equal(t, "local", lazyref.Snapshot.Repository.Type)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLazyrefFromFile("testdata/nope.yml")
		assert.Error(t, err)
	})
}

func TestInitializeRegistry(t *testing.T) {
	lazyref, err := NewLazyrefFromFile("testdata/http.lazyref.yml")
	require.NoError(t, err)

	reg, err := InitializeRegistry(lazyref, zap.NewNop())
	require.NoError(t, err)

	d, ok := reg.Lookup("Post", "author")
	require.True(t, ok)
	assert.Equal(t, "Author", d.Target)
	assert.Equal(t, "author_id", d.RemoteColumn)
}

func TestInitializeFetcherUnknownType(t *testing.T) {
	_, err := InitializeFetcher(context.Background(), &Lazyref{
		Store: Store{Type: "carrier-pigeon"},
	}, zap.NewNop())
	assert.Error(t, err)
}
