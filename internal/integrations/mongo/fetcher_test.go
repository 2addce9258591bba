package mongo

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/kordat/lazyref/pkg/engine"
	"github.com/kordat/lazyref/pkg/record"
	"github.com/kordat/lazyref/pkg/registry"
)

func TestIntegrationMongoFetcher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx,
		"mongo:6",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate mongoContainer: %s", err)
		}
	})

	connStr, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	seed, err := mongo.Connect(ctx, options.Client().ApplyURI(connStr))
	require.NoError(t, err)
	defer seed.Disconnect(ctx)

	posts := seed.Database("lazyref").Collection("Post")
	_, err = posts.InsertOne(ctx, bson.M{
		"_id":   "p1",
		"title": "hello",
		"author": bson.M{
			"__type": "reference",
			"class":  "Author",
			"id":     "a1",
		},
	})
	require.NoError(t, err)

	uri, err := url.Parse(connStr)
	require.NoError(t, err)
	uri.Path = "/lazyref"

	f, err := NewFetcher(ctx, uri, zap.NewNop())
	require.NoError(t, err)
	defer f.Close(ctx)

	t.Run("full fetch", func(t *testing.T) {
		res, err := f.Fetch(ctx, "Post", "p1", nil)
		require.NoError(t, err)
		assert.Nil(t, res.Keys)
		assert.Equal(t, "hello", res.Fields["title"])
	})

	t.Run("projection fetch", func(t *testing.T) {
		res, err := f.Fetch(ctx, "Post", "p1", []string{"title"})
		require.NoError(t, err)
		assert.Equal(t, []string{"title"}, res.Keys)
		assert.Len(t, res.Fields, 1)
	})

	t.Run("missing document is ErrNotFound", func(t *testing.T) {
		_, err := f.Fetch(ctx, "Post", "nope", nil)
		assert.ErrorIs(t, err, engine.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		ids, err := f.List(ctx, "Post")
		require.NoError(t, err)
		assert.Equal(t, []string{"p1"}, ids)
	})

	t.Run("resolution end to end", func(t *testing.T) {
		reg := registry.New()
		require.NoError(t, reg.Register("Post", "author", "Author", ""))

		e := engine.New(reg, engine.WithFetcher(f), engine.WithPolicy(engine.Autofetch))

		post := record.NewUnfetched("Post", "p1")
		v, err := e.Resolve(ctx, post, "author")
		require.NoError(t, err)

		author := v.(*record.Record)
		assert.Equal(t, "a1", author.ID())
		assert.Equal(t, record.StateFull, post.State())
	})
}
