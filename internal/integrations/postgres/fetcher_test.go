package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kordat/lazyref/pkg/engine"
	"github.com/kordat/lazyref/pkg/record"
	"github.com/kordat/lazyref/pkg/registry"
)

func TestIntegrationPostgresFetcher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithInitScripts(filepath.Join("testdata", "init-db.sql")),
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate pgContainer: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := pgx.Connect(ctx, connStr)
	require.NoError(t, err)

	f := NewFetcher(conn)
	defer f.Close(ctx)

	t.Run("fetch returns the full document", func(t *testing.T) {
		res, err := f.Fetch(ctx, "Post", "p1", nil)
		require.NoError(t, err)
		assert.Nil(t, res.Keys)
		assert.Equal(t, "hello", res.Fields["title"])
	})

	t.Run("requested keys are ignored, full map returned", func(t *testing.T) {
		res, err := f.Fetch(ctx, "Post", "p1", []string{"title"})
		require.NoError(t, err)
		assert.Nil(t, res.Keys)
		assert.Contains(t, res.Fields, "author")
	})

	t.Run("missing row is ErrNotFound", func(t *testing.T) {
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

		post := record.NewSelective("Post", "p1", map[string]any{})
		v, err := e.Resolve(ctx, post, "author")
		require.NoError(t, err)

		author := v.(*record.Record)
		assert.Equal(t, "a1", author.ID())

		// a full map came back even though one key was requested
		assert.Equal(t, record.StateFull, post.State())
	})
}
