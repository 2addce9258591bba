package config

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/kordat/lazyref/internal"
	"github.com/kordat/lazyref/internal/integrations/httpstore"
	"github.com/kordat/lazyref/internal/integrations/kafka"
	"github.com/kordat/lazyref/internal/integrations/mongo"
	"github.com/kordat/lazyref/internal/integrations/postgres"
	"github.com/kordat/lazyref/internal/local"
	"github.com/kordat/lazyref/internal/s3"
	"github.com/kordat/lazyref/internal/snapshot"
	"github.com/kordat/lazyref/pkg/engine"
	"github.com/kordat/lazyref/pkg/registry"
	"github.com/kordat/lazyref/pkg/track"
)

// Fetcher bundles the capabilities a configured store backend exposes.
type Fetcher interface {
	engine.Fetcher
	snapshot.Lister
}

// InitializeFetcher builds the fetch collaborator named by the store
// config.
func InitializeFetcher(ctx context.Context, lazyref *Lazyref, logger *zap.Logger) (Fetcher, error) {
	switch lazyref.Store.Type {
	case "http":
		return httpstore.New(lazyref.Store.URL, httpstore.WithLogger(logger)), nil

	case "mongo":
		uri, err := url.Parse(lazyref.Store.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid mongo connection string: %w", err)
		}
		return mongo.NewFetcher(ctx, uri, logger)

	case "postgres":
		conn, err := pgx.Connect(ctx, lazyref.Store.ConnectionString)
		if err != nil {
			return nil, err
		}
		if err := conn.Ping(ctx); err != nil {
			return nil, err
		}

		opts := []postgres.Option{postgres.WithLogger(logger)}
		if lazyref.Store.Postgres.Schema != "" {
			opts = append(opts, postgres.WithSchema(lazyref.Store.Postgres.Schema))
		}
		if lazyref.Store.Postgres.Table != "" {
			opts = append(opts, postgres.WithTable(lazyref.Store.Postgres.Table))
		}
		return postgres.NewFetcher(conn, opts...), nil

	default:
		return nil, fmt.Errorf("unknown store type: %s", lazyref.Store.Type)
	}
}

// InitializeRegistry declares the configured models.
func InitializeRegistry(lazyref *Lazyref, logger *zap.Logger) (*registry.Registry, error) {
	reg := registry.New(registry.WithLogger(logger))
	for _, m := range lazyref.Models {
		assocs := make([]registry.Association, 0, len(m.Associations))
		for _, a := range m.Associations {
			assocs = append(assocs, registry.Association{
				Field:        a.Field,
				Target:       a.Target,
				RemoteColumn: a.Column,
			})
		}
		if _, err := reg.RegisterModel(m.Class, assocs...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// InitializeEngine wires registry, fetcher, policy and tracker into a
// ready engine.
func InitializeEngine(ctx context.Context, lazyref *Lazyref, logger *zap.Logger) (*engine.Engine, error) {
	reg, err := InitializeRegistry(lazyref, logger)
	if err != nil {
		return nil, err
	}

	fetcher, err := InitializeFetcher(ctx, lazyref, logger)
	if err != nil {
		return nil, err
	}

	var tracker engine.Tracker = track.New(track.WithLogger(logger))
	if lazyref.Tracker.Kafka != nil {
		uri, err := url.Parse(lazyref.Tracker.Kafka.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid kafka URL: %w", err)
		}
		tracker, err = kafka.NewTracker(ctx, uri, tracker, logger)
		if err != nil {
			return nil, err
		}
	}

	opts := []engine.Option{
		engine.WithFetcher(fetcher),
		engine.WithTracker(tracker),
		engine.WithLogger(logger),
	}

	switch lazyref.Engine.Policy {
	case "", "autofetch":
		opts = append(opts, engine.WithPolicy(engine.Autofetch))
	case "raise":
		opts = append(opts, engine.WithPolicy(engine.RaiseOnMissing))
	default:
		return nil, fmt.Errorf("unknown policy: %s", lazyref.Engine.Policy)
	}

	return engine.New(reg, opts...), nil
}

// InitializeRepository builds the snapshot destination, namespaced by
// session id.
func InitializeRepository(lazyref *Lazyref, sid string, logger *zap.Logger) (internal.Repository, error) {
	switch lazyref.Snapshot.Repository.Type {
	case "local":
		return local.New(
			lazyref.Snapshot.Repository.LocalConfig.Path,
			local.WithPrefix(sid),
			local.WithLogger(logger),
		), nil

	case "s3":
		cfg := lazyref.Snapshot.Repository.S3Config
		return s3.New(
			s3.WithLogger(logger),
			s3.WithRegion(cfg.Region),
			s3.WithBucket(cfg.Bucket),
			s3.WithEndpoint(cfg.Endpoint),
			s3.WithForcePathStyle(cfg.ForcePathStyle),
			s3.WithPrefix(path.Join(cfg.Prefix, sid)),
		)

	default:
		return nil, fmt.Errorf("unknown repository type: %s", lazyref.Snapshot.Repository.Type)
	}
}
