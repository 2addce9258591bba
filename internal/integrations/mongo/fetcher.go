// Package mongo implements the fetch collaborator against a MongoDB
// database: one collection per class, documents keyed by _id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/kordat/lazyref/pkg/engine"
)

type Fetcher struct {
	client   *mongo.Client
	database string
	logger   *zap.Logger
}

// NewFetcher connects using the given URI. The database name is taken
// from the URI path.
func NewFetcher(ctx context.Context, uri *url.URL, logger *zap.Logger) (*Fetcher, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri.String()))
	if err != nil {
		return nil, err
	}

	database := ""
	if len(uri.Path) > 1 {
		database = uri.Path[1:]
	}
	if database == "" {
		return nil, fmt.Errorf("mongo URI must name a database")
	}

	return &Fetcher{
		client:   client,
		database: database,
		logger:   logger,
	}, nil
}

func (f *Fetcher) Close(ctx context.Context) error {
	return f.client.Disconnect(ctx)
}

func (f *Fetcher) Fetch(ctx context.Context, class, id string, keys []string) (*engine.FetchResult, error) {
	coll := f.client.Database(f.database).Collection(class)

	opts := options.FindOne()
	if len(keys) > 0 {
		projection := bson.M{"_id": 0}
		for _, k := range keys {
			projection[k] = 1
		}
		opts.SetProjection(projection)
	}

	var doc bson.M
	err := coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s/%s: %w", class, id, engine.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", class, id, err)
	}
	delete(doc, "_id")

	fields := plainMap(doc)

	var populated []string
	if len(keys) > 0 {
		// non-nil even when the projection matched nothing: only a nil
		// key list means a full document
		populated = make([]string, 0, len(fields))
		for k := range fields {
			populated = append(populated, k)
		}
		sort.Strings(populated)
	}

	f.logger.Debug("fetched document",
		zap.String("class", class),
		zap.String("id", id),
		zap.Int("fields", len(fields)))

	return &engine.FetchResult{
		Fields: fields,
		Keys:   populated,
	}, nil
}

// List returns all document ids of a class, for snapshot walks.
func (f *Fetcher) List(ctx context.Context, class string) ([]string, error) {
	coll := f.client.Database(f.database).Collection(class)

	cursor, err := coll.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", class, err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// plainMap rewrites bson container types into plain maps and slices so
// the engine's payload normalization sees the shapes it expects.
func plainMap(m bson.M) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return plainMap(t)
	case map[string]any:
		return plainMap(bson.M(t))
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}
