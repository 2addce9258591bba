// Package postgres implements the fetch collaborator against a JSONB
// document table. The fetcher ignores requested key sets and returns
// the full document; the engine handles that as a valid outcome.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/kordat/lazyref/pkg/engine"
)

type Fetcher struct {
	conn   *pgx.Conn
	schema string
	table  string
	logger *zap.Logger
}

type Option func(*Fetcher)

func WithSchema(schema string) Option {
	return func(f *Fetcher) {
		f.schema = schema
	}
}

func WithTable(table string) Option {
	return func(f *Fetcher) {
		f.table = table
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

func NewFetcher(conn *pgx.Conn, opts ...Option) *Fetcher {
	f := &Fetcher{
		conn:   conn,
		schema: "public",
		table:  "objects",
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Close(ctx context.Context) error {
	return f.conn.Close(ctx)
}

func (f *Fetcher) Fetch(ctx context.Context, class, id string, keys []string) (*engine.FetchResult, error) {
	query := fmt.Sprintf(`SELECT data FROM %s.%s WHERE class = $1 AND id = $2`, f.schema, f.table)

	var data []byte
	err := f.conn.QueryRow(ctx, query, class, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", class, id, engine.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", class, id, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", class, id, err)
	}

	f.logger.Debug("fetched document",
		zap.String("class", class),
		zap.String("id", id),
		zap.Int("fields", len(fields)))

	// keys ignored: the whole document comes back in one row anyway
	return &engine.FetchResult{Fields: fields}, nil
}

// List returns all document ids of a class, for snapshot walks.
func (f *Fetcher) List(ctx context.Context, class string) ([]string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s.%s WHERE class = $1`, f.schema, f.table)

	rows, err := f.conn.Query(ctx, query, class)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", class, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}
