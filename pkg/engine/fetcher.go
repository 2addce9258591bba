package engine

import (
	"context"

	"github.com/kordat/lazyref/pkg/record"
)

// FetchResult is one response from the remote store. Keys lists the
// remote columns actually populated; nil means Fields is the full
// materialization of the object.
type FetchResult struct {
	Fields map[string]any
	Keys   []string
}

// Fetcher is the network collaborator. Given an identity and an
// optional requested key set (remote column names; nil requests the
// full record), it returns the field map, or fails with a transport or
// not-found error. A fetcher is free to ignore keys and return the full
// map; the engine treats both outcomes as valid.
type Fetcher interface {
	Fetch(ctx context.Context, class, id string, keys []string) (*FetchResult, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, class, id string, keys []string) (*FetchResult, error)

func (f FetcherFunc) Fetch(ctx context.Context, class, id string, keys []string) (*FetchResult, error) {
	return f(ctx, class, id, keys)
}

// Tracker is the dirty-field bookkeeping capability the engine
// interleaves with. The engine does not own its storage.
//
// WillChange snapshots the current value of field before the write; the
// engine guarantees any required autofetch has completed before it is
// invoked, so the snapshot observes the pre-fetch truth rather than a
// value produced mid-fetch. DidChange records that the field changed.
// Untracked merges never touch the tracker.
type Tracker interface {
	WillChange(ctx context.Context, r *record.Record, field string)
	DidChange(ctx context.Context, r *record.Record, field string)
}

// NopTracker discards all bookkeeping.
type NopTracker struct{}

func (NopTracker) WillChange(ctx context.Context, r *record.Record, field string) {}
func (NopTracker) DidChange(ctx context.Context, r *record.Record, field string)  {}
