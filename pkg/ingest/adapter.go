package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/hazyhaar/companygraph/pkg/names"
	"github.com/hazyhaar/companygraph/pkg/store"
)

// Adapter loads one source's export into the store: raw payloads into the
// data table and work items into the pending queue.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "crunchbase-organizations").
	ID() string
	// Source returns the store source the adapter writes.
	Source() store.Source
	// Description returns a human-readable description.
	Description() string
	// DefaultURL returns the default location used for seeding the database.
	DefaultURL() string
	// License returns the license or terms identifier of the source.
	License() string
	// Ingest fetches sourceURL (an http(s) URL or a local path), parses it
	// and writes it to env.Store. Records that cannot be used are logged
	// and skipped. It returns the number of records stored.
	Ingest(ctx context.Context, sourceURL string, env Env) (int, error)
}

// Env is what adapters and the checker work against. Store is required;
// the other fields fall back to defaults when nil.
type Env struct {
	Store   *store.Store
	Logger  *slog.Logger
	Lexicon *names.Lexicon
	Fetcher *Fetcher
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e Env) fetcher() *Fetcher {
	if e.Fetcher == nil {
		return defaultFetcher
	}
	return e.Fetcher
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID, or an error if not found.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown ingest source: %q", id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// Describers returns the registered adapters as store.Describer, for seeding.
func Describers() []store.Describer {
	all := All()
	out := make([]store.Describer, len(all))
	for i, a := range all {
		out[i] = a
	}
	return out
}
