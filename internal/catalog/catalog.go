// Package catalog holds the endpoint list, the active filter and the
// owner-grouped index derived from both.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"

	"github.com/studiowebux/apiconsole/internal/types"
)

// Source fetches the full endpoint collection
type Source interface {
	Catalog(ctx context.Context) ([]types.EndpointDescriptor, error)
}

// Criteria selects endpoints. A nil Method matches every method.
type Criteria struct {
	SearchTerm string
	Method     *types.HTTPMethod
}

// Group is one owner and its endpoints in source order
type Group struct {
	Owner     string
	Endpoints []types.EndpointDescriptor
}

// Index is the ordered owner grouping; owners appear in first-seen order
type Index []Group

// Lookup returns the group for owner
func (idx Index) Lookup(owner string) (Group, bool) {
	for _, g := range idx {
		if g.Owner == owner {
			return g, true
		}
	}
	return Group{}, false
}

// EndpointCount sums the endpoints across all groups
func (idx Index) EndpointCount() int {
	n := 0
	for _, g := range idx {
		n += len(g.Endpoints)
	}
	return n
}

// Catalog is safe for concurrent use
type Catalog struct {
	mu       sync.RWMutex
	all      []types.EndpointDescriptor
	criteria Criteria
	filtered []types.EndpointDescriptor
	index    Index
}

func New() *Catalog {
	return &Catalog{}
}

// Load fetches from src and replaces the collection.
// On failure the previous collection is kept.
func (c *Catalog) Load(ctx context.Context, src Source) error {
	items, err := src.Catalog(ctx)
	if err != nil {
		var fe *types.FetchError
		if !errors.As(err, &fe) {
			err = &types.FetchError{Resource: "catalog", Err: err}
		}
		slog.Error("catalog load failed", slog.String("error", err.Error()))
		return err
	}
	c.Replace(items)
	return nil
}

// Replace swaps in a new collection and re-applies the active criteria.
// Descriptors that fail validation are dropped.
func (c *Catalog) Replace(items []types.EndpointDescriptor) {
	valid := make([]types.EndpointDescriptor, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			slog.Warn("skipping invalid endpoint", slog.String("error", err.Error()))
			continue
		}
		valid = append(valid, item)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = valid
	c.recompute()

	slog.Info("catalog loaded",
		slog.Int("endpoints", len(valid)),
		slog.Int("skipped", len(items)-len(valid)),
		slog.Int("groups", len(c.index)),
	)
}

// ApplyFilter recomputes the filtered collection and index
func (c *Catalog) ApplyFilter(criteria Criteria) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria = criteria
	c.recompute()
}

func (c *Catalog) recompute() {
	term := strings.TrimSpace(c.criteria.SearchTerm)
	var fold cases.Caser
	if term != "" {
		fold = cases.Fold()
		term = fold.String(term)
	}

	filtered := make([]types.EndpointDescriptor, 0, len(c.all))
	for _, e := range c.all {
		if c.criteria.Method != nil && e.Method != *c.criteria.Method {
			continue
		}
		if term != "" && !matchesTerm(fold, e, term) {
			continue
		}
		filtered = append(filtered, e)
	}

	c.filtered = filtered
	c.index = buildIndex(filtered)
}

func matchesTerm(fold cases.Caser, e types.EndpointDescriptor, term string) bool {
	if strings.Contains(fold.String(e.OperationName), term) ||
		strings.Contains(fold.String(e.Owner), term) {
		return true
	}
	for _, p := range e.Paths {
		if strings.Contains(fold.String(p), term) {
			return true
		}
	}
	return false
}

func buildIndex(items []types.EndpointDescriptor) Index {
	idx := Index{}
	pos := make(map[string]int)
	for _, e := range items {
		i, ok := pos[e.Owner]
		if !ok {
			i = len(idx)
			pos[e.Owner] = i
			idx = append(idx, Group{Owner: e.Owner})
		}
		idx[i].Endpoints = append(idx[i].Endpoints, e)
	}
	return idx
}

// Criteria returns the active filter
func (c *Catalog) Criteria() Criteria {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.criteria
}

// Index returns the current grouping; callers must not modify it
func (c *Catalog) Index() Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Filtered returns the endpoints matching the active criteria
func (c *Catalog) Filtered() []types.EndpointDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.EndpointDescriptor, len(c.filtered))
	copy(out, c.filtered)
	return out
}

// All returns the unfiltered collection
func (c *Catalog) All() []types.EndpointDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.EndpointDescriptor, len(c.all))
	copy(out, c.all)
	return out
}

func (c *Catalog) GroupCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index)
}

func (c *Catalog) TotalFilteredCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.filtered)
}

// Owners lists owners in index order
func (c *Catalog) Owners() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	owners := make([]string, len(c.index))
	for i, g := range c.index {
		owners[i] = g.Owner
	}
	return owners
}

// FindOwner fuzzy-matches query against the owners in the index and
// returns the group position of the best match
func (c *Catalog) FindOwner(query string) (int, bool) {
	if strings.TrimSpace(query) == "" {
		return 0, false
	}
	matches := fuzzy.Find(query, c.Owners())
	if len(matches) == 0 {
		return 0, false
	}
	return matches[0].Index, true
}
