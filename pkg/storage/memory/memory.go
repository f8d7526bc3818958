// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/leseb/tabconv/pkg/storage"
)

func init() {
	storage.Providers.Register("memory", func(_ context.Context, params map[string]string) (storage.Store, error) {
		maxEntries := 0
		if v := params["max_entries"]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("memory journal: invalid max_entries %q: %w", v, err)
			}
			maxEntries = n
		}
		return New(maxEntries), nil
	})
}

// Store is an in-memory journal. When maxEntries is positive the oldest
// records are evicted once the limit is reached.
type Store struct {
	mu         sync.RWMutex
	maxEntries int
	records    map[string]*storage.Conversion
	order      []string // insertion order, oldest first
	onEvict    func(ctx context.Context, c *storage.Conversion)
}

// New creates a new in-memory journal. maxEntries <= 0 means unbounded.
func New(maxEntries int) *Store {
	return &Store{
		maxEntries: maxEntries,
		records:    make(map[string]*storage.Conversion),
	}
}

// OnEvict sets a function called with every record dropped by the
// max_entries bound. It runs after the store lock is released.
func (s *Store) OnEvict(fn func(ctx context.Context, c *storage.Conversion)) {
	s.mu.Lock()
	s.onEvict = fn
	s.mu.Unlock()
}

// SaveConversion stores a copy of c.
func (s *Store) SaveConversion(ctx context.Context, c *storage.Conversion) error {
	s.mu.Lock()
	cp := *c
	if _, exists := s.records[c.ID]; !exists {
		s.order = append(s.order, c.ID)
	}
	s.records[c.ID] = &cp

	var evicted []*storage.Conversion
	for s.maxEntries > 0 && len(s.order) > s.maxEntries {
		evicted = append(evicted, s.records[s.order[0]])
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}
	onEvict := s.onEvict
	s.mu.Unlock()

	if onEvict != nil {
		for _, e := range evicted {
			onEvict(ctx, e)
		}
	}
	return nil
}

// GetConversion retrieves a record by ID.
func (s *Store) GetConversion(_ context.Context, id string) (*storage.Conversion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

// ListConversions returns a page of records ordered by creation time.
func (s *Store) ListConversions(_ context.Context, after string, limit int, order string) ([]*storage.Conversion, bool, error) {
	limit, order = storage.NormalizePage(limit, order)

	s.mu.RLock()
	all := make([]*storage.Conversion, 0, len(s.records))
	for _, id := range s.order {
		cp := *s.records[id]
		all = append(all, &cp)
	}
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if order == "asc" {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if order == "asc" {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})

	if after != "" {
		idx := -1
		for i, c := range all {
			if c.ID == after {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false, fmt.Errorf("%w: %s", storage.ErrNotFound, after)
		}
		all = all[idx+1:]
	}

	hasMore := len(all) > limit
	if hasMore {
		all = all[:limit]
	}
	return all, hasMore, nil
}

// DeleteConversion removes a record.
func (s *Store) DeleteConversion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
