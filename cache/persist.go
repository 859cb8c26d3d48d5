package cache

import (
	"container/list"

	"github.com/tabml/tabprep/core/model"
	"github.com/tabml/tabprep/design"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// snapshot is the gob spill format: entries in most-recent-first order.
type snapshot struct {
	Entries []snapshotEntry
}

type snapshotEntry struct {
	Key    string
	Matrix *design.Matrix
}

// Save spills the cache contents to path as gob. Counters are not persisted.
func (c *MatrixCache) Save(path string) error {
	c.mu.Lock()
	snap := snapshot{Entries: make([]snapshotEntry, 0, c.order.Len())}
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(*cacheEntry)
		snap.Entries = append(snap.Entries, snapshotEntry{Key: e.key, Matrix: e.matrix})
	}
	c.mu.Unlock()

	if err := model.SaveModel(&snap, path); err != nil {
		return tabErrors.Wrap(err, "cache.Save")
	}
	return nil
}

// Load replaces the cache contents with a spill written by Save, preserving
// recency order. Entries beyond the cache capacity are discarded oldest
// first. Counters reset.
func (c *MatrixCache) Load(path string) error {
	var snap snapshot
	if err := model.LoadModel(&snap, path); err != nil {
		return tabErrors.Wrap(err, "cache.Load")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
	c.hits, c.misses, c.evictions = 0, 0, 0

	limit := len(snap.Entries)
	if limit > c.capacity {
		limit = c.capacity
	}
	// walk newest to oldest in reverse so PushFront restores the order
	for i := limit - 1; i >= 0; i-- {
		e := snap.Entries[i]
		c.entries[e.Key] = c.order.PushFront(&cacheEntry{key: e.Key, matrix: e.Matrix})
	}
	return nil
}
