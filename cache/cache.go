// Package cache memoizes built design matrices. Entries are keyed by the
// source frame fingerprint together with the formula, encoding strategy, and
// NA mode that shaped the build, so any change to the data or the recipe
// misses cleanly. Eviction is least-recently-used within a fixed capacity.
package cache

import (
	"container/list"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/tabml/tabprep/dataset"
	"github.com/tabml/tabprep/design"
	"github.com/tabml/tabprep/encoding"
	"github.com/tabml/tabprep/formula"
	tabErrors "github.com/tabml/tabprep/pkg/errors"
)

// Key computes the cache key for a prospective build from the four inputs
// that fully determine a design matrix.
func Key(sourceFingerprint, formulaStr, strategy string, mode encoding.NAMode) string {
	h := sha256.New()
	for _, part := range []string{sourceFingerprint, formulaStr, strategy, mode.String()} {
		io.WriteString(h, part)
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// KeyFor returns the cache key a built matrix stores under.
func KeyFor(m *design.Matrix) string {
	return Key(m.SourceFingerprint, m.Formula, m.Encoding, m.NAMode)
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
	Capacity  int
}

// HitRate returns hits over total lookups, or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// String renders the counters on one line.
func (s Stats) String() string {
	return fmt.Sprintf("cache.Stats(hits=%d, misses=%d, evictions=%d, size=%d/%d)",
		s.Hits, s.Misses, s.Evictions, s.Size, s.Capacity)
}

type cacheEntry struct {
	key    string
	matrix *design.Matrix
}

// MatrixCache is a concurrency-safe LRU cache of design matrices. Cached
// matrices are shared by pointer; callers must treat them as read-only.
type MatrixCache struct {
	mu        sync.Mutex
	capacity  int
	order     *list.List
	entries   map[string]*list.Element
	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding at most capacity matrices.
func New(capacity int) (*MatrixCache, error) {
	if capacity < 1 {
		return nil, tabErrors.NewValidationError("capacity", "must be at least 1", capacity)
	}
	return &MatrixCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}, nil
}

// Get returns the matrix stored under key and marks it most recently used.
func (c *MatrixCache) Get(key string) (*design.Matrix, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).matrix, true
}

// Put stores a matrix under key, evicting the least recently used entry when
// the cache is full. Storing an existing key replaces its matrix.
func (c *MatrixCache) Put(key string, m *design.Matrix) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(key, m)
}

func (c *MatrixCache) insert(key string, m *design.Matrix) {
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).matrix = m
		c.order.MoveToFront(elem)
		return
	}
	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
			c.evictions++
		}
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, matrix: m})
}

// GetOrBuild returns the cached matrix for (frame, f, b) when present, and
// otherwise builds it through b and stores the result. The second return
// reports whether the lookup hit.
func (c *MatrixCache) GetOrBuild(frame *dataset.Frame, f *formula.Formula, b *design.Builder) (*design.Matrix, bool, error) {
	key := Key(frame.Fingerprint(), f.String(), b.StrategyName(), b.NAMode())
	if m, ok := c.Get(key); ok {
		return m, true, nil
	}
	m, err := b.Build(frame, f)
	if err != nil {
		return nil, false, err
	}
	c.Put(key, m)
	return m, false, nil
}

// Len returns the number of cached matrices.
func (c *MatrixCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns a snapshot of the counters.
func (c *MatrixCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.order.Len(),
		Capacity:  c.capacity,
	}
}

// Clear drops every entry and resets the counters.
func (c *MatrixCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
	c.hits, c.misses, c.evictions = 0, 0, 0
}
