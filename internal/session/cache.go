package session

import (
	"sync"
	"sync/atomic"

	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/domain/eda"

	"golang.org/x/sync/singleflight"
)

// MatrixCache memoizes correlation matrices per (table fingerprint, feature
// list). Concurrent misses on the same key share one computation.
type MatrixCache struct {
	mu      sync.RWMutex
	entries map[string]*eda.CorrelationMatrix
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMatrixCache creates an empty cache
func NewMatrixCache() *MatrixCache {
	return &MatrixCache{entries: make(map[string]*eda.CorrelationMatrix)}
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

func matrixKey(table *dataset.Table, features []string) string {
	return core.JoinKey(table.Fingerprint(), core.ComputeKeyHash(features).String())
}

// Get returns the cached matrix for the key or computes it once
func (c *MatrixCache) Get(table *dataset.Table, features []string, compute func() (*eda.CorrelationMatrix, error)) (*eda.CorrelationMatrix, error) {
	key := matrixKey(table, features)

	c.mu.RLock()
	m, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return m, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		m, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return m, nil
		}

		c.misses.Add(1)
		m, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*eda.CorrelationMatrix), nil
}

// Invalidate drops every entry
func (c *MatrixCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]*eda.CorrelationMatrix)
	c.mu.Unlock()
}

// Stats returns a snapshot of the counters
func (c *MatrixCache) Stats() CacheStats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return CacheStats{Entries: n, Hits: c.hits.Load(), Misses: c.misses.Load()}
}
