// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lru provides a capacity-bounded, hit/miss/eviction-counted cache
// on top of hashicorp/golang-lru, shared by the renderer cache and any
// other component that needs deterministic LRU eviction with stats.
package lru

import (
	"sync"

	hashicorlru "github.com/hashicorp/golang-lru/v2"

	"github.com/loomtable/vgrid/grid"
)

// Stats reports cumulative cache activity for observability.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Cache is a fixed-capacity, least-recently-used cache with deterministic
// eviction ordering and hit/miss/eviction counters. The eviction mechanics
// are delegated to hashicorp/golang-lru, which already implements the
// exact "evict least-recently-used on overflow, recency updated on Get and
// Put" contract; Cache adds the stats spec §4.2 requires on top.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	inner     *hashicorlru.Cache[K, V]
	hits      int64
	misses    int64
	evictions int64
}

// New creates a Cache with the given capacity. Returns grid.ErrConfig if
// capacity is zero or negative (spec: "Fails with
// CapacityZero if C = 0").
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, grid.ErrConfig
	}

	c := &Cache[K, V]{}
	inner, err := hashicorlru.NewWithEvict[K, V](capacity, func(K, V) {
		c.evictions++
	})
	if err != nil {
		return nil, err
	}
	c.inner = inner
	return c, nil
}

// Get returns the cached value for k, updating recency on hit.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.inner.Get(k)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Put inserts or updates k with v, evicting the least-recently-used entry
// if the cache is at capacity. The evict callback (and thus the eviction
// counter) runs synchronously before Put returns.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Add(k, v)
}

// Remove evicts k if present, without counting it as an LRU eviction.
func (c *Cache[K, V]) Remove(k K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := c.evictions
	c.inner.Remove(k) // runs the evict callback; undo its count
	c.evictions = before
}

// Purge clears the cache without adjusting hit/miss/eviction counters.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := c.evictions
	c.inner.Purge() // runs the evict callback per entry; undo its count
	c.evictions = before
}

// Len returns the current number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}

// Stats returns a snapshot of cumulative counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.inner.Len(),
	}
}
