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

// Package renderercache provides the fingerprint-keyed artifact LRU the
// positioner consults before invoking the host's Renderer (spec §4.9).
package renderercache

import "github.com/loomtable/vgrid/internal/lru"

// Fingerprint is a content-derived cache key: equal fingerprints must be
// interchangeable artifacts (RendererKind, column width, a value digest,
// and any state flags affecting rendering).
type Fingerprint struct {
	RendererKind string
	ColumnWidth  float64
	ValueDigest  string
	StateFlags   uint32
}

// Cache is an LRU from Fingerprint to an opaque rendered Artifact. The
// eviction/stat mechanics are those of internal/lru.Cache, keyed here by
// Fingerprint.
type Cache struct {
	inner *lru.Cache[Fingerprint, any]
}

// New creates a Cache with the given capacity (spec default ~1000).
func New(capacity int) (*Cache, error) {
	inner, err := lru.New[Fingerprint, any](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// Lookup returns the cached artifact for fp, if present.
func (c *Cache) Lookup(fp Fingerprint) (any, bool) {
	return c.inner.Get(fp)
}

// Store inserts or replaces the artifact for fp.
func (c *Cache) Store(fp Fingerprint, artifact any) {
	c.inner.Put(fp, artifact)
}

// Invalidate evicts fp's artifact, e.g. when its underlying value mutates.
func (c *Cache) Invalidate(fp Fingerprint) {
	c.inner.Remove(fp)
}

// Stats returns cumulative hit/miss/eviction counters for observability.
func (c *Cache) Stats() lru.Stats {
	return c.inner.Stats()
}
