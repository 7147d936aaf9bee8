// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lrucache provides a fixed-capacity least-recently-used cache of byte values with a
shared time-to-live. It is safe for concurrent use.

When created with compression enabled, values are stored zstd-compressed whenever that makes
them smaller and are transparently decompressed by [Cache.Get].
*/
package lrucache

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// Cache is a fixed-capacity, least-recently-used byte cache.
// The zero value is not ready for use; construct it with [New].
type Cache struct {
	size int
	ttl  time.Duration
	now  func() time.Time

	mu    sync.Mutex
	order *list.List // front is most recently used
	items map[string]*list.Element

	enc *zstd.Encoder // nil when compression is disabled
	dec *zstd.Decoder
}

type entry struct {
	key        string
	value      []byte
	compressed bool
	expiresAt  time.Time
}

// New creates a cache holding at most size entries, each valid for ttl.
// A ttl of zero keeps entries until they are evicted.
func New(size int, ttl time.Duration, compress bool) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	c := &Cache{
		size:  size,
		ttl:   ttl,
		now:   time.Now,
		order: list.New(),
		items: make(map[string]*list.Element, size),
	}

	if compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}

		c.enc, c.dec = enc, dec
	}

	return c, nil
}

// Set stores value under key and marks it most recently used.
// It reports whether an older entry had to be evicted to make room.
func (c *Cache) Set(key string, value []byte) bool {
	stored, compressed := c.pack(value)

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		ent.value, ent.compressed, ent.expiresAt = stored, compressed, expiresAt
		c.order.MoveToFront(el)

		return false
	}

	c.items[key] = c.order.PushFront(&entry{
		key:        key,
		value:      stored,
		compressed: compressed,
		expiresAt:  expiresAt,
	})

	if c.order.Len() <= c.size {
		return false
	}

	c.removeElement(c.order.Back())

	return true
}

// Get returns a copy of the value stored under key.
// Expired entries are dropped and reported as missing.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()

	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()

		return nil, false
	}

	ent := el.Value.(*entry)
	if !ent.expiresAt.IsZero() && !c.now().Before(ent.expiresAt) {
		c.removeElement(el)
		c.mu.Unlock()

		return nil, false
	}

	c.order.MoveToFront(el)
	stored, compressed := ent.value, ent.compressed

	c.mu.Unlock()

	return c.unpack(stored, compressed)
}

// Remove deletes key and reports whether it was present.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}

	return ok
}

// RemoveFunc deletes every entry whose key satisfies match and returns the removed keys.
func (c *Cache) RemoveFunc(match func(key string) bool) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []string

	for el := c.order.Front(); el != nil; {
		next := el.Next()

		if key := el.Value.(*entry).key; match(key) {
			c.removeElement(el)

			removed = append(removed, key)
		}

		el = next
	}

	return removed
}

// Len returns the number of entries, including expired ones not yet dropped.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}

// pack copies value, compressing it when enabled and worthwhile.
// Runs without the lock held; zstd.Encoder.EncodeAll is safe for concurrent use.
func (c *Cache) pack(value []byte) ([]byte, bool) {
	if c.enc != nil && len(value) > 0 {
		if packed := c.enc.EncodeAll(value, nil); len(packed) < len(value) {
			return packed, true
		}
	}

	return append([]byte(nil), value...), false
}

func (c *Cache) unpack(stored []byte, compressed bool) ([]byte, bool) {
	if !compressed {
		return append([]byte(nil), stored...), true
	}

	value, err := c.dec.DecodeAll(stored, nil)
	if err != nil {
		return nil, false
	}

	return value, true
}
