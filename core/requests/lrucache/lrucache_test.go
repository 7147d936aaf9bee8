// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package lrucache

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, -1} {
		if _, err := New(size, time.Minute, false); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%d) error = %v, want ErrInvalidSize", size, err)
		}
	}

	c, err := New(3, time.Minute, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	for _, compress := range []bool{false, true} {
		t.Run("compress="+strconv.FormatBool(compress), func(t *testing.T) {
			t.Parallel()

			c, err := New(2, 0, compress)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Highly compressible so the zstd path is taken.
			value := []byte(strings.Repeat("detection ", 200))
			c.Set("/dataset/list", value)

			got, ok := c.Get("/dataset/list")
			if !ok {
				t.Fatal("expected hit")
			}

			if !bytes.Equal(got, value) {
				t.Errorf("value mismatch after round trip")
			}

			// Mutating the returned slice must not affect the cache.
			got[0] = 'X'

			again, _ := c.Get("/dataset/list")
			if again[0] != 'd' {
				t.Errorf("cached value was mutated through returned slice")
			}
		})
	}
}

func TestEviction(t *testing.T) {
	t.Parallel()

	c, _ := New(2, 0, false)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	// Touch a so b becomes the oldest.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be present")
	}

	if evicted := c.Set("c", []byte("3")); !evicted {
		t.Error("expected an eviction")
	}

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}

	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected %s to be present", key)
		}
	}
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	c, _ := New(4, time.Minute, false)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("/detection/weights", []byte(`{"weights":[]}`))

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("/detection/weights"); !ok {
		t.Fatal("expected entry before ttl elapsed")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("/detection/weights"); ok {
		t.Fatal("expected entry to expire")
	}

	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped, len = %d", c.Len())
	}
}

func TestRemoveFunc(t *testing.T) {
	t.Parallel()

	c, _ := New(10, 0, false)

	for _, key := range []string{"/dataset/list", "/dataset/coco", "/detection/classes"} {
		c.Set(key, []byte(key))
	}

	removed := c.RemoveFunc(func(key string) bool { return strings.HasPrefix(key, "/dataset/") })
	if len(removed) != 2 {
		t.Fatalf("removed %v, want two dataset keys", removed)
	}

	if _, ok := c.Get("/detection/classes"); !ok {
		t.Error("unrelated key was removed")
	}

	if !c.Remove("/detection/classes") {
		t.Error("Remove should report presence")
	}

	if c.Remove("/detection/classes") {
		t.Error("Remove should report absence on second call")
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	c, _ := New(16, time.Minute, true)

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			for j := range 200 {
				key := strconv.Itoa((id + j) % 32)
				c.Set(key, []byte(strings.Repeat(key, 64)))
				c.Get(key)
			}
		}(i)
	}

	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("cache exceeded capacity: %d", c.Len())
	}
}
