// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"bytes"
	"encoding/gob"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/detectfe/detectfe/core/requests/lrucache"
)

// excludedCachePaths lists backend paths whose responses change while a page is open.
var excludedCachePaths = []string{
	"/training/status/",
	"/training/output/",
	"/training/list",
	"/health",
}

// cachedResponse is the gob-encoded value stored in the LRU.
type cachedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// cacheKey is the backend path plus its encoded query.
// Keys are plain paths so prefix invalidation can match them directly.
func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}

	return path + "?" + query.Encode()
}

func isCacheable(path string) bool {
	for _, excluded := range excludedCachePaths {
		if strings.HasPrefix(path, excluded) {
			return false
		}
	}

	return true
}

func loadCached(cache *lrucache.Cache, key string) (*Response, bool) {
	stored, ok := cache.Get(key)
	if !ok {
		return nil, false
	}

	var item cachedResponse
	if err := gob.NewDecoder(bytes.NewReader(stored)).Decode(&item); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to decode cached response; removing")
		cache.Remove(key)

		return nil, false
	}

	return &Response{
		StatusCode: item.StatusCode,
		Header:     item.Header,
		Body:       item.Body,
		Cached:     true,
	}, true
}

func storeCached(cache *lrucache.Cache, key string, resp *Response) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cachedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       resp.Body,
	}); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to serialize response for cache")

		return
	}

	cache.Set(key, buf.Bytes())
}

// InvalidatePrefixes removes every cached response whose path starts with one of prefixes.
// It returns the removed keys. It is a no-op when caching is disabled.
func (c *Client) InvalidatePrefixes(prefixes ...string) []string {
	if c.cache == nil || len(prefixes) == 0 {
		return nil
	}

	removed := c.cache.RemoveFunc(func(key string) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				return true
			}
		}

		return false
	})

	if len(removed) > 0 {
		log.Debug().
			Int("count", len(removed)).
			Strs("keys", removed).
			Msg("Invalidated cached responses")
	}

	return removed
}
