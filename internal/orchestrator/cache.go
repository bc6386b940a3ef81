package orchestrator

import (
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ResultCache remembers completed agent results per (target, goal) pair so
// a repeated search can skip the automation run entirely. It is passed
// explicitly into the Orchestrator rather than living as package state:
// entries are LRU-evicted beyond the size bound and expire after the TTL.
//
// A nil *ResultCache is valid and never hits.
type ResultCache struct {
	lru *expirable.LRU[string, json.RawMessage]
}

// NewResultCache creates a cache holding up to size entries, each expiring
// ttl after insertion.
func NewResultCache(size int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		lru: expirable.NewLRU[string, json.RawMessage](size, nil, ttl),
	}
}

func cacheKey(target, goal string) string {
	return target + "\x00" + goal
}

// Get returns the cached result for the pair, if present and unexpired.
func (c *ResultCache) Get(target, goal string) (json.RawMessage, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(cacheKey(target, goal))
}

// Add stores a completed result. Empty results are not cached.
func (c *ResultCache) Add(target, goal string, result json.RawMessage) {
	if c == nil || len(result) == 0 {
		return
	}
	c.lru.Add(cacheKey(target, goal), result)
}

// Len returns the number of live entries.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
