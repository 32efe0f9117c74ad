package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultSize = 256

// TTLs maps a category name to its entry lifetime. Categories not listed
// fall back to the default TTL given to New.
type TTLs map[string]time.Duration

// Cache is an explicit, injectable response cache: one expirable LRU bucket
// per configured category, each with its own TTL. Construct one per
// component under test instead of sharing module state.
type Cache struct {
	buckets map[string]*expirable.LRU[string, []byte]
	def     *expirable.LRU[string, []byte]
}

func New(ttls TTLs, defaultTTL time.Duration) *Cache {
	c := &Cache{
		buckets: make(map[string]*expirable.LRU[string, []byte], len(ttls)),
		def:     expirable.NewLRU[string, []byte](defaultSize, nil, defaultTTL),
	}
	for cat, ttl := range ttls {
		c.buckets[cat] = expirable.NewLRU[string, []byte](defaultSize, nil, ttl)
	}
	return c
}

func (c *Cache) bucket(category string) *expirable.LRU[string, []byte] {
	if b, ok := c.buckets[category]; ok {
		return b
	}
	return c.def
}

func (c *Cache) Get(category, key string) ([]byte, bool) {
	return c.bucket(category).Get(key)
}

func (c *Cache) Set(category, key string, val []byte) {
	c.bucket(category).Add(key, val)
}

func (c *Cache) Evict(category, key string) {
	c.bucket(category).Remove(key)
}

// Purge drops every entry in every bucket.
func (c *Cache) Purge() {
	for _, b := range c.buckets {
		b.Purge()
	}
	c.def.Purge()
}
