/* Copyright © INFINI Ltd. All rights reserved.
 * web: https://infinilabs.com
 * mail: hello#infini.ltd */

package util

import (
	"sync"
	"time"
)

type cacheItem struct {
	value     interface{}
	expiredAt time.Time
}

// Cache is a tiny expiring map, entries expire a fixed duration after they
// were added, lookups never refresh the deadline
type Cache struct {
	l        sync.Mutex
	ttl      time.Duration
	maxItems int
	data     map[string]cacheItem
}

func NewCacheWithExpireOnAdd(ttl time.Duration, maxItems int) *Cache {
	return &Cache{
		ttl:      ttl,
		maxItems: maxItems,
		data:     map[string]cacheItem{},
	}
}

// Put saves the value and returns the previous unexpired value for the key,
// nil means the key was absent or already expired
func (c *Cache) Put(key string, value interface{}) interface{} {
	c.l.Lock()
	defer c.l.Unlock()

	now := time.Now()
	var previous interface{}
	if v, ok := c.data[key]; ok && now.Before(v.expiredAt) {
		previous = v.value
	}

	if len(c.data) >= c.maxItems {
		for k, v := range c.data {
			if now.After(v.expiredAt) {
				delete(c.data, k)
			}
		}
	}

	c.data[key] = cacheItem{value: value, expiredAt: now.Add(c.ttl)}
	return previous
}

func (c *Cache) Get(key string) interface{} {
	c.l.Lock()
	defer c.l.Unlock()

	v, ok := c.data[key]
	if !ok {
		return nil
	}
	if time.Now().After(v.expiredAt) {
		delete(c.data, key)
		return nil
	}
	return v.value
}
