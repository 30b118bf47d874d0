package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the expiry applied by SetDefault.
const DefaultTTL = 5 * time.Minute

type item struct {
	value      interface{}
	expiration int64
}

// Cache is a TTL map used by the RPC layer to avoid re-encoding hot
// responses (recently served headers, difficulty snapshots). Expired items
// are swept by a background goroutine once a minute.
type Cache struct {
	items map[string]*item
	mutex sync.RWMutex
}

func NewCache() *Cache {
	c := &Cache{
		items: make(map[string]*item),
	}
	go c.cleanup()
	return c
}

// Set stores value under key. A non-positive duration means no expiry.
func (c *Cache) Set(key string, value interface{}, duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var expiration int64
	if duration > 0 {
		expiration = time.Now().Add(duration).UnixNano()
	}
	c.items[key] = &item{value: value, expiration: expiration}
}

// SetDefault stores value under key with DefaultTTL.
func (c *Cache) SetDefault(key string, value interface{}) {
	c.Set(key, value, DefaultTTL)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mutex.RLock()
	it, exists := c.items[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}
	if it.expiration > 0 && time.Now().UnixNano() > it.expiration {
		c.mutex.Lock()
		if current, still := c.items[key]; still && current.expiration == it.expiration {
			delete(c.items, key)
		}
		c.mutex.Unlock()
		return nil, false
	}
	return it.value, true
}

func (c *Cache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
}

func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make(map[string]*item)
}

func (c *Cache) Count() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.items)
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now().UnixNano()
		for key, it := range c.items {
			if it.expiration > 0 && now > it.expiration {
				delete(c.items, key)
			}
		}
		c.mutex.Unlock()
	}
}
