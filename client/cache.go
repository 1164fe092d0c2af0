package client

import "sync"

// query cache keys
const (
	cacheKeyStudents   = "students"
	cacheKeyClasses    = "classes"
	cacheKeySections   = "sections"
	cacheKeyAllotments = "allotments"
)

// Cache memoizes query results by key until invalidated. An invalidated key
// is re-fetched on the next Get.
type Cache struct {
	mutex   sync.Mutex
	entries map[string]interface{}
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]interface{})}
}

// Get returns the cached value for key, fetching and storing it on a miss.
// A failed fetch leaves the key absent.
func (c *Cache) Get(key string, fetch func() (interface{}, error)) (interface{}, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return nil, err
	}
	c.entries[key] = v
	return v, nil
}

// Invalidate drops the given keys; with no keys it drops everything.
func (c *Cache) Invalidate(keys ...string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(keys) == 0 {
		c.entries = make(map[string]interface{})
		return
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
}
