package facet

import (
	"sync"
)

// handlerCache memoizes decorated handlers per method identity. Lookups take
// a read lock; a miss computes outside any lock and the first writer wins.
// Concurrent misses on one method may each compute, but every caller gets
// the stored handler.
type handlerCache struct {
	items map[methodKey]Handler
	mutex sync.RWMutex
}

func newHandlerCache() *handlerCache {
	return &handlerCache{
		items: make(map[methodKey]Handler),
	}
}

// Get retrieves a cached handler
func (c *handlerCache) Get(key methodKey) (Handler, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	h, exists := c.items[key]
	return h, exists
}

// GetOrCompute returns the cached handler for key, computing and storing it
// on a miss. Failures are not cached.
func (c *handlerCache) GetOrCompute(key methodKey, compute func() (Handler, error)) (Handler, error) {
	if h, ok := c.Get(key); ok {
		return h, nil
	}

	h, err := compute()
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, ok := c.items[key]; ok {
		return existing, nil
	}
	c.items[key] = h
	return h, nil
}

// Size returns the number of cached handlers
func (c *handlerCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}
