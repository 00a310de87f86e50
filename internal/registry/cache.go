package registry

import "sync"

type cacheKey struct {
	path       string
	generation uint64
}

// Cache holds loaded instances for the current generation only.
type Cache[T any] struct {
	mu         sync.Mutex
	generation uint64
	items      map[cacheKey]T
}

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{items: map[cacheKey]T{}}
}

func (c *Cache[T]) Get(path string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[cacheKey{path, c.generation}]
	return item, ok
}

func (c *Cache[T]) Put(path string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cacheKey{path, c.generation}] = item
}

// Bump starts a new generation and drops every older instance.
func (c *Cache[T]) Bump() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.items = map[cacheKey]T{}
	return c.generation
}

func (c *Cache[T]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
