package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownModule = errors.New("unknown app module")

// Factory builds a fresh app instance.
type Factory[T any] func() T

// Catalog maps module paths to factories. Apps register explicitly.
type Catalog[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

func NewCatalog[T any]() *Catalog[T] {
	return &Catalog[T]{factories: map[string]Factory[T]{}}
}

// Register binds path to factory, replacing any earlier binding.
func (c *Catalog[T]) Register(path string, factory Factory[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[path] = factory
}

func (c *Catalog[T]) Has(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.factories[path]
	return ok
}

// Paths lists registered module paths in order.
func (c *Catalog[T]) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.factories))
	for p := range c.factories {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// New runs the factory for path. A panicking factory is reported as an
// error.
func (c *Catalog[T]) New(path string) (app T, err error) {
	c.mu.RLock()
	factory, ok := c.factories[path]
	c.mu.RUnlock()
	if !ok {
		return app, fmt.Errorf("%s: %w", path, ErrUnknownModule)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: factory panic: %v", path, r)
		}
	}()
	return factory(), nil
}
