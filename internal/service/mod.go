package service

//
// mod.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import "sync"

// DynamicCache holds values and create it when no exist. Safe for concurrent
// use.
type DynamicCache[T comparable, V any] struct {
	mu      sync.Mutex
	items   map[T]V
	creator func(key T) (V, error)
}

func NewDynamicCache[T comparable, V any](creator func(key T) (V, error)) *DynamicCache[T, V] {
	return &DynamicCache[T, V]{
		items:   make(map[T]V),
		creator: creator,
	}
}

// GetOrCreate get value from cache or create it when no exists.
func (c *DynamicCache[T, V]) GetOrCreate(key T) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value, ok := c.items[key]; ok {
		return value, nil
	}

	value, err := c.creator(key)
	if err != nil {
		return *new(V), err
	}

	c.items[key] = value

	return value, nil
}

// Remove delete value from cache and return it when present.
func (c *DynamicCache[T, V]) Remove(key T) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.items[key]
	if ok {
		delete(c.items, key)
	}

	return value, ok
}

// Drain remove and return all cached values.
func (c *DynamicCache[T, V]) Drain() []V {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := make([]V, 0, len(c.items))
	for _, v := range c.items {
		values = append(values, v)
	}

	clear(c.items)

	return values
}
