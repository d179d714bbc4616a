// Package recency keeps cache keys in least-recently-acquired order.
package recency

import (
	"math"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Index orders keys by the time they were last touched.
// It never drops keys on its own; callers remove them explicitly.
// An Index is not safe for concurrent use.
type Index struct {
	lru *simplelru.LRU[string, struct{}]
}

// New creates an empty index.
func New() (*Index, error) {
	l, err := simplelru.NewLRU[string, struct{}](math.MaxInt, nil)
	if err != nil {
		return nil, err
	}
	return &Index{lru: l}, nil
}

// Touch marks key as the most recently used, inserting it if needed.
func (i *Index) Touch(key string) {
	i.lru.Add(key, struct{}{})
}

// Remove drops key from the index.
func (i *Index) Remove(key string) {
	i.lru.Remove(key)
}

// Keys returns all keys from least to most recently touched.
func (i *Index) Keys() []string {
	return i.lru.Keys()
}
