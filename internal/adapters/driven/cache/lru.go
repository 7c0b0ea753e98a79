// Package cache keeps recently loaded mapping trees in memory.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/mapxml/internal/core/domain"
	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
)

// Ensure TreeCache implements the interface.
var _ driven.TreeCache = (*TreeCache)(nil)

// TreeCache is a fixed-size LRU of mapping trees keyed by fingerprint.
type TreeCache struct {
	trees *lru.Cache[uint64, *domain.MappingTree]
}

// NewTreeCache creates a cache holding at most size trees.
// A size below 1 is treated as 1.
func NewTreeCache(size int) (*TreeCache, error) {
	if size < 1 {
		size = 1
	}
	trees, err := lru.New[uint64, *domain.MappingTree](size)
	if err != nil {
		return nil, err
	}
	return &TreeCache{trees: trees}, nil
}

// Get returns the tree for fingerprint and marks it recently used.
func (c *TreeCache) Get(fingerprint uint64) (*domain.MappingTree, bool) {
	return c.trees.Get(fingerprint)
}

// Add stores tree, evicting the least recently used entry when full.
func (c *TreeCache) Add(fingerprint uint64, tree *domain.MappingTree) {
	c.trees.Add(fingerprint, tree)
}

// Len returns the number of cached trees.
func (c *TreeCache) Len() int {
	return c.trees.Len()
}
