package build

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of distinct statements interned per pass.
const DefaultCacheSize = 4096

// StmtCache interns statement text. It is owned by a single construction pass
// and must not be shared between concurrent builds.
type StmtCache struct {
	lru    *lru.Cache[string, string]
	hits   int
	misses int
}

// NewStmtCache returns a cache holding at most size entries. A non-positive
// size selects [DefaultCacheSize].
func NewStmtCache(size int) *StmtCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &StmtCache{lru: c}
}

// Intern returns the canonical copy of text.
func (c *StmtCache) Intern(text string) string {
	if s, ok := c.lru.Get(text); ok {
		c.hits++
		return s
	}
	c.misses++
	c.lru.Add(text, text)
	return text
}

// Len returns the number of cached statements.
func (c *StmtCache) Len() int { return c.lru.Len() }

// Stats returns the hit and miss counts since creation.
func (c *StmtCache) Stats() (hits, misses int) { return c.hits, c.misses }
