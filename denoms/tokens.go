package denoms

import (
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
)

type TokenMetadata struct {
	Symbol   string
	Decimals int
	Name     string
}

// TokenCache is the session-scoped contract → metadata store. The first observation of a contract wins
// for the lifetime of the cache so every transaction of a session resolves a contract to the same symbol.
type TokenCache struct {
	store *cache.Cache

	mu    sync.Mutex
	order []string
}

func NewTokenCache() *TokenCache {
	return &TokenCache{store: cache.New(cache.NoExpiration, 0)}
}

func tokenKey(contract string) string {
	return strings.ToLower(strings.TrimSpace(contract))
}

func (c *TokenCache) Get(contract string) (TokenMetadata, bool) {
	if c == nil {
		return TokenMetadata{}, false
	}
	value, ok := c.store.Get(tokenKey(contract))
	if !ok {
		return TokenMetadata{}, false
	}
	return value.(TokenMetadata), true
}

// Remember stores md unless the contract was already seen, and returns the metadata now on record.
func (c *TokenCache) Remember(contract string, md TokenMetadata) TokenMetadata {
	key := tokenKey(contract)
	if c == nil || key == "" {
		return md
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Add(key, md, cache.NoExpiration); err != nil {
		existing, _ := c.store.Get(key)
		return existing.(TokenMetadata)
	}
	c.order = append(c.order, key)
	return md
}

// Keys lists cached contracts in population order.
func (c *TokenCache) Keys() []string {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

func (c *TokenCache) Len() int {
	if c == nil {
		return 0
	}
	return c.store.ItemCount()
}
