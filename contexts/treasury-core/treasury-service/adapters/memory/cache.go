package memory

import (
	"context"
	"sync"
	"time"

	"seneschal/contexts/treasury-core/treasury-service/ports"
)

// Cache is the singleton treasury balance cache: one writer per refresh,
// any number of readers.
type Cache struct {
	mu       sync.RWMutex
	balances ports.TreasuryBalances
	set      bool
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) Put(_ context.Context, balances ports.TreasuryBalances) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances = balances
	c.set = true
	return nil
}

func (c *Cache) Get(_ context.Context) (ports.TreasuryBalances, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balances, c.set, nil
}

func (c *Cache) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.BalanceCache = (*Cache)(nil)
var _ ports.Clock = (*Cache)(nil)
