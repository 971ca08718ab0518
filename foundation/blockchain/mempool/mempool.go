// Package mempool maintains the transactions waiting to be mined into the
// next block.
package mempool

import (
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Mempool represents an ordered cache of transactions. Transactions leave
// the pool in the order they arrived.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Tx
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the tail of the pool and returns the number
// of transactions now in the pool.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns a copy of the transactions in insertion order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// Drain returns all the transactions in insertion order and leaves the
// pool empty.
func (mp *Mempool) Drain() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = nil

	if trans == nil {
		trans = []database.Tx{}
	}

	return trans
}
