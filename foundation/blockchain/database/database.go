// Package database maintains the in memory chain of blocks for the node.
package database

import (
	"sync"
	"time"
)

// Database manages the ordered, hash linked chain of blocks. The chain always
// holds at least the genesis block.
type Database struct {
	mu    sync.RWMutex
	chain []Block
	now   func() time.Time
}

// New constructs a database holding only a genesis block.
func New() *Database {
	return NewWithClock(time.Now)
}

// NewWithClock constructs a database that uses the specified function for
// block timestamps.
func NewWithClock(now func() time.Time) *Database {
	db := Database{
		now: now,
	}
	db.chain = []Block{NewGenesisBlock(now())}

	return &db
}

// Forge constructs the next block from the proof and transactions and
// appends it to the chain. If previousHash is empty, the hash of the current
// latest block is used.
func (db *Database) Forge(proof uint64, previousHash string, trans []Tx) Block {
	db.mu.Lock()
	defer db.mu.Unlock()

	latest := db.chain[len(db.chain)-1]
	if previousHash == "" {
		previousHash = latest.Hash()
	}

	if trans == nil {
		trans = []Tx{}
	}

	block := Block{
		Index:        uint64(len(db.chain)) + 1,
		PreviousHash: LinkTo(previousHash),
		Proof:        proof,
		Timestamp:    toTimestamp(db.now()),
		Transactions: trans,
	}

	db.chain = append(db.chain, block)

	return block
}

// Replace swaps the current chain for the specified one. The chain is
// expected to be validated already.
func (db *Database) Replace(chain []Block) {
	if len(chain) == 0 {
		panic("database: replace with an empty chain")
	}

	cpy := make([]Block, len(chain))
	copy(cpy, chain)

	db.mu.Lock()
	defer db.mu.Unlock()

	db.chain = cpy
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.chain[len(db.chain)-1]
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.chain)
}

// Copy returns a copy of the chain.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	cpy := make([]Block, len(db.chain))
	copy(cpy, db.chain)

	return cpy
}
