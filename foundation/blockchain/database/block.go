package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/pow"
)

// GenesisProof is the proof carried by the genesis block.
const GenesisProof = 100

// ErrEmptyChain is returned when a chain with no blocks is presented.
var ErrEmptyChain = errors.New("chain has no blocks")

// =============================================================================

// Block represents a group of transactions batched together. Fields are
// declared in key order so the JSON form matches the hashed form.
type Block struct {
	Index        uint64   `json:"index"`         // Position of the block in the chain, starting at 1.
	PreviousHash PrevHash `json:"previous_hash"` // Hash of the previous block in the chain.
	Proof        uint64   `json:"proof"`         // Value that solves the POW puzzle against the previous proof.
	Timestamp    float64  `json:"timestamp"`     // Unix time in seconds the block was forged.
	Transactions []Tx     `json:"transactions"`  // Transactions captured when the block was forged.
}

// NewGenesisBlock constructs the first block of a chain.
func NewGenesisBlock(now time.Time) Block {
	return Block{
		Index:        1,
		PreviousHash: GenesisPreviousHash,
		Proof:        GenesisProof,
		Timestamp:    toTimestamp(now),
		Transactions: []Tx{},
	}
}

// Hash returns the unique hash for the Block.
func (b Block) Hash() string {
	return digest.Hash(b)
}

// CanonicalFields implements the digest.Canonical interface.
func (b Block) CanonicalFields() []digest.Field {
	trans := make([]digest.Canonical, len(b.Transactions))
	for i, tx := range b.Transactions {
		trans[i] = tx
	}

	return []digest.Field{
		{Key: "index", Value: b.Index},
		{Key: "previous_hash", Value: b.PreviousHash.canonical()},
		{Key: "proof", Value: b.Proof},
		{Key: "timestamp", Value: b.Timestamp},
		{Key: "transactions", Value: trans},
	}
}

// ValidateBlock takes a block and validates it follows the previous block.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Index)

	if hash := previousBlock.Hash(); !b.PreviousHash.Matches(hash) {
		return fmt.Errorf("block %d: parent block hash doesn't match, got %s, exp %s", b.Index, b.PreviousHash, hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: proof solves the puzzle", b.Index)

	if !pow.Validate(previousBlock.Proof, b.Proof) {
		return fmt.Errorf("block %d: proof %d doesn't solve the puzzle for parent proof %d", b.Index, b.Proof, previousBlock.Proof)
	}

	return nil
}

// =============================================================================

// ValidateChain walks the chain checking every block against its parent. The
// first block is trusted as the genesis block.
func ValidateChain(chain []Block, evHandler func(v string, args ...any)) error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}

	for i := 1; i < len(chain); i++ {
		if err := chain[i].ValidateBlock(chain[i-1], evHandler); err != nil {
			return err
		}
	}

	return nil
}

// toTimestamp converts the time to Unix seconds with a fractional part.
func toTimestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
