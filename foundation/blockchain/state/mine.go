package state

import (
	"context"
	"errors"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/pow"
)

// errChainMoved is returned by forgeBlock when the latest block changed while
// the proof was being solved.
var errChainMoved = errors.New("latest block changed while mining")

// =============================================================================

// MineNewBlock solves the POW puzzle against the latest block, pays this node
// the mining reward and forges the next block from the mempool. The call
// blocks until a proof is found or the context is cancelled. A cancelled
// operation leaves the chain and mempool untouched.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	for {
		latest := s.RetrieveLatestBlock()

		s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]", latest.Index)

		// Solving is done without holding the lock so transactions and peer
		// chains can still be accepted.
		proof, err := pow.Solve(ctx, latest.Proof, s.evHandler)
		if err != nil {
			return database.Block{}, err
		}

		block, err := s.forgeBlock(ctx, latest, proof)
		if err != nil {
			if errors.Is(err, errChainMoved) {
				s.evHandler("state: MineNewBlock: MINING: WARNING: %s: solving again", err)
				continue
			}
			return database.Block{}, err
		}

		s.evHandler("state: MineNewBlock: MINING: forged: blk[%d]: txs[%d]", block.Index, len(block.Transactions))

		return block, nil
	}
}

// =============================================================================

// forgeBlock adds the mining reward to the mempool and forges the next block
// with the proof. The proof is only good if parent is still the latest block.
func (s *State) forgeBlock(ctx context.Context, parent database.Block, proof uint64) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.db.LatestBlock()
	if latest.Index != parent.Index || latest.Hash() != parent.Hash() {
		return database.Block{}, errChainMoved
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: forgeBlock: reward: node[%s]", s.nodeID)
	s.mempool.Add(database.NewRewardTx(s.nodeID))

	trans := s.mempool.Drain()
	block := s.db.Forge(proof, "", trans)

	return block, nil
}
