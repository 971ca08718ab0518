package state

import "github.com/ardanlabs/powchain/foundation/blockchain/database"

// SubmitTransaction adds the transaction to the mempool. It returns the index
// of the block the transaction would land in if a block was mined right now.
func (s *State) SubmitTransaction(tx database.Tx) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.mempool.Add(tx)
	next := uint64(s.db.Length()) + 1

	s.evHandler("state: SubmitTransaction: tx[%s]: mempool[%d]: blk[%d]", tx, n, next)

	return next
}
