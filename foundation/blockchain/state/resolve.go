package state

import (
	"context"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Resolve applies the longest chain rule. Every known peer is asked for its
// chain and the longest one that is strictly longer than ours and passes
// validation replaces our chain. Peers that can't be reached or return a
// malformed response are skipped. It returns true if our chain was replaced.
func (s *State) Resolve(ctx context.Context) bool {
	s.evHandler("state: Resolve: started")
	defer s.evHandler("state: Resolve: completed")

	bestLength := s.db.Length()
	var bestChain []database.Block

	for _, pr := range s.RetrieveKnownPeers() {
		status, err := s.fetcher.FetchChain(ctx, pr)
		if err != nil {
			s.evHandler("state: Resolve: FetchChain: %s: WARNING: %s", pr, err)
			continue
		}

		if status.Length <= bestLength {
			s.evHandler("state: Resolve: %s: length[%d]: not longer than [%d]", pr, status.Length, bestLength)
			continue
		}

		if err := database.ValidateChain(status.Chain, s.evHandler); err != nil {
			s.evHandler("state: Resolve: %s: length[%d]: rejected: %s", pr, status.Length, err)
			continue
		}

		s.evHandler("state: Resolve: %s: length[%d]: new best chain", pr, status.Length)

		bestLength = status.Length
		bestChain = status.Chain
	}

	if bestChain == nil {
		s.evHandler("state: Resolve: our chain is authoritative")
		return false
	}

	return s.replaceChain(bestChain)
}

// =============================================================================

// replaceChain swaps our chain for the specified chain if it is still longer
// than ours. Blocks may have been mined while the peers were being asked.
func (s *State) replaceChain(chain []database.Block) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(chain) <= s.db.Length() {
		s.evHandler("state: replaceChain: WARNING: local chain grew to [%d] during resolve", s.db.Length())
		return false
	}

	s.db.Replace(chain)

	s.evHandler("state: replaceChain: chain replaced: length[%d]: latest-blk[%s]", len(chain), chain[len(chain)-1].Hash())

	return true
}
