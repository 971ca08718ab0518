package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// RetrieveHost returns the address this node is reachable at by its peers.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveNodeID returns the identity this node is paid to when mining.
func (s *State) RetrieveNodeID() string {
	return s.nodeID
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveChain returns a copy of the full chain.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Copy()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveAllPeers retrieves a copy of every registered peer, including
// this node's own host if it was registered.
func (s *State) RetrieveAllPeers() []peer.Peer {
	return s.knownPeers.Copy("")
}

// AddKnownPeer provides the ability to add a new peer. It returns false
// if the peer was already known.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	added := s.knownPeers.Add(pr)
	if added {
		s.evHandler("state: AddKnownPeer: peer[%s]", pr)
	}

	return added
}
