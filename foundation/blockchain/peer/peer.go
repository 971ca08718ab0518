// Package peer maintains the peer related information such as the set
// of know peers and the chain they report.
package peer

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Peer represents information about a Node in the network.
type Peer struct {
	Host string `json:"host"`
}

// New contructs a new info value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Parse extracts the authority (host:port) from the address. A scheme and
// path are ignored and an address without a scheme is accepted.
func Parse(address string) (Peer, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Peer{}, errors.New("empty peer address")
	}

	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	u, err := url.Parse(address)
	if err != nil {
		return Peer{}, fmt.Errorf("parsing peer address: %w", err)
	}

	if u.Host == "" {
		return Peer{}, fmt.Errorf("peer address %q has no host", address)
	}

	return New(u.Host), nil
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the fmt.Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// ChainStatus represents the chain a peer reports at /chain.
type ChainStatus struct {
	Chain  []database.Block `json:"chain"`
	Length int              `json:"length"`
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new node to the set. It returns false if the node was
// already known.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer]
	if !exists {
		ps.set[peer] = struct{}{}
		return true
	}

	return false
}

// Copy returns a list of the known peers sorted by host, leaving out the
// specified host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Host < peers[j].Host
	})

	return peers
}
