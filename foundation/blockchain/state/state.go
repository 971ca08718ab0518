// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/mempool"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// defaultPeerTimeout is used to fetch a peer's chain when no fetcher
// is configured.
const defaultPeerTimeout = 5 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the blockchain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining off the request goroutine.
type Worker interface {
	Shutdown()
	Mine(ctx context.Context) (database.Block, error)
}

// ChainFetcher interface represents the behavior required to retrieve the
// chain a peer is currently holding.
type ChainFetcher interface {
	FetchChain(ctx context.Context, pr peer.Peer) (peer.ChainStatus, error)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	NodeID     string
	Host       string
	KnownPeers *peer.PeerSet
	Fetcher    ChainFetcher
	EvHandler  EventHandler
}

// State manages the blockchain. The chain and the mempool are only changed
// while holding mu so a block is forged from exactly the transactions that
// were drained for it.
type State struct {
	nodeID    string
	host      string
	evHandler EventHandler
	fetcher   ChainFetcher
	mu        sync.Mutex

	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool
	db         *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {
	if cfg.NodeID == "" {
		return nil, errors.New("node id is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(defaultPeerTimeout)
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		nodeID:    cfg.NodeID,
		host:      cfg.Host,
		evHandler: ev,
		fetcher:   fetcher,

		knownPeers: knownPeers,
		mempool:    mempool.New(),
		db:         database.New(),
	}

	ev("state: New: genesis: blk[%s]", state.db.LatestBlock().Hash())

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: started")
	defer s.evHandler("state: Shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
