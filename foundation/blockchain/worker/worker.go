// Package worker runs mining off the request goroutines for the blockchain.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
)

// ErrShutdown is returned when a mining request is made after the worker
// was told to shut down.
var ErrShutdown = errors.New("worker is shutting down")

// =============================================================================

// miningResult is what the mining G hands back to the caller.
type miningResult struct {
	block database.Block
	err   error
}

// miningRequest carries a caller's context and where to send the result.
type miningRequest struct {
	ctx    context.Context
	result chan miningResult
}

// Worker manages the POW workflows for the blockchain.
type Worker struct {
	state       *state.State
	wg          sync.WaitGroup
	shut        chan struct{}
	shutOnce    sync.Once
	startMining chan miningRequest
	evHandler   state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) *Worker {
	w := Worker{
		state:       st,
		shut:        make(chan struct{}),
		startMining: make(chan miningRequest),
		evHandler:   evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.miningOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work. Any mining operation in
// flight is cancelled. It is safe to call more than once.
func (w *Worker) Shutdown() {
	w.shutOnce.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		w.evHandler("worker: shutdown: terminate goroutines")
		close(w.shut)
		w.wg.Wait()
	})
}

// Mine hands a mining request to the mining G and waits for the new block.
// Requests are processed one at a time in the order they are received.
func (w *Worker) Mine(ctx context.Context) (database.Block, error) {
	req := miningRequest{
		ctx:    ctx,
		result: make(chan miningResult, 1),
	}

	select {
	case w.startMining <- req:
		w.evHandler("worker: Mine: mining signaled")
	case <-ctx.Done():
		return database.Block{}, ctx.Err()
	case <-w.shut:
		return database.Block{}, ErrShutdown
	}

	// The mining G always answers, it's cancelled on shutdown.
	res := <-req.result

	return res.block, res.err
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
