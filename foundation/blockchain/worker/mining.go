package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case req := <-w.startMining:
			if w.isShutdown() {
				req.result <- miningResult{err: ErrShutdown}
				continue
			}
			block, err := w.runMiningOperation(req.ctx)
			req.result <- miningResult{block: block, err: err}

		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation mines the next block. The operation is cancelled if the
// caller goes away or the worker is shut down.
func (w *Worker) runMiningOperation(parent context.Context) (database.Block, error) {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case <-w.shut:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: shutdown")
		case <-ctx.Done():
		}
	}()

	var block database.Block
	var err error

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		t := time.Now()
		block, err = w.state.MineNewBlock(ctx)
		duration := time.Since(t)

		w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", duration)

		if err != nil {
			switch {
			case ctx.Err() != nil:
				w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
			}
			return
		}

		w.evHandler("worker: runMiningOperation: MINING: BLOCK: blk[%d]: hash[%s]", block.Index, block.Hash())
	}()

	// Wait for both G's to terminate.
	wg.Wait()

	if err != nil && w.isShutdown() {
		return database.Block{}, ErrShutdown
	}

	return block, err
}
