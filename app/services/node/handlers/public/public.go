// Package public maintains the group of handlers for client access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powchain/business/sys/metrics"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx := ntx.toTx()

	h.Log.Infow("add tran", "traceid", v.TraceID, "sender", tx.Sender, "recipient", tx.Recipient, "amount", tx.Amount)
	index := h.State.SubmitTransaction(tx)

	resp := submitted{
		Message: fmt.Sprintf("Transaction will be added to Block %d", index),
		Index:   index,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Mempool returns the set of transactions waiting to be mined.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.RetrieveMempool()

	resp := pending{
		Transactions: txs,
		Count:        len(txs),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine solves the proof of work for the next block, pays this node the
// mining reward and forges the block from the mempool.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	if h.State.Worker == nil {
		return web.NewShutdownError("mining worker is not running")
	}

	block, err := h.State.Worker.Mine(ctx)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("mining stopped: %w", err), http.StatusServiceUnavailable)
	}

	metrics.AddBlocks(ctx)
	h.Log.Infow("mined block", "traceid", v.TraceID, "index", block.Index, "proof", block.Proof, "txs", len(block.Transactions))

	resp := mined{
		Message:      "New Block Forged",
		Index:        block.Index,
		Transactions: block.Transactions,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns the full chain held by this node.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain := h.State.RetrieveChain()

	resp := peer.ChainStatus{
		Chain:  chain,
		Length: len(chain),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
