// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"net/http"

	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// RegisterPeers adds the specified nodes to the set of known peers. The
// request is rejected as a whole if any address can't be parsed.
func (h Handlers) RegisterPeers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var rp registerPeers
	if err := web.Decode(r, &rp); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	prs := make([]peer.Peer, len(rp.Nodes))
	for i, address := range rp.Nodes {
		pr, err := peer.Parse(address)
		if err != nil {
			return validate.NewFieldsError("nodes", err)
		}
		prs[i] = pr
	}

	for _, pr := range prs {
		if h.State.AddKnownPeer(pr) {
			h.Log.Infow("register peer", "traceid", v.TraceID, "host", pr.Host)
		}
	}

	resp := registered{
		Message:    "New nodes have been added",
		TotalNodes: hosts(h.State.RetrieveAllPeers()),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Resolve applies the longest chain rule against all known peers.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	replaced := h.State.Resolve(ctx)
	chain := h.State.RetrieveChain()

	h.Log.Infow("resolve", "traceid", v.TraceID, "replaced", replaced, "length", len(chain))

	resp := resolved{
		Message:  "Our chain is authoritative",
		Replaced: replaced,
		Chain:    chain,
		Length:   len(chain),
	}
	if replaced {
		resp.Message = "Our chain was replaced"
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Peers returns the set of known peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	nodes := hosts(h.State.RetrieveKnownPeers())

	resp := peers{
		Nodes: nodes,
		Count: len(nodes),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

func hosts(prs []peer.Peer) []string {
	hosts := make([]string, len(prs))
	for i, pr := range prs {
		hosts[i] = pr.Host
	}
	return hosts
}
