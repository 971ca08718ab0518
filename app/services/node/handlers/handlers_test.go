package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"io"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/app/services/node/handlers"
	"github.com/ardanlabs/powchain/business/web/errs"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/worker"
	"github.com/ardanlabs/powchain/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// node is a running node served by an httptest server.
type node struct {
	state *state.State
	srv   *httptest.Server
	host  string
}

func newNode(t *testing.T, nodeID string) *node {
	evts := events.New()

	// The listener is opened first so the node knows the host its peers
	// reach it at.
	srv := httptest.NewUnstartedServer(nil)
	host := srv.Listener.Addr().String()

	st, err := state.New(state.Config{
		NodeID:    nodeID,
		Host:      host,
		Fetcher:   state.NewHTTPFetcher(time.Second),
		EvHandler: func(v string, args ...any) {},
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state : %s", failed, err)
	}
	worker.Run(st, func(v string, args ...any) {})

	mux := handlers.APIMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		Evts:     evts,
	})

	srv.Config.Handler = mux
	srv.Start()
	t.Cleanup(func() {
		evts.Shutdown()
		srv.Close()
		st.Shutdown()
	})

	return &node{
		state: st,
		srv:   srv,
		host:  host,
	}
}

func (n *node) do(t *testing.T, method string, path string, body string, v any) int {
	var r *bytes.Reader
	if body != "" {
		r = bytes.NewReader([]byte(body))
	} else {
		r = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, n.srv.URL+path, r)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build the request : %s", failed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to make the request : %s", failed, err)
	}
	defer resp.Body.Close()

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the response : %s", failed, err)
		}
	}

	return resp.StatusCode
}

// =============================================================================

func Test_Transactions(t *testing.T) {
	n := newNode(t, "node-1")

	type table struct {
		name   string
		body   string
		status int
		fields []string
	}

	tt := []table{
		{name: "valid", body: `{"sender":"alice","recipient":"bob","amount":5}`, status: http.StatusCreated},
		{name: "zero", body: `{"sender":"alice","recipient":"bob","amount":0}`, status: http.StatusCreated},
		{name: "no-amount", body: `{"sender":"alice","recipient":"bob"}`, status: http.StatusBadRequest, fields: []string{"amount"}},
		{name: "empty", body: `{}`, status: http.StatusBadRequest, fields: []string{"sender", "recipient", "amount"}},
		{name: "bad-amount", body: `{"sender":"alice","recipient":"bob","amount":"five"}`, status: http.StatusBadRequest},
		{name: "malformed", body: `{"sender":`, status: http.StatusBadRequest},
	}

	t.Log("Given the need to submit transactions over HTTP.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a %s transaction.", testID, tst.name)
				{
					var resp struct {
						Message string            `json:"message"`
						Index   uint64            `json:"index"`
						Error   string            `json:"error"`
						Fields  map[string]string `json:"fields"`
					}
					status := n.do(t, http.MethodPost, "/transactions/new", tst.body, &resp)

					if status != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould receive a status code of %d, got %d.", failed, testID, tst.status, status)
					}
					t.Logf("\t%s\tTest %d:\tShould receive a status code of %d.", success, testID, tst.status)

					if tst.status == http.StatusCreated && (resp.Index != 2 || resp.Message != "Transaction will be added to Block 2") {
						t.Fatalf("\t%s\tTest %d:\tShould be told the next block index : %+v", failed, testID, resp)
					}

					for _, field := range tst.fields {
						if _, exists := resp.Fields[field]; !exists {
							t.Fatalf("\t%s\tTest %d:\tShould report the %q field : %+v", failed, testID, field, resp)
						}
					}
				}
			}

			t.Run(tst.name, f)
		}

		if got := n.state.QueryMempoolLength(); got != 2 {
			t.Fatalf("\t%s\tShould only add the valid transactions, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould only add the valid transactions.", success)
	}
}

func Test_MineAndChain(t *testing.T) {
	t.Log("Given the need to mine a block and read the chain over HTTP.")
	{
		n := newNode(t, "node-1")

		n.do(t, http.MethodPost, "/transactions/new", `{"sender":"alice","recipient":"bob","amount":5}`, nil)

		var pending struct {
			Transactions []database.Tx `json:"transactions"`
			Count        int           `json:"count"`
		}
		if status := n.do(t, http.MethodGet, "/transactions/pending", "", &pending); status != http.StatusOK || pending.Count != 1 {
			t.Fatalf("\t%s\tShould list the pending transaction : %d %+v", failed, status, pending)
		}
		t.Logf("\t%s\tShould list the pending transaction.", success)

		var mined struct {
			Message      string        `json:"message"`
			Index        uint64        `json:"index"`
			Transactions []database.Tx `json:"transactions"`
			Proof        uint64        `json:"proof"`
			PreviousHash string        `json:"previous_hash"`
		}
		if status := n.do(t, http.MethodGet, "/mine", "", &mined); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to mine : %d", failed, status)
		}
		t.Logf("\t%s\tShould be able to mine.", success)

		if mined.Message != "New Block Forged" || mined.Index != 2 || mined.Proof != 35293 {
			t.Fatalf("\t%s\tShould forge block 2 with proof 35293 : %+v", failed, mined)
		}
		t.Logf("\t%s\tShould forge block 2 with proof 35293.", success)

		exp := []database.Tx{
			database.NewTx("alice", "bob", 5),
			database.NewTx("0", "node-1", 1),
		}
		if len(mined.Transactions) != 2 || mined.Transactions[0] != exp[0] || mined.Transactions[1] != exp[1] {
			t.Fatalf("\t%s\tShould hold the transaction then the reward : %v", failed, mined.Transactions)
		}
		t.Logf("\t%s\tShould hold the transaction then the reward.", success)

		var status peer.ChainStatus
		n.do(t, http.MethodGet, "/chain", "", &status)

		if status.Length != 2 || len(status.Chain) != 2 || status.Chain[0].Hash() != mined.PreviousHash {
			t.Fatalf("\t%s\tShould get back the two block chain : %+v", failed, status)
		}
		t.Logf("\t%s\tShould get back the two block chain.", success)

		if err := database.ValidateChain(status.Chain, func(string, ...any) {}); err != nil {
			t.Fatalf("\t%s\tShould get back a valid chain : %s", failed, err)
		}
		t.Logf("\t%s\tShould get back a valid chain.", success)
	}
}

func Test_Nodes(t *testing.T) {
	n1 := newNode(t, "node-1")
	n2 := newNode(t, "node-2")

	t.Log("Given the need to register peers and resolve conflicts over HTTP.")
	{
		type table struct {
			name   string
			body   string
			status int
		}

		tt := []table{
			{name: "missing", body: `{}`, status: http.StatusBadRequest},
			{name: "empty", body: `{"nodes":[]}`, status: http.StatusBadRequest},
			{name: "blank", body: `{"nodes":[""]}`, status: http.StatusBadRequest},
			{name: "no-host", body: `{"nodes":["http://"]}`, status: http.StatusBadRequest},
		}

		for testID, tst := range tt {
			var er errs.Response
			if status := n1.do(t, http.MethodPost, "/nodes/register", tst.body, &er); status != tst.status {
				t.Fatalf("\t%s\tTest %d:\tShould reject a %s peer list with %d, got %d.", failed, testID, tst.name, tst.status, status)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a %s peer list : %s", success, testID, tst.name, er.Error)
		}

		if len(n1.state.RetrieveKnownPeers()) != 0 {
			t.Fatalf("\t%s\tShould not register peers from a rejected request.", failed)
		}
		t.Logf("\t%s\tShould not register peers from a rejected request.", success)

		var reg struct {
			Message    string   `json:"message"`
			TotalNodes []string `json:"total_nodes"`
		}
		body := `{"nodes":["` + n2.srv.URL + `", "` + n2.host + `"]}`
		if status := n1.do(t, http.MethodPost, "/nodes/register", body, &reg); status != http.StatusCreated {
			t.Fatalf("\t%s\tShould be able to register a peer : %d", failed, status)
		}
		if len(reg.TotalNodes) != 1 || reg.TotalNodes[0] != n2.host {
			t.Fatalf("\t%s\tShould hold the peer once : %v", failed, reg.TotalNodes)
		}
		t.Logf("\t%s\tShould be able to register a peer once.", success)

		body = `{"nodes":["http://` + n1.host + `/"]}`
		if status := n1.do(t, http.MethodPost, "/nodes/register", body, &reg); status != http.StatusCreated {
			t.Fatalf("\t%s\tShould be able to register its own host : %d", failed, status)
		}
		if len(reg.TotalNodes) != 2 || !slices.Contains(reg.TotalNodes, n1.host) || !slices.Contains(reg.TotalNodes, n2.host) {
			t.Fatalf("\t%s\tShould report every registered node : %v", failed, reg.TotalNodes)
		}
		t.Logf("\t%s\tShould report every registered node.", success)

		for range 2 {
			n2.do(t, http.MethodGet, "/mine", "", nil)
		}

		var res struct {
			Message  string           `json:"message"`
			Replaced bool             `json:"replaced"`
			Chain    []database.Block `json:"chain"`
			Length   int              `json:"length"`
		}
		n1.do(t, http.MethodGet, "/nodes/resolve", "", &res)

		if !res.Replaced || res.Length != 3 || res.Message != "Our chain was replaced" {
			t.Fatalf("\t%s\tShould adopt the longer peer chain : %+v", failed, res)
		}
		t.Logf("\t%s\tShould adopt the longer peer chain.", success)

		if res.Chain[2].Hash() != n2.state.RetrieveLatestBlock().Hash() {
			t.Fatalf("\t%s\tShould hold the peer's latest block.", failed)
		}
		t.Logf("\t%s\tShould hold the peer's latest block.", success)

		n1.do(t, http.MethodGet, "/nodes/resolve", "", &res)

		if res.Replaced || res.Message != "Our chain is authoritative" {
			t.Fatalf("\t%s\tShould keep an equal length chain : %+v", failed, res)
		}
		t.Logf("\t%s\tShould keep an equal length chain.", success)

		var prs struct {
			Nodes []string `json:"nodes"`
			Count int      `json:"count"`
		}
		n1.do(t, http.MethodGet, "/nodes/list", "", &prs)

		if prs.Count != 1 || prs.Nodes[0] != n2.host {
			t.Fatalf("\t%s\tShould list the known peer without itself : %+v", failed, prs)
		}
		t.Logf("\t%s\tShould list the known peer without itself.", success)
	}
}

func Test_AmountLiteral(t *testing.T) {
	t.Log("Given the need to keep amounts as they were submitted.")
	{
		n := newNode(t, "node-1")

		n.do(t, http.MethodPost, "/transactions/new", `{"sender":"alice","recipient":"bob","amount":5.0}`, nil)

		var mined struct {
			Transactions []database.Tx `json:"transactions"`
		}
		if status := n.do(t, http.MethodGet, "/mine", "", &mined); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to mine : %d", failed, status)
		}

		if len(mined.Transactions) != 2 || mined.Transactions[0].Amount != "5.0" {
			t.Fatalf("\t%s\tShould keep the amount as 5.0 : %v", failed, mined.Transactions)
		}
		t.Logf("\t%s\tShould keep the amount as 5.0.", success)

		resp, err := http.Get(n.srv.URL + "/chain")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the chain : %s", failed, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the chain : %s", failed, err)
		}

		raw := string(data)
		if !strings.Contains(raw, `"previous_hash":1,`) || !strings.Contains(raw, `"amount":5.0,`) {
			t.Fatalf("\t%s\tShould serve the genesis link and amount as numbers : %s", failed, raw)
		}
		t.Logf("\t%s\tShould serve the genesis link and amount as numbers.", success)

		var status peer.ChainStatus
		if err := json.Unmarshal(data, &status); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the chain : %s", failed, err)
		}

		if err := database.ValidateChain(status.Chain, func(string, ...any) {}); err != nil {
			t.Fatalf("\t%s\tShould get back a valid chain : %s", failed, err)
		}
		t.Logf("\t%s\tShould get back a valid chain.", success)
	}
}
