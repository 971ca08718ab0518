package database_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/pow"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func noop(v string, args ...any) {}

// mine forges the specified number of blocks on top of the database, each
// block carrying one transaction.
func mine(t *testing.T, db *database.Database, blocks int) {
	for i := 0; i < blocks; i++ {
		proof, err := pow.Solve(context.Background(), db.LatestBlock().Proof, noop)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to solve the puzzle : %s", failed, err)
		}

		trans := []database.Tx{database.NewTx("alice", "bob", float64(i+1))}
		db.Forge(proof, "", trans)
	}
}

// =============================================================================

func TestGenesis(t *testing.T) {
	t.Log("Given the need to start a new chain.")
	{
		db := database.New()

		if l := db.Length(); l != 1 {
			t.Fatalf("\t%s\tShould have a single block, got %d.", failed, l)
		}
		t.Logf("\t%s\tShould have a single block.", success)

		genesis := db.LatestBlock()
		if genesis.Index != 1 || genesis.Proof != 100 || genesis.PreviousHash != database.GenesisPreviousHash {
			t.Logf("\t\tgot: %+v", genesis)
			t.Fatalf("\t%s\tShould have the genesis values.", failed)
		}
		t.Logf("\t%s\tShould have the genesis values.", success)

		if len(genesis.Transactions) != 0 {
			t.Fatalf("\t%s\tShould have no transactions in the genesis block.", failed)
		}
		t.Logf("\t%s\tShould have no transactions in the genesis block.", success)
	}
}

func TestForge(t *testing.T) {
	t.Log("Given the need to forge blocks.")
	{
		now := time.Unix(1700000000, 500_000_000)
		clock := func() time.Time {
			now = now.Add(time.Second)
			return now
		}

		db := database.NewWithClock(clock)
		genesis := db.LatestBlock()

		trans := []database.Tx{database.NewTx("alice", "bob", 5)}
		block := db.Forge(35293, "", trans)

		if block.Index != 2 {
			t.Fatalf("\t%s\tShould get the next index, got %d.", failed, block.Index)
		}
		t.Logf("\t%s\tShould get the next index.", success)

		if !block.PreviousHash.Matches(genesis.Hash()) {
			t.Fatalf("\t%s\tShould link to the hash of the latest block.", failed)
		}
		t.Logf("\t%s\tShould link to the hash of the latest block.", success)

		if block.Timestamp != 1700000002.5 {
			t.Fatalf("\t%s\tShould use the clock for the timestamp, got %v.", failed, block.Timestamp)
		}
		t.Logf("\t%s\tShould use the clock for the timestamp.", success)

		explicit := db.Forge(35089, "abc", nil)
		if !explicit.PreviousHash.Matches("abc") {
			t.Fatalf("\t%s\tShould use the provided previous hash.", failed)
		}
		t.Logf("\t%s\tShould use the provided previous hash.", success)

		if explicit.Transactions == nil || len(explicit.Transactions) != 0 {
			t.Fatalf("\t%s\tShould store an empty set of transactions.", failed)
		}
		t.Logf("\t%s\tShould store an empty set of transactions.", success)

		if l := db.Length(); l != 3 {
			t.Fatalf("\t%s\tShould have three blocks, got %d.", failed, l)
		}
		t.Logf("\t%s\tShould have three blocks.", success)
	}
}

func TestHash(t *testing.T) {
	block := database.Block{
		Index:        2,
		PreviousHash: database.LinkTo("abc"),
		Proof:        35293,
		Timestamp:    1700000123.25,
		Transactions: []database.Tx{
			database.NewTx("alice", "bob", 5),
			database.NewRewardTx("node-1"),
		},
	}

	const exp = "f879c86e8b4087091168732694995bd0282dfe91a0fc2622207d06fc49c7477c"

	t.Log("Given the need to hash a block.")
	{
		if h := block.Hash(); h != exp {
			t.Logf("\t\tgot: %s", h)
			t.Logf("\t\texp: %s", exp)
			t.Fatalf("\t%s\tShould get the known hash.", failed)
		}
		t.Logf("\t%s\tShould get the known hash.", success)

		cpy := block
		cpy.Transactions = append([]database.Tx{}, block.Transactions...)
		if cpy.Hash() != block.Hash() {
			t.Fatalf("\t%s\tShould get the same hash for identical values.", failed)
		}
		t.Logf("\t%s\tShould get the same hash for identical values.", success)

		data, err := json.Marshal(block)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal the block : %s", failed, err)
		}

		var wire database.Block
		if err := json.Unmarshal(data, &wire); err != nil {
			t.Fatalf("\t%s\tShould be able to unmarshal the block : %s", failed, err)
		}

		if wire.Hash() != exp {
			t.Fatalf("\t%s\tShould keep the hash after crossing the wire.", failed)
		}
		t.Logf("\t%s\tShould keep the hash after crossing the wire.", success)
	}
}

func TestValidateChain(t *testing.T) {
	type table struct {
		name   string
		tamper func(chain []database.Block)
	}

	tt := []table{
		{name: "transactions", tamper: func(chain []database.Block) { chain[1].Transactions[0].Amount = "1000" }},
		{name: "recipient", tamper: func(chain []database.Block) { chain[2].Transactions[0].Recipient = "mallory" }},
		{name: "proof", tamper: func(chain []database.Block) { chain[2].Proof++ }},
		{name: "previous_hash", tamper: func(chain []database.Block) { chain[2].PreviousHash = database.LinkTo(chain[0].Hash()) }},
		{name: "timestamp", tamper: func(chain []database.Block) { chain[1].Timestamp++ }},
		{name: "genesis", tamper: func(chain []database.Block) { chain[0].Proof = 101 }},
	}

	db := database.New()
	mine(t, db, 3)

	t.Log("Given the need to validate a chain.")
	{
		if err := database.ValidateChain(db.Copy(), noop); err != nil {
			t.Fatalf("\t%s\tShould validate a forged chain : %s", failed, err)
		}
		t.Logf("\t%s\tShould validate a forged chain.", success)

		if err := database.ValidateChain(db.Copy()[:1], noop); err != nil {
			t.Fatalf("\t%s\tShould validate a single block chain : %s", failed, err)
		}
		t.Logf("\t%s\tShould validate a single block chain.", success)

		if err := database.ValidateChain(nil, noop); !errors.Is(err, database.ErrEmptyChain) {
			t.Fatalf("\t%s\tShould reject an empty chain : %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an empty chain.", success)

		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen tampering with the %s.", testID, tst.name)
				{
					chain := db.Copy()
					for i := range chain {
						chain[i].Transactions = append([]database.Tx{}, chain[i].Transactions...)
					}
					tst.tamper(chain)

					if err := database.ValidateChain(chain, noop); err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould reject the tampered chain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reject the tampered chain.", success, testID)

					if err := database.ValidateChain(db.Copy(), noop); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould not change the original chain : %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould not change the original chain.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestReplace(t *testing.T) {
	t.Log("Given the need to replace a chain.")
	{
		src := database.New()
		mine(t, src, 2)

		db := database.New()
		db.Replace(src.Copy())

		if db.Length() != 3 {
			t.Fatalf("\t%s\tShould have the replaced length, got %d.", failed, db.Length())
		}
		t.Logf("\t%s\tShould have the replaced length.", success)

		if db.LatestBlock().Hash() != src.LatestBlock().Hash() {
			t.Fatalf("\t%s\tShould have the replaced latest block.", failed)
		}
		t.Logf("\t%s\tShould have the replaced latest block.", success)

		defer func() {
			if r := recover(); r == nil {
				t.Fatalf("\t%s\tShould panic replacing with an empty chain.", failed)
			}
			t.Logf("\t%s\tShould panic replacing with an empty chain.", success)
		}()
		db.Replace(nil)
	}
}

// peerChain is a chain as a node encoding blocks with sorted keys serves it.
// The genesis block links to the number 1 and one amount is written as 5.0.
const peerChain = `[{"index": 1, "previous_hash": 1, "proof": 100, "timestamp": 1700000000.5, "transactions": []}, ` +
	`{"index": 2, "previous_hash": "34e9b643e6d862c44dc8ecb6771d9988000143a71c54d8939eec051706e03b13", "proof": 35293, "timestamp": 1700000060.25, ` +
	`"transactions": [{"amount": 5.0, "recipient": "bob", "sender": "alice"}, {"amount": 1, "recipient": "node-py", "sender": "0"}]}, ` +
	`{"index": 3, "previous_hash": "cdbab4f31f081cf37d5540d07e1df83ef9ee52a4fdde74168ee661241ad2d9ae", "proof": 35089, "timestamp": 1700000120.75, ` +
	`"transactions": [{"amount": 1, "recipient": "node-py", "sender": "0"}]}]`

func TestPeerChain(t *testing.T) {
	hashes := []string{
		"34e9b643e6d862c44dc8ecb6771d9988000143a71c54d8939eec051706e03b13",
		"cdbab4f31f081cf37d5540d07e1df83ef9ee52a4fdde74168ee661241ad2d9ae",
		"a6ede1dd2b2934d0e1628f1bf9443cb90b78f79bb61a246b7e36e7b6f2b4d3b7",
	}

	t.Log("Given the need to accept a chain forged by another node.")
	{
		var chain []database.Block
		if err := json.Unmarshal([]byte(peerChain), &chain); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the chain : %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to decode the chain.", success)

		if chain[0].PreviousHash != database.GenesisPreviousHash {
			t.Fatalf("\t%s\tShould read the genesis link as the sentinel : %q", failed, chain[0].PreviousHash)
		}
		t.Logf("\t%s\tShould read the genesis link as the sentinel.", success)

		for i, block := range chain {
			if h := block.Hash(); h != hashes[i] {
				t.Logf("\t\tgot: %s", h)
				t.Logf("\t\texp: %s", hashes[i])
				t.Fatalf("\t%s\tShould hash block %d as the peer does.", failed, block.Index)
			}
		}
		t.Logf("\t%s\tShould hash every block as the peer does.", success)

		if err := database.ValidateChain(chain, noop); err != nil {
			t.Fatalf("\t%s\tShould validate the chain : %s", failed, err)
		}
		t.Logf("\t%s\tShould validate the chain.", success)

		data, err := json.Marshal(chain[0])
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal the genesis block : %s", failed, err)
		}
		if !strings.Contains(string(data), `"previous_hash":1,`) {
			t.Fatalf("\t%s\tShould write the genesis link as a number : %s", failed, data)
		}
		t.Logf("\t%s\tShould write the genesis link as a number.", success)

		if chain[1].Transactions[0].Amount != "5.0" {
			t.Fatalf("\t%s\tShould keep the amount as written : %s", failed, chain[1].Transactions[0].Amount)
		}
		chain[1].Transactions[0].Amount = "5"
		if err := database.ValidateChain(chain, noop); err == nil {
			t.Fatalf("\t%s\tShould hash 5 and 5.0 differently.", failed)
		}
		t.Logf("\t%s\tShould keep the amount as written.", success)

		genesis := database.NewWithClock(func() time.Time { return time.Unix(1700000000, 500_000_000) }).LatestBlock()
		if h := genesis.Hash(); h != hashes[0] {
			t.Fatalf("\t%s\tShould forge the same genesis block as the peer : %s", failed, h)
		}
		t.Logf("\t%s\tShould forge the same genesis block as the peer.", success)
	}
}

func TestPrevHash(t *testing.T) {
	type table struct {
		name string
		data string
		exp  database.PrevHash
		fail bool
	}

	tt := []table{
		{name: "hash", data: `"abc"`, exp: database.LinkTo("abc")},
		{name: "sentinel", data: `1`, exp: database.GenesisPreviousHash},
		{name: "null", data: `null`, fail: true},
		{name: "object", data: `{"hash":"abc"}`, fail: true},
		{name: "bool", data: `true`, fail: true},
	}

	t.Log("Given the need to decode the link to a parent block.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				var ph database.PrevHash
				err := json.Unmarshal([]byte(tst.data), &ph)

				switch {
				case tst.fail && err == nil:
					t.Fatalf("\t%s\tTest %d:\tShould reject %s.", failed, testID, tst.data)
				case !tst.fail && err != nil:
					t.Fatalf("\t%s\tTest %d:\tShould decode %s : %s", failed, testID, tst.data, err)
				case !tst.fail && ph != tst.exp:
					t.Fatalf("\t%s\tTest %d:\tShould decode %s as %q, got %q.", failed, testID, tst.data, tst.exp, ph)
				}
				t.Logf("\t%s\tTest %d:\tShould handle %s.", success, testID, tst.data)
			}

			t.Run(tst.name, f)
		}

		if database.GenesisPreviousHash.Matches("1") {
			t.Fatalf("\t%s\tShould not match the sentinel to any hash.", failed)
		}
		t.Logf("\t%s\tShould not match the sentinel to any hash.", success)
	}
}

func TestTxString(t *testing.T) {
	t.Log("Given the need to log transactions.")
	{
		if s := database.NewRewardTx("node-1").String(); s != "reward:node-1:1" {
			t.Fatalf("\t%s\tShould mark the mining reward, got %s.", failed, s)
		}
		t.Logf("\t%s\tShould mark the mining reward.", success)

		if s := database.NewTx("alice", "bob", 2.5).String(); s != "alice:bob:2.5" {
			t.Fatalf("\t%s\tShould show sender, recipient and amount, got %s.", failed, s)
		}
		t.Logf("\t%s\tShould show sender, recipient and amount.", success)
	}
}
