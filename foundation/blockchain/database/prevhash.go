package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// PrevHash links a block to its parent. It holds the parent's hash, except on
// the genesis block where it holds the number 1. The JSON form a peer sent is
// kept so the block hashes the same as it does on that peer.
type PrevHash struct {
	value  string
	number bool
}

// GenesisPreviousHash is the sentinel the genesis block links to. It is not
// the hash of any block.
var GenesisPreviousHash = PrevHash{value: "1", number: true}

// LinkTo constructs the link to the block with the specified hash.
func LinkTo(hash string) PrevHash {
	return PrevHash{value: hash}
}

// Matches reports whether the link points at the block with the specified
// hash. The genesis sentinel matches no hash.
func (ph PrevHash) Matches(hash string) bool {
	return !ph.number && ph.value == hash
}

// String implements the fmt.Stringer interface.
func (ph PrevHash) String() string {
	return ph.value
}

// MarshalJSON implements the json.Marshaler interface.
func (ph PrevHash) MarshalJSON() ([]byte, error) {
	if ph.number {
		return []byte(ph.value), nil
	}

	return json.Marshal(ph.value)
}

// UnmarshalJSON implements the json.Unmarshaler interface. Both a string and
// a number are accepted.
func (ph *PrevHash) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return errors.New("previous hash is missing")

	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*ph = PrevHash{value: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("previous hash must be a string or a number: %w", err)
	}
	*ph = PrevHash{value: n.String(), number: true}

	return nil
}

// canonical returns the value hashed for the link.
func (ph PrevHash) canonical() any {
	if ph.number {
		return digest.Literal(ph.value)
	}

	return ph.value
}
