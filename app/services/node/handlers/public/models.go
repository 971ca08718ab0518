package public

import (
	"encoding/json"

	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// newTx is what a client submits to add a transaction. Pointers tell a
// missing field apart from a zero value. The amount keeps the literal the
// client sent since it is part of the block hash.
type newTx struct {
	Sender    *string      `json:"sender" validate:"required"`
	Recipient *string      `json:"recipient" validate:"required"`
	Amount    *json.Number `json:"amount" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (ntx newTx) Validate() error {
	return validate.Check(ntx)
}

func (ntx newTx) toTx() database.Tx {
	return database.NewTxAmount(*ntx.Sender, *ntx.Recipient, *ntx.Amount)
}

type submitted struct {
	Message string `json:"message"`
	Index   uint64 `json:"index"`
}

type mined struct {
	Message      string            `json:"message"`
	Index        uint64            `json:"index"`
	Transactions []database.Tx     `json:"transactions"`
	Proof        uint64            `json:"proof"`
	PreviousHash database.PrevHash `json:"previous_hash"`
}

type pending struct {
	Transactions []database.Tx `json:"transactions"`
	Count        int           `json:"count"`
}
