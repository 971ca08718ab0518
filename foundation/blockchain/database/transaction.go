package database

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// RewardSender is the sender used on the transaction that pays a node for
// mining a block.
const RewardSender = "0"

// MiningReward is the amount paid to a node for mining a block.
const MiningReward = 1

// =============================================================================

// Tx is the transactional information between two parties. Fields are
// declared in key order so the JSON form matches the hashed form. The amount
// keeps the form it was received in so 5 and 5.0 hash as they were written.
type Tx struct {
	Amount    json.Number `json:"amount"`    // Value being moved by this transaction.
	Recipient string      `json:"recipient"` // Address receiving the value.
	Sender    string      `json:"sender"`    // Address sending the value, "0" for a mining reward.
}

// NewTx constructs a new transaction.
func NewTx(sender string, recipient string, amount float64) Tx {
	return NewTxAmount(sender, recipient, json.Number(digest.FormatNumber(amount)))
}

// NewTxAmount constructs a new transaction with an amount as it was written
// on the wire.
func NewTxAmount(sender string, recipient string, amount json.Number) Tx {
	return Tx{
		Amount:    amount,
		Recipient: recipient,
		Sender:    sender,
	}
}

// NewRewardTx constructs the transaction that pays the recipient for
// mining a block.
func NewRewardTx(recipient string) Tx {
	return NewTx(RewardSender, recipient, MiningReward)
}

// IsReward tests if the transaction is a mining reward.
func (tx Tx) IsReward() bool {
	return tx.Sender == RewardSender
}

// CanonicalFields implements the digest.Canonical interface.
func (tx Tx) CanonicalFields() []digest.Field {
	return []digest.Field{
		{Key: "amount", Value: tx.amount()},
		{Key: "recipient", Value: tx.Recipient},
		{Key: "sender", Value: tx.Sender},
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	if tx.IsReward() {
		return fmt.Sprintf("reward:%s:%s", tx.Recipient, tx.amount())
	}
	return fmt.Sprintf("%s:%s:%s", tx.Sender, tx.Recipient, tx.amount())
}

// amount returns the amount to hash. A missing amount is zero.
func (tx Tx) amount() digest.Literal {
	if tx.Amount == "" {
		return "0"
	}
	return digest.Literal(tx.Amount)
}
