package private

import (
	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// registerPeers is what a client submits to add peers to this node.
type registerPeers struct {
	Nodes []string `json:"nodes" validate:"required,min=1,dive,required"`
}

// Validate checks the data in the model is considered clean.
func (rp registerPeers) Validate() error {
	return validate.Check(rp)
}

type registered struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
}

type resolved struct {
	Message  string           `json:"message"`
	Replaced bool             `json:"replaced"`
	Chain    []database.Block `json:"chain"`
	Length   int              `json:"length"`
}

type peers struct {
	Nodes []string `json:"nodes"`
	Count int      `json:"count"`
}
