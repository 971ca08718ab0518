// Package pow implements the proof of work puzzle used to mine blocks.
package pow

import (
	"context"
	"strconv"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// Difficulty is the number of leading 0's a hash needs to solve the puzzle.
const Difficulty = 4

// Validate checks if the proof solves the puzzle for the previous proof. The
// decimal forms of both proofs are concatenated and hashed.
func Validate(lastProof uint64, proof uint64) bool {
	guess := strconv.FormatUint(lastProof, 10) + strconv.FormatUint(proof, 10)
	return isHashSolved(digest.Sum([]byte(guess)))
}

// Solve performs the work of finding the smallest proof that solves the puzzle
// for the specified previous proof. The search can be cancelled through the
// context, in which case the context error is returned.
func Solve(ctx context.Context, lastProof uint64, ev func(v string, args ...any)) (uint64, error) {
	ev("pow: Solve: MINING: started: lastProof[%d]", lastProof)
	defer ev("pow: Solve: MINING: completed")

	var proof uint64
	for {
		if proof > 0 && proof%1_000_000 == 0 {
			ev("pow: Solve: MINING: attempts[%d]", proof)
		}

		// Did we get cancelled trying to solve the problem.
		if ctx.Err() != nil {
			ev("pow: Solve: MINING: CANCELLED")
			return 0, ctx.Err()
		}

		if !Validate(lastProof, proof) {
			proof++
			continue
		}

		ev("pow: Solve: MINING: SOLVED: lastProof[%d]: proof[%d]", lastProof, proof)

		return proof, nil
	}
}

// =============================================================================

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(hash string) bool {
	return strings.HasPrefix(hash, strings.Repeat("0", Difficulty))
}
