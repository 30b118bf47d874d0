package consensus

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"diamond-node/params"
)

// CheckProofOfWork reports whether hash satisfies the claimed compact
// target. It fails for targets that decode negative, zero, or overflowing,
// for targets above the network pow limit, and for hashes whose 256-bit
// magnitude exceeds the target. It is a pure predicate; an invalid block is
// an ordinary false, never an error.
func CheckProofOfWork(hash common.Hash, bits uint32, p *params.Params) bool {
	target, negative, overflow := CompactToBig(bits)

	// Range check.
	if negative || target.Sign() == 0 || overflow || target.Cmp(p.PowLimit) > 0 {
		return false
	}

	// The hash must not exceed the claimed target.
	return new(uint256.Int).SetBytes(hash[:]).CmpBig(target) <= 0
}
