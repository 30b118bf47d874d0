package consensus

import "math/big"

var oneLsh256 = new(big.Int).Lsh(big.NewInt(1), 256)

// CalcBlockWork returns the expected number of hashes needed to produce a
// block at the given compact target, floor(2^256 / (target+1)). Chainwork
// sums these per block to compare competing chains. A target that decodes
// negative, zero, or overflowing contributes no work.
func CalcBlockWork(bits uint32) *big.Int {
	target, negative, overflow := CompactToBig(bits)
	if negative || overflow || target.Sign() <= 0 {
		return new(big.Int)
	}
	denom := new(big.Int).Add(target, big.NewInt(1))
	return new(big.Int).Div(oneLsh256, denom)
}
