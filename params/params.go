package params

import (
	"fmt"
	"math/big"
)

// Params holds the consensus parameters of one network. A Params value is
// constructed once at startup and never mutated; every consensus operation
// receives it explicitly so that multiple networks can be evaluated in the
// same process without cross-contamination.
type Params struct {
	Name string

	// PowLimit is the highest (easiest) proof-of-work target any block may
	// carry, as a 256-bit unsigned value.
	PowLimit *big.Int

	// PowTargetSpacing is the desired number of seconds between blocks.
	PowTargetSpacing int64

	// PowTargetTimespan is the length in seconds of one pre-fork retarget
	// window (PowTargetTimespan / PowTargetSpacing blocks).
	PowTargetTimespan int64

	// PowAllowMinDifficultyBlocks relaxes difficulty to PowLimit when block
	// production stalls. Test networks only.
	PowAllowMinDifficultyBlocks bool

	// PowNoRetargeting disables difficulty adjustment entirely. Regression
	// test networks only.
	PowNoRetargeting bool

	// ForkHeight is the block height at which the chain switches to the
	// post-fork retarget regime (72-block cadence, 2x clamp).
	ForkHeight int32

	// ForkBeginPowLimit is the target assigned to exactly one block, at
	// height ForkHeight+1, to restart difficulty under the new regime.
	ForkBeginPowLimit *big.Int
}

// DifficultyAdjustmentInterval returns the number of blocks in one pre-fork
// retarget window.
func (p *Params) DifficultyAdjustmentInterval() int64 {
	return p.PowTargetTimespan / p.PowTargetSpacing
}

// MainNetParams defines the consensus rules of the main network.
var MainNetParams = Params{
	Name:                        "mainnet",
	PowLimit:                    hexToBig("00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
	PowTargetSpacing:            600,
	PowTargetTimespan:           14 * 24 * 60 * 60, // two weeks
	PowAllowMinDifficultyBlocks: false,
	PowNoRetargeting:            false,
	ForkHeight:                  495866,
	ForkBeginPowLimit:           hexToBig("0000003fffff0000000000000000000000000000000000000000000000000000"),
}

// TestNetParams defines the consensus rules of the public test network.
var TestNetParams = Params{
	Name:                        "testnet",
	PowLimit:                    hexToBig("00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
	PowTargetSpacing:            600,
	PowTargetTimespan:           14 * 24 * 60 * 60,
	PowAllowMinDifficultyBlocks: true,
	PowNoRetargeting:            false,
	ForkHeight:                  12900,
	ForkBeginPowLimit:           hexToBig("0000003fffff0000000000000000000000000000000000000000000000000000"),
}

// RegressionNetParams defines the consensus rules of the local regression
// test network. Difficulty never changes so block production is cheap and
// deterministic.
var RegressionNetParams = Params{
	Name:                        "regtest",
	PowLimit:                    hexToBig("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
	PowTargetSpacing:            600,
	PowTargetTimespan:           14 * 24 * 60 * 60,
	PowAllowMinDifficultyBlocks: true,
	PowNoRetargeting:            true,
	ForkHeight:                  3000,
	ForkBeginPowLimit:           hexToBig("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
}

// ByName resolves a network name from configuration to its parameter set.
func ByName(name string) (*Params, error) {
	switch name {
	case "mainnet", "":
		return &MainNetParams, nil
	case "testnet":
		return &TestNetParams, nil
	case "regtest":
		return &RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", name)
	}
}

func hexToBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("params: invalid hex constant " + s)
	}
	return v
}
