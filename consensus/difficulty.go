package consensus

import (
	"fmt"
	"math/big"

	"diamond-node/params"
)

// Retarget regime after the fork: fixed 72-block cadence with the
// per-window adjustment clamped to 2x. The pre-fork regime derives its
// interval from the parameters and clamps at 4x.
const (
	postForkInterval int32 = 72
	postForkClamp    int64 = 2
	preForkClamp     int64 = 4
)

// BlockNode is the read-only view of an indexed block that the difficulty
// algorithms need. The chain index owns the blocks and the ancestor lookup;
// this package never mutates or retains a node beyond a call.
type BlockNode interface {
	Height() int32
	Time() int64
	Bits() uint32

	// Parent returns the previous block on the same chain, or nil for the
	// genesis block.
	Parent() BlockNode

	// Ancestor returns the ancestor at the given height on the same chain,
	// or nil if the height is out of range.
	Ancestor(height int32) BlockNode
}

// RetargetEvent describes one completed difficulty adjustment.
type RetargetEvent struct {
	Height         int32
	OldBits        uint32
	NewBits        uint32
	TargetTimespan int64
	ActualTimespan int64 // after clamping
	RealTimespan   int64 // as observed on the chain
}

// EventSink receives retarget events. Sinks are observational only; the
// computed target does not depend on them.
type EventSink interface {
	RetargetComputed(ev RetargetEvent)
}

// NextRequiredTarget returns the compact proof-of-work target that the
// block following tip must carry. headerTime is the timestamp of the
// candidate block; it only matters under the min-difficulty rule. A nil tip
// means the candidate is the genesis block. A nil sink suppresses retarget
// events.
func NextRequiredTarget(tip BlockNode, headerTime int64, p *params.Params, sink EventSink) uint32 {
	powLimitBits := BigToCompact(p.PowLimit)

	// Genesis, and the single transition block at the fork height, restart
	// from the easiest allowed target.
	if tip == nil || tip.Height()+1 == p.ForkHeight {
		return powLimitBits
	}

	// One block after the fork the new regime begins from its own starting
	// difficulty.
	if tip.Height()+1 == p.ForkHeight+1 {
		return BigToCompact(p.ForkBeginPowLimit)
	}

	var height, interval int32
	if tip.Height()+1 > p.ForkHeight {
		height = tip.Height() + 1 - p.ForkHeight
		interval = postForkInterval
	} else {
		height = tip.Height() + 1
		interval = int32(p.DifficultyAdjustmentInterval())
	}

	// Only change once per difficulty adjustment interval.
	if height%interval != 0 {
		if p.PowAllowMinDifficultyBlocks {
			// If no block arrived for twice the target spacing, permit a
			// minimum-difficulty block.
			if headerTime > tip.Time()+2*p.PowTargetSpacing {
				return powLimitBits
			}
			// Otherwise return the last target that was not set by the
			// min-difficulty rule. The comparison is against the exact
			// compact encoding of the pow limit, not a decoded magnitude.
			node := tip
			for node.Parent() != nil &&
				int64(node.Height())%p.DifficultyAdjustmentInterval() != 0 &&
				node.Bits() == powLimitBits {
				node = node.Parent()
			}
			return node.Bits()
		}
		return tip.Bits()
	}

	firstHeight := tip.Height() - (interval - 1)
	if firstHeight < 0 {
		panic(fmt.Sprintf("consensus: retarget window start %d below genesis (tip height %d)",
			firstHeight, tip.Height()))
	}
	first := tip.Ancestor(firstHeight)
	if first == nil {
		panic(fmt.Sprintf("consensus: missing ancestor at height %d (tip height %d)",
			firstHeight, tip.Height()))
	}

	return CalculateNextWorkRequired(tip, first.Time(), p, sink)
}

// CalculateNextWorkRequired computes the retargeted compact target from the
// timespan the last adjustment window actually took. firstBlockTime is the
// timestamp of the first block of the window.
func CalculateNextWorkRequired(tip BlockNode, firstBlockTime int64, p *params.Params, sink EventSink) uint32 {
	if p.PowNoRetargeting {
		return tip.Bits()
	}

	var targetTimespan, clamp int64
	if tip.Height()+1 > p.ForkHeight {
		targetTimespan = int64(postForkInterval) * p.PowTargetSpacing
		clamp = postForkClamp
	} else {
		targetTimespan = p.PowTargetTimespan
		clamp = preForkClamp
	}

	// Limit the adjustment step so a single window cannot swing difficulty
	// by more than the clamp factor in either direction.
	actualTimespan := tip.Time() - firstBlockTime
	realTimespan := actualTimespan
	if actualTimespan < targetTimespan/clamp {
		actualTimespan = targetTimespan / clamp
	}
	if actualTimespan > targetTimespan*clamp {
		actualTimespan = targetTimespan * clamp
	}

	// newTarget = oldTarget * actualTimespan / targetTimespan, truncating.
	// The intermediate product can exceed 256 bits, so the arithmetic runs
	// over big.Int before the division narrows it back.
	oldTarget, _, _ := CompactToBig(tip.Bits())
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(actualTimespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))

	if newTarget.Cmp(p.PowLimit) > 0 {
		newTarget.Set(p.PowLimit)
	}

	newBits := BigToCompact(newTarget)
	if sink != nil {
		sink.RetargetComputed(RetargetEvent{
			Height:         tip.Height() + 1,
			OldBits:        tip.Bits(),
			NewBits:        newBits,
			TargetTimespan: targetTimespan,
			ActualTimespan: actualTimespan,
			RealTimespan:   realTimespan,
		})
	}
	return newBits
}
