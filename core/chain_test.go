package core

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"diamond-node/consensus"
	"diamond-node/params"
)

// memStore is an in-memory HeaderStore for tests.
type memStore struct {
	m map[string][]byte
}

func newMemStore() *memStore { return &memStore{m: make(map[string][]byte)} }

func (s *memStore) Get(key []byte) ([]byte, error) {
	v, ok := s.m[string(key)]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (s *memStore) Put(key, value []byte) error {
	s.m[string(key)] = value
	return nil
}

// mineHeader searches a nonce satisfying the header's own bits. Regtest's
// pow limit keeps this to a couple of attempts.
func mineHeader(t *testing.T, h *BlockHeader, p *params.Params) {
	t.Helper()
	for ; h.Nonce < 1<<20; h.Nonce++ {
		if consensus.CheckProofOfWork(h.Hash(), h.Bits, p) {
			return
		}
	}
	t.Fatal("no nonce found")
}

// extendChain mines and connects n blocks on top of the current tip.
func extendChain(t *testing.T, chain *ChainIndex, p *params.Params, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		var prevHash common.Hash
		blockTime := int64(1e9)
		if tip := chain.Tip(); tip != nil {
			prevHash = tip.Hash()
			blockTime = tip.Time() + p.PowTargetSpacing
		}
		h := &BlockHeader{
			Version:   1,
			PrevBlock: prevHash,
			Timestamp: blockTime,
		}
		h.Bits = chain.NextRequiredBits(h.Timestamp)
		mineHeader(t, h, p)
		if _, err := chain.ConnectHeader(h); err != nil {
			t.Fatalf("connect block %d: %v", i, err)
		}
	}
}

func TestChainConnectAndLookup(t *testing.T) {
	p := &params.RegressionNetParams
	chain := NewChainIndex(p, nil, nil)

	if chain.Height() != -1 || chain.Tip() != nil {
		t.Fatal("fresh index is not empty")
	}

	extendChain(t, chain, p, 5)

	if chain.Height() != 4 {
		t.Fatalf("height = %d, want 4", chain.Height())
	}
	tip := chain.Tip()
	if tip.Bits() != consensus.BigToCompact(p.PowLimit) {
		t.Errorf("tip bits = %08x, want pow limit", tip.Bits())
	}

	// Height-keyed and hash-keyed lookups agree.
	for h := int32(0); h <= 4; h++ {
		node := chain.NodeAt(h)
		if node == nil || node.Height() != h {
			t.Fatalf("NodeAt(%d) = %v", h, node)
		}
		if got := chain.LookupHash(node.Hash()); got != node {
			t.Errorf("LookupHash mismatch at height %d", h)
		}
	}
	if chain.NodeAt(5) != nil || chain.NodeAt(-1) != nil {
		t.Error("out-of-range lookup returned a node")
	}

	// Ancestor navigation through the consensus view.
	if anc := tip.Ancestor(2); anc == nil || anc.Height() != 2 {
		t.Error("tip.Ancestor(2) broken")
	}
	if tip.Ancestor(9) != nil {
		t.Error("ancestor above tip height")
	}
	if genesis := chain.NodeAt(0); genesis.Parent() != nil {
		t.Error("genesis has a parent")
	}

	// Chainwork accumulates monotonically.
	if chain.TotalWork().Sign() <= 0 {
		t.Error("total work is zero")
	}
	if chain.NodeAt(3).WorkSum().Cmp(chain.NodeAt(1).WorkSum()) <= 0 {
		t.Error("chainwork not increasing")
	}
}

func TestChainRejectsBadHeaders(t *testing.T) {
	p := &params.RegressionNetParams
	chain := NewChainIndex(p, nil, nil)
	extendChain(t, chain, p, 2)
	tip := chain.Tip()

	// Wrong previous block.
	h := &BlockHeader{
		Version:   1,
		PrevBlock: common.HexToHash("0xdeadbeef"),
		Timestamp: tip.Time() + 600,
		Bits:      chain.NextRequiredBits(tip.Time() + 600),
	}
	if _, err := chain.ConnectHeader(h); !errors.Is(err, ErrUnknownPrevBlock) {
		t.Errorf("wrong prev: got %v, want ErrUnknownPrevBlock", err)
	}

	// Wrong difficulty.
	h = &BlockHeader{
		Version:   1,
		PrevBlock: tip.Hash(),
		Timestamp: tip.Time() + 600,
		Bits:      0x1d00ffff, // below the regtest requirement
	}
	if _, err := chain.ConnectHeader(h); !errors.Is(err, ErrUnexpectedDifficulty) {
		t.Errorf("wrong bits: got %v, want ErrUnexpectedDifficulty", err)
	}

	// Unmined header: with the regtest limit a hash only fails about half
	// the time, so search for a nonce that does NOT satisfy the target.
	h = &BlockHeader{
		Version:   1,
		PrevBlock: tip.Hash(),
		Timestamp: tip.Time() + 600,
		Bits:      chain.NextRequiredBits(tip.Time() + 600),
	}
	for consensus.CheckProofOfWork(h.Hash(), h.Bits, p) {
		h.Nonce++
	}
	if _, err := chain.ConnectHeader(h); !errors.Is(err, ErrHighHash) {
		t.Errorf("high hash: got %v, want ErrHighHash", err)
	}

	if chain.Height() != 1 {
		t.Fatalf("rejected headers changed the chain height to %d", chain.Height())
	}
}

func TestChainPersistAndReload(t *testing.T) {
	p := &params.RegressionNetParams
	db := newMemStore()

	chain := NewChainIndex(p, db, nil)
	if err := chain.Load(); err != nil {
		t.Fatalf("load empty store: %v", err)
	}
	extendChain(t, chain, p, 4)

	reloaded := NewChainIndex(p, db, nil)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Height() != chain.Height() {
		t.Fatalf("reloaded height = %d, want %d", reloaded.Height(), chain.Height())
	}
	if reloaded.Tip().Hash() != chain.Tip().Hash() {
		t.Fatal("reloaded tip hash differs")
	}
	if reloaded.TotalWork().Cmp(chain.TotalWork()) != 0 {
		t.Fatal("reloaded total work differs")
	}
}

func TestChainRetargetSinkWired(t *testing.T) {
	// A parameter set with a tiny interval and no fork in range, to drive a
	// real retarget through ConnectHeader.
	p := params.RegressionNetParams
	p.PowNoRetargeting = false
	p.PowAllowMinDifficultyBlocks = false
	p.PowTargetTimespan = 4 * p.PowTargetSpacing // interval of 4 blocks
	p.ForkHeight = 1 << 30

	sink := &countingSink{}
	chain := NewChainIndex(&p, nil, sink)
	extendChain(t, chain, &p, 5)

	// Connecting the block at height 4 crosses the 4-block cadence and must
	// fire a retarget event.
	if sink.count == 0 {
		t.Fatal("no retarget events observed")
	}
}

type countingSink struct{ count int }

func (s *countingSink) RetargetComputed(consensus.RetargetEvent) { s.count++ }
