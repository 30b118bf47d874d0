package core

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"diamond-node/consensus"
	"diamond-node/params"
)

var (
	// ErrUnknownPrevBlock is returned when a header does not extend the
	// current tip.
	ErrUnknownPrevBlock = errors.New("header does not connect to the current tip")

	// ErrUnexpectedDifficulty is returned when a header's claimed target
	// differs from the required one.
	ErrUnexpectedDifficulty = errors.New("block difficulty does not match the required target")

	// ErrHighHash is returned when a header's hash does not satisfy its
	// claimed target.
	ErrHighHash = errors.New("block hash is higher than the required target")
)

// ChainIndex is the height-keyed main-chain index. It owns the BlockIndex
// entries and supplies the ancestor lookups the consensus package needs.
// All methods are safe for concurrent use.
type ChainIndex struct {
	p    *params.Params
	db   HeaderStore
	sink consensus.EventSink

	mu     sync.RWMutex
	nodes  []*BlockIndex
	byHash map[common.Hash]*BlockIndex
}

// HeaderStore persists connected headers. Implementations must tolerate
// missing keys by returning (nil, nil) from Get.
type HeaderStore interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
}

// NewChainIndex creates an empty index. db may be nil for an in-memory
// chain; sink may be nil to suppress retarget events.
func NewChainIndex(p *params.Params, db HeaderStore, sink consensus.EventSink) *ChainIndex {
	return &ChainIndex{
		p:      p,
		db:     db,
		sink:   sink,
		byHash: make(map[common.Hash]*BlockIndex),
	}
}

// Tip returns the current best block, or nil for an empty index.
func (c *ChainIndex) Tip() *BlockIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tip()
}

func (c *ChainIndex) tip() *BlockIndex {
	if len(c.nodes) == 0 {
		return nil
	}
	return c.nodes[len(c.nodes)-1]
}

// Height returns the tip height, or -1 for an empty index.
func (c *ChainIndex) Height() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int32(len(c.nodes)) - 1
}

// NodeAt returns the block at the given height, or nil if out of range.
func (c *ChainIndex) NodeAt(height int32) *BlockIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodeAt(height)
}

func (c *ChainIndex) nodeAt(height int32) *BlockIndex {
	if height < 0 || int(height) >= len(c.nodes) {
		return nil
	}
	return c.nodes[height]
}

// LookupHash returns the block with the given hash, or nil if unknown.
func (c *ChainIndex) LookupHash(hash common.Hash) *BlockIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byHash[hash]
}

// NextRequiredBits returns the compact target the next block must carry,
// given its intended timestamp.
func (c *ChainIndex) NextRequiredBits(headerTime int64) uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return consensus.NextRequiredTarget(blockNodeOrNil(c.tip()), headerTime, c.p, c.sink)
}

// ConnectHeader validates a header against the consensus rules and, on
// success, appends it to the index and persists it.
func (c *ChainIndex) ConnectHeader(h *BlockHeader) (*BlockIndex, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, err := c.connect(h)
	if err != nil {
		return nil, err
	}
	if c.db != nil {
		if err := putHeader(c.db, node.height, &node.header); err != nil {
			// Roll back the in-memory connect so index and store agree.
			c.nodes = c.nodes[:len(c.nodes)-1]
			delete(c.byHash, node.hash)
			return nil, fmt.Errorf("persist header %d: %w", node.height, err)
		}
	}
	return node, nil
}

func (c *ChainIndex) connect(h *BlockHeader) (*BlockIndex, error) {
	tip := c.tip()

	var prevHash common.Hash
	if tip != nil {
		prevHash = tip.hash
	}
	if h.PrevBlock != prevHash {
		return nil, fmt.Errorf("%w: header prev %s, tip %s",
			ErrUnknownPrevBlock, h.PrevBlock.Hex(), prevHash.Hex())
	}

	required := consensus.NextRequiredTarget(blockNodeOrNil(tip), h.Timestamp, c.p, c.sink)
	if h.Bits != required {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrUnexpectedDifficulty, h.Bits, required)
	}

	hash := h.Hash()
	if !consensus.CheckProofOfWork(hash, h.Bits, c.p) {
		return nil, fmt.Errorf("%w: hash %s, bits %08x", ErrHighHash, hash.Hex(), h.Bits)
	}

	workSum := consensus.CalcBlockWork(h.Bits)
	if tip != nil {
		workSum.Add(workSum, tip.workSum)
	}
	node := &BlockIndex{
		header:  *h,
		hash:    hash,
		height:  int32(len(c.nodes)),
		workSum: workSum,
		view:    c.nodes[:len(c.nodes):len(c.nodes)],
	}
	c.nodes = append(c.nodes, node)
	c.byHash[hash] = node
	return node, nil
}

// Load replays all persisted headers through full validation. Call once,
// before the index is shared.
func (c *ChainIndex) Load() error {
	if c.db == nil {
		return nil
	}
	tipHeight, err := getTipHeight(c.db)
	if err != nil {
		return fmt.Errorf("read tip height: %w", err)
	}
	if tipHeight < 0 {
		return nil // empty store
	}
	for height := int32(0); height <= tipHeight; height++ {
		h, err := getHeader(c.db, height)
		if err != nil {
			return fmt.Errorf("read header %d: %w", height, err)
		}
		if h == nil {
			return fmt.Errorf("header store has tip %d but no header at %d", tipHeight, height)
		}
		c.mu.Lock()
		_, err = c.connect(h)
		c.mu.Unlock()
		if err != nil {
			return fmt.Errorf("replay header %d: %w", height, err)
		}
	}
	return nil
}

// TotalWork returns the cumulative chainwork of the tip, or zero for an
// empty index.
func (c *ChainIndex) TotalWork() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if tip := c.tip(); tip != nil {
		return new(big.Int).Set(tip.workSum)
	}
	return new(big.Int)
}

// blockNodeOrNil avoids handing consensus a typed-nil interface.
func blockNodeOrNil(bi *BlockIndex) consensus.BlockNode {
	if bi == nil {
		return nil
	}
	return bi
}
