package core

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"diamond-node/consensus"
)

// BlockIndex is one entry of the chain index: a header plus its position
// and cumulative chainwork. Entries are immutable once connected.
type BlockIndex struct {
	header  BlockHeader
	hash    common.Hash
	height  int32
	workSum *big.Int

	// view is the chain below this block, keyed by height. The prefix is
	// immutable once the block connects, so lookups need no locking.
	view []*BlockIndex
}

// Header returns a copy of the indexed header.
func (bi *BlockIndex) Header() BlockHeader { return bi.header }

// Hash returns the block hash in big-endian order.
func (bi *BlockIndex) Hash() common.Hash { return bi.hash }

// WorkSum returns the cumulative chainwork up to and including this block.
func (bi *BlockIndex) WorkSum() *big.Int { return new(big.Int).Set(bi.workSum) }

// Height implements consensus.BlockNode.
func (bi *BlockIndex) Height() int32 { return bi.height }

// Time implements consensus.BlockNode.
func (bi *BlockIndex) Time() int64 { return bi.header.Timestamp }

// Bits implements consensus.BlockNode.
func (bi *BlockIndex) Bits() uint32 { return bi.header.Bits }

// Parent implements consensus.BlockNode. It returns nil (not a typed nil)
// for the genesis block.
func (bi *BlockIndex) Parent() consensus.BlockNode {
	if bi.height == 0 {
		return nil
	}
	return bi.view[bi.height-1]
}

// Ancestor implements consensus.BlockNode with an O(1) height-keyed lookup
// in the owning chain index.
func (bi *BlockIndex) Ancestor(height int32) consensus.BlockNode {
	if height < 0 || height > bi.height {
		return nil
	}
	if height == bi.height {
		return bi
	}
	return bi.view[height]
}
