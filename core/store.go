package core

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Header store layout: 'h' + big-endian height -> RLP header record, plus a
// single tip key holding the best height.
var tipKey = []byte("T")

func headerKey(height int32) []byte {
	key := make([]byte, 9)
	key[0] = 'h'
	binary.BigEndian.PutUint64(key[1:], uint64(height))
	return key
}

// storedHeader mirrors BlockHeader with RLP-friendly unsigned fields.
type storedHeader struct {
	Version    uint32
	PrevBlock  common.Hash
	MerkleRoot common.Hash
	Time       uint32
	Bits       uint32
	Nonce      uint32
}

func putHeader(db HeaderStore, height int32, h *BlockHeader) error {
	enc, err := rlp.EncodeToBytes(&storedHeader{
		Version:    uint32(h.Version),
		PrevBlock:  h.PrevBlock,
		MerkleRoot: h.MerkleRoot,
		Time:       uint32(h.Timestamp),
		Bits:       h.Bits,
		Nonce:      h.Nonce,
	})
	if err != nil {
		return err
	}
	if err := db.Put(headerKey(height), enc); err != nil {
		return err
	}
	var tip [8]byte
	binary.BigEndian.PutUint64(tip[:], uint64(height))
	return db.Put(tipKey, tip[:])
}

func getHeader(db HeaderStore, height int32) (*BlockHeader, error) {
	raw, err := db.Get(headerKey(height))
	if err != nil || raw == nil {
		return nil, err
	}
	var sh storedHeader
	if err := rlp.DecodeBytes(raw, &sh); err != nil {
		return nil, fmt.Errorf("decode header %d: %w", height, err)
	}
	return &BlockHeader{
		Version:    int32(sh.Version),
		PrevBlock:  sh.PrevBlock,
		MerkleRoot: sh.MerkleRoot,
		Timestamp:  int64(sh.Time),
		Bits:       sh.Bits,
		Nonce:      sh.Nonce,
	}, nil
}

func getTipHeight(db HeaderStore) (int32, error) {
	raw, err := db.Get(tipKey)
	if err != nil {
		return -1, err
	}
	if raw == nil {
		return -1, nil
	}
	if len(raw) != 8 {
		return -1, fmt.Errorf("malformed tip record of %d bytes", len(raw))
	}
	return int32(binary.BigEndian.Uint64(raw)), nil
}
