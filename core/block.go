package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
)

// blockHeaderLen is the size of a serialized block header.
const blockHeaderLen = 80

// BlockHeader is the 80-byte proof-of-work header. Fields serialize
// little-endian in declaration order; hashes serialize in internal
// (reversed) byte order, as on the wire.
type BlockHeader struct {
	Version    int32       `json:"version"`
	PrevBlock  common.Hash `json:"parentHash"`
	MerkleRoot common.Hash `json:"merkleRoot"`
	Timestamp  int64       `json:"timestamp"`
	Bits       uint32      `json:"bits"`
	Nonce      uint32      `json:"nonce"`
}

// Serialize writes the canonical 80-byte encoding of the header.
func (h *BlockHeader) Serialize(w io.Writer) error {
	var buf [blockHeaderLen]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Version))
	prev, merkle := reverse(h.PrevBlock), reverse(h.MerkleRoot)
	copy(buf[4:36], prev[:])
	copy(buf[36:68], merkle[:])
	binary.LittleEndian.PutUint32(buf[68:72], uint32(h.Timestamp))
	binary.LittleEndian.PutUint32(buf[72:76], h.Bits)
	binary.LittleEndian.PutUint32(buf[76:80], h.Nonce)
	_, err := w.Write(buf[:])
	return err
}

// Deserialize reads the canonical 80-byte encoding of the header.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	var buf [blockHeaderLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fmt.Errorf("short block header: %w", err)
	}
	h.Version = int32(binary.LittleEndian.Uint32(buf[0:4]))
	h.PrevBlock = reverse(common.Hash(buf[4:36]))
	h.MerkleRoot = reverse(common.Hash(buf[36:68]))
	h.Timestamp = int64(binary.LittleEndian.Uint32(buf[68:72]))
	h.Bits = binary.LittleEndian.Uint32(buf[72:76])
	h.Nonce = binary.LittleEndian.Uint32(buf[76:80])
	return nil
}

// Hash returns the double-SHA256 of the serialized header, in big-endian
// (display) byte order so it compares directly as a 256-bit magnitude.
func (h *BlockHeader) Hash() common.Hash {
	var buf bytes.Buffer
	buf.Grow(blockHeaderLen)
	_ = h.Serialize(&buf) // writing to a bytes.Buffer cannot fail
	first := sha256.Sum256(buf.Bytes())
	second := sha256.Sum256(first[:])
	return reverse(common.Hash(second))
}

func reverse(h common.Hash) common.Hash {
	var out common.Hash
	for i := range h {
		out[i] = h[len(h)-1-i]
	}
	return out
}
