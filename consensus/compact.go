package consensus

import "math/big"

// CompactToBig expands a 32-bit compact representation into a 256-bit
// target. The compact form packs the target as a base-256 floating point
// number: the high byte is the width of the full value in bytes and the low
// 23 bits are the most significant bytes of the value. Bit 23 is a sign
// flag.
//
// Malformed encodings are reported through the negative and overflow return
// flags rather than an error, so that adversarial network-supplied values
// can be evaluated without diverging control flow. The returned target is
// still the reconstructed magnitude in those cases.
func CompactToBig(bits uint32) (target *big.Int, negative, overflow bool) {
	size := bits >> 24
	mantissa := bits & 0x007fffff

	if size <= 3 {
		mantissa >>= 8 * (3 - size)
		target = big.NewInt(int64(mantissa))
	} else {
		target = big.NewInt(int64(mantissa))
		target.Lsh(target, uint(8*(size-3)))
	}

	negative = mantissa != 0 && bits&0x00800000 != 0
	overflow = mantissa != 0 && (size > 34 ||
		(mantissa > 0xff && size > 33) ||
		(mantissa > 0xffff && size > 32))
	return target, negative, overflow
}

// BigToCompact packs a non-negative 256-bit target into its compact
// representation. Only the three most significant bytes survive, so the
// conversion is lossy; that truncation is part of the consensus rules, not
// a defect. If the high bit of the leading mantissa byte would collide with
// the sign flag the mantissa is shifted down one byte and the size bumped.
func BigToCompact(target *big.Int) uint32 {
	if target.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	size := uint32((target.BitLen() + 7) / 8)
	if size <= 3 {
		mantissa = uint32(target.Uint64() << (8 * (3 - size)))
	} else {
		shifted := new(big.Int).Rsh(target, uint(8*(size-3)))
		mantissa = uint32(shifted.Uint64())
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		size++
	}
	return size<<24 | mantissa
}
