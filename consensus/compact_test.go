package consensus

import (
	"math/big"
	"testing"
)

func TestCompactToBig(t *testing.T) {
	tests := []struct {
		name     string
		bits     uint32
		want     string // hex
		negative bool
		overflow bool
	}{
		{"zero", 0x00000000, "0", false, false},
		{"zero mantissa", 0x01000000, "0", false, false},
		{"mantissa lost below exponent", 0x01003456, "0", false, false},
		{"one byte survives", 0x01123456, "12", false, false},
		{"two bytes", 0x02123456, "1234", false, false},
		{"three bytes", 0x03123456, "123456", false, false},
		{"shift left one byte", 0x04123456, "12345600", false, false},
		{"high bit not sign in shifted byte", 0x02008000, "80", false, false},
		{"five byte value", 0x05009234, "92340000", false, false},
		{"mainnet limit", 0x1d00ffff, "ffff0000000000000000000000000000000000000000000000000000", false, false},
		{"historical retarget", 0x1b0404cb, "404cb000000000000000000000000000000000000000000000000", false, false},
		{"negative", 0x04923456, "12345600", true, false},
		{"negative small", 0x01fedcba, "7e", true, false},
		{"overflow size", 0x23000001, "", false, true},
		{"overflow size 34 wide mantissa", 0x22000100, "", false, true},
		{"overflow size 33", 0x217fffff, "", false, true},
		{"no overflow at size 34 one byte", 0x22000001, "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, negative, overflow := CompactToBig(tt.bits)
			if negative != tt.negative {
				t.Errorf("negative = %t, want %t", negative, tt.negative)
			}
			if overflow != tt.overflow {
				t.Errorf("overflow = %t, want %t", overflow, tt.overflow)
			}
			if tt.want != "" {
				want, _ := new(big.Int).SetString(tt.want, 16)
				if target.Cmp(want) != 0 {
					t.Errorf("target = %x, want %s", target, tt.want)
				}
			}
		})
	}
}

func TestBigToCompact(t *testing.T) {
	tests := []struct {
		hex  string
		want uint32
	}{
		{"0", 0x00000000},
		{"1", 0x01010000},
		{"7f", 0x017f0000},
		{"80", 0x02008000}, // high bit must dodge the sign flag
		{"1234", 0x02123400},
		{"123456", 0x03123456},
		{"12345678", 0x04123456}, // low byte truncated
		{"92340000", 0x05009234},
		{"ffff0000000000000000000000000000000000000000000000000000", 0x1d00ffff},
		{"00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 0x1d00ffff},
		{"7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 0x207fffff},
	}
	for _, tt := range tests {
		n, ok := new(big.Int).SetString(tt.hex, 16)
		if !ok {
			t.Fatalf("bad test constant %q", tt.hex)
		}
		if got := BigToCompact(n); got != tt.want {
			t.Errorf("BigToCompact(%s) = %08x, want %08x", tt.hex, got, tt.want)
		}
	}
}

// Normalized encodings must survive a decode/encode round trip exactly.
func TestCompactRoundTrip(t *testing.T) {
	compacts := []uint32{
		0x01120000, 0x02123400, 0x03123456, 0x04123456,
		0x1d00ffff, 0x1c0ae493, 0x1b0404cb, 0x1d3fffff,
		0x207fffff, 0x181bc330, 0x170d21b9,
	}
	for _, bits := range compacts {
		target, negative, overflow := CompactToBig(bits)
		if negative || overflow {
			t.Fatalf("%08x: unexpected flags negative=%t overflow=%t", bits, negative, overflow)
		}
		if got := BigToCompact(target); got != bits {
			t.Errorf("round trip %08x -> %x -> %08x", bits, target, got)
		}
	}
}
