package brightset

import (
	"fmt"
	"math/big"
	mathbits "math/bits"
)

// BitMask is a set of sample indices over a dataset's canonical sample
// order: bit i set means the i-th sample is a member. The server encodes
// tag membership this way (see Tag.BitMaskData). A BitMask is immutable
// once constructed.
type BitMask struct {
	bits *big.Int
}

// BitMaskFromHex decodes a bitmask from its hexadecimal encoding. The
// input must consist of hex digits only: no sign, no "0x" prefix, no
// separators. The first digit holds the most significant four bits.
func BitMaskFromHex(s string) (BitMask, error) {
	if s == "" {
		return BitMask{}, fmt.Errorf("decoding bitmask: empty hex string")
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return BitMask{}, fmt.Errorf("decoding bitmask: invalid hex character %q in %q", s[i], s)
		}
	}
	bits, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return BitMask{}, fmt.Errorf("decoding bitmask: invalid hex string %q", s)
	}
	return BitMask{bits: bits}, nil
}

// BitMaskFromIndices builds a bitmask with the given (non-negative)
// indices set.
func BitMaskFromIndices(indices []int) BitMask {
	bits := new(big.Int)
	for _, idx := range indices {
		bits.SetBit(bits, idx, 1)
	}
	return BitMask{bits: bits}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// ToHex encodes the bitmask as a lowercase hexadecimal string, without
// sign or prefix. The empty mask encodes as "0".
func (m BitMask) ToHex() string {
	if m.bits == nil {
		return "0"
	}
	return m.bits.Text(16)
}

// ToIndices returns the positions of all set bits, ascending.
func (m BitMask) ToIndices() []int {
	if m.bits == nil {
		return nil
	}
	indices := make([]int, 0, m.Count())
	for i := 0; i < m.bits.BitLen(); i++ {
		if m.bits.Bit(i) == 1 {
			indices = append(indices, i)
		}
	}
	return indices
}

// Test reports whether bit i is set. Bits beyond the encoded length read
// as unset.
func (m BitMask) Test(i int) bool {
	if m.bits == nil || i < 0 {
		return false
	}
	return m.bits.Bit(i) == 1
}

// Count returns the number of set bits.
func (m BitMask) Count() int {
	if m.bits == nil {
		return 0
	}
	count := 0
	for _, word := range m.bits.Bits() {
		count += mathbits.OnesCount(uint(word))
	}
	return count
}
