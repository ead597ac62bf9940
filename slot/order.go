// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package slot

import "math/big"

// MinValueBytes and MaxValueBytes are the 32-byte big-endian encodings of
// the numerically smallest and largest signed 256-bit integers,
// 0x80...00 and 0x7f...ff. Every ordered slot family carries sentinel
// slots at these two values acting as head/tail markers, so every
// non-sentinel value always has a well-defined left and right neighbor.
var (
	MinValueBytes = [32]byte{0x80}
	MaxValueBytes = func() [32]byte {
		var b [32]byte
		for i := range b {
			b[i] = 0xff
		}
		b[0] = 0x7f
		return b
	}()
)

// CompareSigned256 compares two 32-byte big-endian values as signed
// 256-bit integers, returning -1, 0, or 1 the way bytes.Compare does for
// unsigned byte slices. This is the ordering relation every doubly-linked
// slot family (CATalog's asset IDs, XCHandles' handle hashes) uses.
func CompareSigned256(a, b [32]byte) int {
	return signedBigInt(a).Cmp(signedBigInt(b))
}

// LessSigned256 reports whether a sorts strictly before b under signed
// 256-bit comparison.
func LessSigned256(a, b [32]byte) bool {
	return CompareSigned256(a, b) < 0
}

func signedBigInt(v [32]byte) *big.Int {
	n := new(big.Int).SetBytes(v[:])
	if v[0]&0x80 != 0 {
		// Negative: subtract 2^256 to interpret the big-endian bytes as
		// two's-complement.
		modulus := new(big.Int).Lsh(big.NewInt(1), 256)
		n.Sub(n, modulus)
	}
	return n
}
