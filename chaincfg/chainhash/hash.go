// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte tree-hash type used throughout the
// registry core: coin identifiers, puzzle hashes, state hashes, and slot
// value hashes are all chainhash.Hash values.
package chainhash

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the size, in bytes, of the tree hashes used by this system.
const HashSize = 32

// ErrHashStrSize describes an error that indicates the caller specified a
// hash string that does not have the right number of characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %d bytes", HashSize*2)

// Hash is a 32-byte tree hash: the SHA-256-based commitment defined over the
// CLVM pair/atom tree shape. Unlike Bitcoin's block/tx hashes, values here
// are not byte-reversed for display — they print in the same big-endian
// order the chain itself serializes them in.
type Hash [HashSize]byte

// String returns the Hash as a hexadecimal string.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// CloneBytes returns a copy of the bytes which make up the hash.
func (h *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, h[:])
	return newHash
}

// SetBytes sets the bytes which make up the hash to the passed slice.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return fmt.Errorf("invalid hash length of %d, want %d", len(newHash), HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// IsEqual returns true if target is the same as the hash.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// NewHash returns a new Hash from a byte slice.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	if err := sh.SetBytes(newHash); err != nil {
		return nil, err
	}
	return &sh, nil
}

// NewHashFromStr creates a Hash from a hash string.
func NewHashFromStr(hash string) (*Hash, error) {
	if len(hash) != HashSize*2 {
		return nil, ErrHashStrSize
	}
	buf, err := hex.DecodeString(hash)
	if err != nil {
		return nil, err
	}
	var ret Hash
	copy(ret[:], buf)
	return &ret, nil
}

// Less reports whether h should sort before other when both are interpreted
// as big-endian unsigned integers. Used for canonical ordering of hash sets
// (e.g. building a deterministic Merkle tree over action puzzle hashes).
func (h Hash) Less(other Hash) bool {
	for i := 0; i < HashSize; i++ {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}
