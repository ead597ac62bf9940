// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package clvm implements the tree-hash algorithm used to identify CLVM
// puzzle and solution trees, plus a Curry helper that computes the tree
// hash of a curried program without ever evaluating it. Every puzzle hash,
// coin identity, and value commitment in this system is a tree hash
// produced by this package.
package clvm

import (
	"crypto/sha256"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
)

// Tagging bytes distinguishing an atom node from a pair node before hashing,
// matching the universal CLVM tree-hash convention: every node is either a
// byte-string atom or a (left . right) pair, and the tag prevents a pair's
// hash from ever colliding with an atom's.
const (
	atomTag byte = 0x01
	pairTag byte = 0x02
)

// HashAtom returns the tree hash of a CLVM atom (a byte string, including
// the empty string representing nil).
func HashAtom(atom []byte) chainhash.Hash {
	h := sha256.New()
	h.Write([]byte{atomTag})
	h.Write(atom)
	var out chainhash.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// HashPair returns the tree hash of a CLVM cons pair given the tree hashes
// of its left and right children.
func HashPair(left, right chainhash.Hash) chainhash.Hash {
	h := sha256.New()
	h.Write([]byte{pairTag})
	h.Write(left[:])
	h.Write(right[:])
	var out chainhash.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Well-known small-atom hashes reused throughout curry composition.
var (
	// NilHash is the tree hash of the empty atom, CLVM's "()" / false / nil.
	NilHash = HashAtom(nil)

	// OneHash is the tree hash of the single-byte atom 0x01. It does
	// double duty as both the "q" (quote) opcode and the path reference
	// "1" (the whole solution) — both are the atom value 1, so they share
	// a tree hash.
	OneHash = HashAtom([]byte{0x01})

	// aOpHash is the tree hash of the "a" (apply) opcode, atom value 2.
	aOpHash = HashAtom([]byte{0x02})

	// cOpHash is the tree hash of the "c" (cons) opcode, atom value 4.
	cOpHash = HashAtom([]byte{0x04})
)

// consList builds the tree hash of a proper CLVM list (elems...) from the
// tree hashes of its elements, i.e. cons(e0, cons(e1, ... cons(eN, nil))).
func consList(elems ...chainhash.Hash) chainhash.Hash {
	tail := NilHash
	for i := len(elems) - 1; i >= 0; i-- {
		tail = HashPair(elems[i], tail)
	}
	return tail
}

// quoted returns the tree hash of (q . value), i.e. cons(1, value) — a
// dotted pair, not a proper list, since CLVM's quote form is literally
// "(1 . VALUE)".
func quoted(value chainhash.Hash) chainhash.Hash {
	return HashPair(OneHash, value)
}

// Curry returns the tree hash of modHash curried with argHashes, i.e. the
// tree hash of the program:
//
//	(a (q . MOD) (c (q . ARG0) (c (q . ARG1) ... (c (q . ARGN) 1))))
//
// computed directly from the tree hashes of MOD and each argument, without
// ever materializing or evaluating the curried program itself. This is the
// operation every puzzle-hash constant in the puzzles package is built
// with: currying a mod with per-singleton state yields a puzzle hash that
// can be derived off-chain and verified on-chain by full nodes that never
// see anything but the final puzzle reveal.
func Curry(modHash chainhash.Hash, argHashes ...chainhash.Hash) chainhash.Hash {
	rest := OneHash
	for i := len(argHashes) - 1; i >= 0; i-- {
		rest = consList(cOpHash, quoted(argHashes[i]), rest)
	}
	return consList(aOpHash, quoted(modHash), rest)
}

// CurryBytes is a convenience wrapper around Curry for callers holding the
// curried arguments as raw atoms rather than already-hashed values.
func CurryBytes(modHash chainhash.Hash, args ...[]byte) chainhash.Hash {
	hashes := make([]chainhash.Hash, len(args))
	for i, a := range args {
		hashes[i] = HashAtom(a)
	}
	return Curry(modHash, hashes...)
}
