// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package action

import (
	"sort"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
)

func sortHashes(hashes []chainhash.Hash) {
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Less(hashes[j])
	})
}

// nodeHash combines two Merkle tree node hashes into their parent, reusing
// the same tagged-pair tree-hash scheme the rest of the system uses for
// puzzle identity — there is no separate Merkle-tree hash function on a
// CLVM-style chain, just the pair tree hash applied to a balanced binary
// tree of leaves.
func nodeHash(left, right chainhash.Hash) chainhash.Hash {
	return clvm.HashPair(left, right)
}

// ProofStep is one level of a Merkle membership proof: the sibling hash
// at that level, plus whether the sibling sits to the right of the
// accumulated hash. A verifier who does not know a leaf's original
// position still needs this to combine nodes in the right order.
type ProofStep struct {
	Sibling        chainhash.Hash
	SiblingOnRight bool
}

// merkleRoot computes the root of a balanced binary Merkle tree over
// leaves, duplicating the final leaf up a level whenever a level has an
// odd number of nodes.
func merkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return clvm.NilHash
	}
	level := append([]chainhash.Hash(nil), leaves...)
	for len(level) > 1 {
		level = combineLevel(level)
	}
	return level[0]
}

func combineLevel(level []chainhash.Hash) []chainhash.Hash {
	next := make([]chainhash.Hash, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		if i+1 < len(level) {
			next = append(next, nodeHash(level[i], level[i+1]))
		} else {
			next = append(next, nodeHash(level[i], level[i]))
		}
	}
	return next
}

// buildProof returns the bottom-up sibling path needed to recompute the
// root from leaves[index].
func buildProof(leaves []chainhash.Hash, index int) []ProofStep {
	var proof []ProofStep
	level := append([]chainhash.Hash(nil), leaves...)
	idx := index
	for len(level) > 1 {
		var step ProofStep
		if idx%2 == 0 {
			if idx+1 < len(level) {
				step = ProofStep{Sibling: level[idx+1], SiblingOnRight: true}
			} else {
				step = ProofStep{Sibling: level[idx], SiblingOnRight: true}
			}
		} else {
			step = ProofStep{Sibling: level[idx-1], SiblingOnRight: false}
		}
		proof = append(proof, step)
		level = combineLevel(level)
		idx /= 2
	}
	return proof
}

// merkleRootFromProof recomputes a Merkle root from a leaf and its
// direction-annotated proof.
func merkleRootFromProof(leaf chainhash.Hash, proof []ProofStep) chainhash.Hash {
	acc := leaf
	for _, step := range proof {
		if step.SiblingOnRight {
			acc = nodeHash(acc, step.Sibling)
		} else {
			acc = nodeHash(step.Sibling, acc)
		}
	}
	return acc
}
