// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package action

import (
	"testing"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
	"github.com/chia-network/registry-core/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func leafHash(label string) chainhash.Hash {
	return clvm.HashAtom([]byte(label))
}

func TestTableRootOrderIndependent(t *testing.T) {
	a := leafHash("register")
	b := leafHash("refund")
	c := leafHash("oracle")

	t1 := NewTable([]chainhash.Hash{a, b, c})
	t2 := NewTable([]chainhash.Hash{c, a, b})
	assert.Equal(t, t1.Root(), t2.Root())
}

func TestProofVerifiesForEveryMember(t *testing.T) {
	hashes := []chainhash.Hash{
		leafHash("register"), leafHash("refund"), leafHash("oracle"),
		leafHash("update-state"), leafHash("launch-batch"),
	}
	table := NewTable(hashes)
	for _, h := range hashes {
		proof, err := table.Proof(h)
		require.NoError(t, err)
		require.NoError(t, table.Verify(h, proof))
	}
}

func TestProofRejectsNonMember(t *testing.T) {
	table := NewTable([]chainhash.Hash{leafHash("register"), leafHash("refund")})
	_, err := table.Proof(leafHash("not-a-member"))
	assert.ErrorIs(t, err, ErrNotInTable)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	hashes := []chainhash.Hash{leafHash("a"), leafHash("b"), leafHash("c"), leafHash("d")}
	table := NewTable(hashes)
	proof, err := table.Proof(hashes[0])
	require.NoError(t, err)

	proof[0].Sibling = leafHash("tampered")
	assert.ErrorIs(t, table.Verify(hashes[0], proof), ErrBadProof)
}

func TestProofVerifiesForEveryMemberAcrossSizes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		hashes := make([]chainhash.Hash, n)
		seen := make(map[chainhash.Hash]bool)
		for i := range hashes {
			for {
				h := leafHash(rapid.StringN(1, 12, 12).Draw(rt, "label"))
				if !seen[h] {
					seen[h] = true
					hashes[i] = h
					break
				}
			}
		}
		table := NewTable(hashes)
		for _, h := range hashes {
			proof, err := table.Proof(h)
			if err != nil {
				rt.Fatalf("proof error: %v", err)
			}
			if err := table.Verify(h, proof); err != nil {
				rt.Fatalf("verify error: %v", err)
			}
		}
	})
}

// stubAction is a minimal Action[int, int] implementation used to exercise
// Layer.Spend's threading and finalizer check.
type stubAction struct {
	ph     chainhash.Hash
	delta  int
	create *wire.Condition
}

func (s stubAction) PuzzleHash() chainhash.Hash { return s.ph }

func (s stubAction) Apply(state int, solution int) (int, []wire.Condition, error) {
	var conds []wire.Condition
	if s.create != nil {
		conds = append(conds, *s.create)
	}
	return state + s.delta + solution, conds, nil
}

func TestLayerSpendThreadsStateAndChecksFinalizer(t *testing.T) {
	successorPH := leafHash("successor")
	incAction := stubAction{ph: leafHash("inc"), delta: 1}
	finalAction := stubAction{
		ph:    leafHash("final"),
		delta: 0,
		create: &wire.Condition{
			Opcode: wire.OpCreateCoin,
			Args:   [][]byte{successorPH[:], {1}},
		},
	}

	table := NewTable([]chainhash.Hash{incAction.ph, finalAction.ph})
	layer := NewLayer[int, int](table)

	finalState, conds, err := layer.Spend(
		10,
		[]Action[int, int]{incAction, finalAction},
		[]int{5, 0},
		successorPH,
	)
	require.NoError(t, err)
	assert.Equal(t, 16, finalState)
	assert.Len(t, conds, 1)
}

func TestLayerSpendRejectsMissingSuccessorCoin(t *testing.T) {
	onlyAction := stubAction{ph: leafHash("only"), delta: 1}
	table := NewTable([]chainhash.Hash{onlyAction.ph})
	layer := NewLayer[int, int](table)

	_, _, err := layer.Spend(0, []Action[int, int]{onlyAction}, []int{0}, leafHash("successor"))
	assert.ErrorIs(t, err, ErrFinalizerViolation)
}

func TestLayerSpendRejectsActionNotInTable(t *testing.T) {
	tableAction := stubAction{ph: leafHash("in-table"), delta: 0}
	outsideAction := stubAction{ph: leafHash("outside"), delta: 0}
	table := NewTable([]chainhash.Hash{tableAction.ph})
	layer := NewLayer[int, int](table)

	_, _, err := layer.Spend(0, []Action[int, int]{outsideAction}, []int{0}, leafHash("successor"))
	assert.ErrorIs(t, err, ErrNotInTable)
}
