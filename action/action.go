// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package action implements the action-dispatched inner puzzle shared by
// every registry singleton in this system: a merklized table of permitted
// action puzzle hashes, a per-action contract threading a registry's state
// from S[i-1] to S[i] and emitting conditions, and a finalizer enforcing
// that a spend produces exactly one successor coin.
package action

import (
	"errors"
	"fmt"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/wire"
)

var (
	// ErrNotInTable is returned when an action's puzzle hash has no
	// corresponding Merkle proof in the dispatch table.
	ErrNotInTable = errors.New("action: puzzle hash is not a member of the dispatch table")

	// ErrBadProof is returned when a supplied Merkle proof does not
	// reduce to the table's root.
	ErrBadProof = errors.New("action: merkle proof does not match table root")

	// ErrFinalizerViolation is returned when a composed spend does not
	// emit exactly one CREATE_COIN for the successor singleton.
	ErrFinalizerViolation = errors.New("action: spend must create exactly one successor coin")
)

// Action is the per-action contract every registry action type
// implements: given the registry's current state and a solution, it
// either rejects the spend or returns the next state plus the conditions
// the action's puzzle emits.
type Action[State any, Solution any] interface {
	// PuzzleHash returns this action's curried puzzle hash, the value
	// that must appear (with a valid proof) in the dispatch Table.
	PuzzleHash() chainhash.Hash

	// Apply threads state, returning the successor state and the
	// conditions this action contributes to the overall spend.
	Apply(state State, solution Solution) (State, []wire.Condition, error)
}

// Table is the merklized set of action puzzle hashes a registry singleton
// accepts. Construction is deterministic in the puzzle hashes' sorted
// byte order, matching the original implementation's canonical Merkle
// tree over an action set.
type Table struct {
	leaves []chainhash.Hash
	root   chainhash.Hash
}

// NewTable builds a dispatch table from a registry's permitted action
// puzzle hashes. The leaf order is canonicalized (sorted ascending) so two
// callers building a table from the same set, in any order, get the same
// root.
func NewTable(actionPuzzleHashes []chainhash.Hash) *Table {
	leaves := make([]chainhash.Hash, len(actionPuzzleHashes))
	copy(leaves, actionPuzzleHashes)
	sortHashes(leaves)
	return &Table{
		leaves: leaves,
		root:   merkleRoot(leaves),
	}
}

// Root returns the table's Merkle root, the value curried into the
// registry's action-layer inner puzzle.
func (t *Table) Root() chainhash.Hash {
	return t.root
}

// Proof returns the Merkle inclusion proof for a puzzle hash, or
// ErrNotInTable if it is not a member.
func (t *Table) Proof(puzzleHash chainhash.Hash) ([]ProofStep, error) {
	idx := -1
	for i, leaf := range t.leaves {
		if leaf == puzzleHash {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotInTable
	}
	return buildProof(t.leaves, idx), nil
}

// Verify checks that puzzleHash, combined with proof, reduces to the
// table's root. It is the check a registry's action-layer puzzle performs
// on-chain; this function is its off-chain equivalent, used to validate a
// spend before broadcasting it.
func (t *Table) Verify(puzzleHash chainhash.Hash, proof []ProofStep) error {
	if merkleRootFromProof(puzzleHash, proof) != t.root {
		return ErrBadProof
	}
	return nil
}

// Layer composes one or more actions into a single spend against a
// registry's current state: each action is applied left-to-right (§4.3's
// tie-break rule), threading state and accumulating conditions, and the
// finalizer check confirms exactly one CREATE_COIN targets the successor
// singleton's puzzle hash.
type Layer[State any, Solution any] struct {
	Table *Table
}

// NewLayer builds a Layer bound to a dispatch table.
func NewLayer[State any, Solution any](table *Table) *Layer[State, Solution] {
	return &Layer[State, Solution]{Table: table}
}

// Spend applies each action in order, threading state and collecting
// conditions, then runs the finalizer check against successorPuzzleHash.
func (l *Layer[State, Solution]) Spend(
	state State,
	actions []Action[State, Solution],
	solutions []Solution,
	successorPuzzleHash chainhash.Hash,
) (State, []wire.Condition, error) {
	if len(actions) != len(solutions) {
		return state, nil, fmt.Errorf("action: %d actions but %d solutions", len(actions), len(solutions))
	}

	var allConditions []wire.Condition
	for i, a := range actions {
		if _, err := l.Table.Proof(a.PuzzleHash()); err != nil {
			return state, nil, fmt.Errorf("action %d: %w", i, err)
		}
		nextState, conds, err := a.Apply(state, solutions[i])
		if err != nil {
			return state, nil, fmt.Errorf("action %d: %w", i, err)
		}
		state = nextState
		allConditions = append(allConditions, conds...)
	}

	if err := checkFinalizer(allConditions, successorPuzzleHash); err != nil {
		return state, nil, err
	}
	return state, allConditions, nil
}

// checkFinalizer enforces that the composed spend creates exactly one
// coin at successorPuzzleHash, the invariant that keeps a registry
// singleton's lineage a single unbroken chain.
func checkFinalizer(conditions []wire.Condition, successorPuzzleHash chainhash.Hash) error {
	count := 0
	for _, c := range conditions {
		if c.Opcode != wire.OpCreateCoin || len(c.Args) == 0 {
			continue
		}
		if len(c.Args[0]) == chainhash.HashSize {
			var ph chainhash.Hash
			copy(ph[:], c.Args[0])
			if ph == successorPuzzleHash {
				count++
			}
		}
	}
	if count != 1 {
		return ErrFinalizerViolation
	}
	return nil
}
