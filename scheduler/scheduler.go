// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scheduler implements the state-scheduler singleton (§4.6): a
// chained singleton whose each generation's inner puzzle encodes a new
// state, a required block height, and the next generation's puzzle hash,
// and authorizes exactly one message to a target singleton containing the
// new state. The schedule is pre-committed off-chain as an ordered list of
// (height, state) pairs; InnerPuzzleHashForGeneration folds it from the
// terminal generation backwards, mirroring the original's
// StateSchedulerInfo::inner_puzzle_hash_for_generation.
package scheduler

import (
	"errors"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
	"github.com/chia-network/registry-core/wire"
)

// ErrGenerationOutOfRange is returned when a generation index names a slot
// beyond the pre-committed schedule.
var ErrGenerationOutOfRange = errors.New("scheduler: generation index beyond schedule length")

// Entry is a single pre-committed (block_height, state) pair in a
// schedule.
type Entry[S any] struct {
	RequiredBlockHeight uint32
	State               S
}

// StateHasher lets a caller-supplied state type participate in the
// scheduler's tree-hash fold without scheduler needing to know its shape.
type StateHasher[S any] func(state S) chainhash.Hash

// Schedule is the reverse-folded puzzle-hash chain of (height, state)
// pairs described in §4.6, generalized over any state type S via a Go
// generic type parameter, matching the original's C-style
// StateSchedulerInfo<S> generic.
type Schedule[S any] struct {
	LauncherID              chainhash.Hash
	OtherSingletonLauncherID chainhash.Hash
	Entries                 []Entry[S]
	FinalPuzzleHash         chainhash.Hash
	hashState               StateHasher[S]
}

// NewSchedule builds a Schedule from a pre-committed ordered entry list,
// the target singleton's launcher ID, and the terminal puzzle hash the
// chain morphs into once every entry has been consumed.
func NewSchedule[S any](launcherID, otherSingletonLauncherID chainhash.Hash, entries []Entry[S], finalPuzzleHash chainhash.Hash, hashState StateHasher[S]) *Schedule[S] {
	return &Schedule[S]{
		LauncherID:               launcherID,
		OtherSingletonLauncherID: otherSingletonLauncherID,
		Entries:                  entries,
		FinalPuzzleHash:          finalPuzzleHash,
		hashState:                hashState,
	}
}

// stateSchedulerModHash is the uncurried state-scheduler layer puzzle's
// mod hash used by the fold. It is the zero hash until SetModHash installs
// one (normally puzzles.StateSchedulerModHash, the bit-exact constant).
var stateSchedulerModHash chainhash.Hash

// SetModHash installs the uncurried layer puzzle's mod hash this schedule's
// fold uses. Callers normally pass puzzles.StateSchedulerModHash.
func SetModHash(h chainhash.Hash) {
	stateSchedulerModHash = h
}

// InnerPuzzleHashFor computes one generation's curried inner puzzle hash:
// the state-scheduler layer curried with the target singleton's launcher
// ID, a CREATE_COIN to nextPuzzleHash, an ASSERT_HEIGHT_ABSOLUTE at
// requiredBlockHeight, and the new state.
func (s *Schedule[S]) InnerPuzzleHashFor(nextPuzzleHash chainhash.Hash, requiredBlockHeight uint32, state S) chainhash.Hash {
	var heightAtom [4]byte
	heightAtom[0] = byte(requiredBlockHeight >> 24)
	heightAtom[1] = byte(requiredBlockHeight >> 16)
	heightAtom[2] = byte(requiredBlockHeight >> 8)
	heightAtom[3] = byte(requiredBlockHeight)

	return clvm.Curry(
		stateSchedulerModHash,
		clvm.HashAtom(s.OtherSingletonLauncherID[:]),
		clvm.HashAtom(nextPuzzleHash[:]),
		clvm.HashAtom(heightAtom[:]),
		s.hashState(state),
	)
}

// InnerPuzzleHashForGeneration folds the schedule from its terminal
// FinalPuzzleHash backwards to the requested generation index, matching
// the original's while-loop fold exactly: generation N's hash is computed
// by currying generation N+1's already-computed hash as the next_puzzle_hash
// argument.
func (s *Schedule[S]) InnerPuzzleHashForGeneration(generation int) chainhash.Hash {
	if generation >= len(s.Entries) {
		return s.FinalPuzzleHash
	}

	innerPuzzleHash := s.FinalPuzzleHash
	for i := len(s.Entries) - 1; i >= generation; i-- {
		innerPuzzleHash = s.InnerPuzzleHashFor(innerPuzzleHash, s.Entries[i].RequiredBlockHeight, s.Entries[i].State)
	}
	return innerPuzzleHash
}

// Spend produces the conditions generation `generation`'s spend must
// emit: an ASSERT_HEIGHT_ABSOLUTE at the entry's required block height, a
// CREATE_COIN recreating this singleton at the next generation's puzzle
// hash, and a message announcing the new state to the target singleton.
func (s *Schedule[S]) Spend(generation int) ([]wire.Condition, error) {
	if generation < 0 || generation >= len(s.Entries) {
		return nil, ErrGenerationOutOfRange
	}
	entry := s.Entries[generation]
	nextPuzzleHash := s.InnerPuzzleHashForGeneration(generation + 1)

	var heightAtom [4]byte
	heightAtom[0] = byte(entry.RequiredBlockHeight >> 24)
	heightAtom[1] = byte(entry.RequiredBlockHeight >> 16)
	heightAtom[2] = byte(entry.RequiredBlockHeight >> 8)
	heightAtom[3] = byte(entry.RequiredBlockHeight)

	stateHash := s.hashState(entry.State)
	return []wire.Condition{
		{Opcode: wire.OpAssertHeightAbsolute, Args: [][]byte{heightAtom[:]}},
		{Opcode: wire.OpCreateCoin, Args: [][]byte{nextPuzzleHash[:], {1}}},
		{Opcode: wire.OpReceiveMessage, Args: [][]byte{s.OtherSingletonLauncherID[:], stateHash[:]}},
	}, nil
}
