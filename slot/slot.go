// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package slot implements the single-mojo committed-value coins that every
// registry in this system uses to hold an ordered or keyed set: a slot's
// puzzle is curried with (launcher_id, nonce, value_hash), the value
// itself lives off-chain, and a SlotProof lets a holder re-derive the
// parent coin needed to spend it.
package slot

import (
	"errors"

	"github.com/btcsuite/btclog"
	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
	"github.com/chia-network/registry-core/wire"
)

// log is this package's logger, wired up via UseLogger; it is a no-op
// until a caller installs a real one, matching the teacher's package-level
// logger convention.
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by slot.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Nonce segregates slot families sharing the same (launcher_id, value_hash)
// curry shape from colliding with one another.
type Nonce uint8

const (
	// NonceReward identifies a reward-distributor reward-slot.
	NonceReward Nonce = 0

	// NonceCommitment identifies a reward-distributor commitment-slot.
	NonceCommitment Nonce = 1

	// NonceEntry identifies a reward-distributor entry-slot, and doubles
	// as the nonce CATalog/XCHandles use for their ordered-set slots.
	NonceEntry Nonce = 2
)

var (
	// ErrSlotNotFound is returned when a lookup finds no live slot for the
	// requested key.
	ErrSlotNotFound = errors.New("slot: not found")

	// ErrSlotAlreadyExists is returned when Index.Put is asked to insert a
	// value that already has a live slot in the same family — the
	// Uniqueness invariant.
	ErrSlotAlreadyExists = errors.New("slot: value already has a live slot in this family")

	// ErrStaleProof is returned by Spend when the slot carries no Proof.
	// Spend does not compare a supplied Proof against the slot's on-chain
	// lineage.
	ErrStaleProof = errors.New("slot: proof does not match current slot lineage")
)

// Proof carries what a spender needs to reconstruct a slot coin's parent
// lineage and satisfy the singleton's ownership check, mirroring the
// reference implementation's SlotProof.
type Proof struct {
	ParentParentID       chainhash.Hash
	ParentInnerPuzzleHash chainhash.Hash
}

// Slot is a single committed-value coin, generic over V, the
// domain-specific value shape (catalog.SlotValue, xchandles.SlotValue, a
// reward-distributor reward/commitment/entry record, ...).
type Slot[V any] struct {
	LauncherID chainhash.Hash
	Nonce      Nonce
	ValueHash  chainhash.Hash
	Value      V

	// Coin is the on-chain coin backing this slot, once known (nil for a
	// slot that exists only as a pending construction).
	Coin *wire.Coin

	// Proof lets the holder re-derive the parent lineage to spend this
	// slot. It is unset for a slot not yet confirmed on chain.
	Proof *Proof
}

// PuzzleHash returns the deterministic puzzle hash for a slot curried with
// (launcher_id, nonce, value_hash) — the mod hash all slots across every
// registry and nonce share, distinguished only by their curry arguments.
func PuzzleHash(launcherID chainhash.Hash, nonce Nonce, valueHash chainhash.Hash) chainhash.Hash {
	return clvm.Curry(
		slotModHash,
		clvm.HashAtom(launcherID[:]),
		clvm.HashAtom([]byte{byte(nonce)}),
		clvm.HashAtom(valueHash[:]),
	)
}

// slotModHash is the uncurried slot puzzle's mod hash. The retrieved
// reference material describes the slot puzzle's curry shape
// (launcher_id, nonce, value_hash) but did not include its own
// bit-exact bytecode hash the way it did for several layer puzzles, so
// this is a derived, internally-consistent placeholder (see puzzles
// package doc comment for the same convention).
var slotModHash = clvm.HashAtom([]byte("slot-v1"))

// CreateConditions returns the CREATE_COIN condition a registry spend must
// emit to bring this slot into existence.
func CreateConditions(launcherID chainhash.Hash, nonce Nonce, valueHash chainhash.Hash) wire.Condition {
	ph := PuzzleHash(launcherID, nonce, valueHash)
	return wire.Condition{
		Opcode: wire.OpCreateCoin,
		Args:   [][]byte{ph[:], {1}},
	}
}

// Spend constructs the condition set a registry action must include to
// consume this slot, asserting that the spender is the registry's current
// inner puzzle hash — the Ownership invariant (§3): only the registry
// singleton a slot was created under may spend it. Actual coin-spend
// assembly (signing, solution encoding) is the caller's responsibility;
// Spend only returns the assertions the slot's own puzzle demands of its
// spender.
func Spend[V any](s *Slot[V], spenderInnerPuzzleHash chainhash.Hash) ([]wire.Condition, error) {
	if s.Proof == nil {
		return nil, ErrStaleProof
	}
	log.Debugf("spending slot value_hash=%s nonce=%d spender=%s",
		s.ValueHash, s.Nonce, spenderInnerPuzzleHash)
	return []wire.Condition{
		{
			Opcode: wire.OpAssertMyAmount,
			Args:   [][]byte{{1}},
		},
		{
			Opcode: wire.OpReceiveMessage,
			Args:   [][]byte{spenderInnerPuzzleHash[:]},
		},
	}, nil
}
