// Copyright (c) 2013-2024 The btcsuite developers
// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire defines the coin-identity types shared across every layer
// of this system. Unlike a Bitcoin-style wire package, there is no P2P
// message protocol here: coins are identified by (parent, puzzle hash,
// amount), and a puzzle's conditions are CLVM-style tagged tuples rather
// than a Script opcode stream.
package wire

import (
	"fmt"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
)

// OutPoint identifies a coin by its parent coin ID and its own coin ID.
// Coins on a CLVM-style chain have no output index: a spend's conditions
// name each child coin's full (puzzle_hash, amount) pair, so the child's ID
// is derived directly rather than addressed as "the Nth output" the way a
// Bitcoin transaction output is.
type OutPoint struct {
	ParentCoinID chainhash.Hash
	CoinID       chainhash.Hash
}

// String returns the canonical "parent:coin" representation of the
// OutPoint.
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%s", o.ParentCoinID, o.CoinID)
}

// Coin is the fundamental unit of value on a CLVM-style chain: an amount
// locked under a puzzle hash, created by a specific parent coin. A coin's
// ID is the tree hash of (parent_coin_id, puzzle_hash, amount) — computed
// by CoinID, not stored, since it is fully determined by the coin's other
// three fields.
type Coin struct {
	ParentCoinID chainhash.Hash
	PuzzleHash   chainhash.Hash
	Amount       uint64
}

// CoinID returns this coin's identity: the tree hash of its three
// defining fields, treated as a three-element CLVM list.
func (c Coin) CoinID() chainhash.Hash {
	amountAtom := amountToAtom(c.Amount)
	return hashCoin(c.ParentCoinID, c.PuzzleHash, amountAtom)
}

// OutPoint returns the OutPoint identifying this coin for lookup purposes.
func (c Coin) OutPoint() OutPoint {
	return OutPoint{ParentCoinID: c.ParentCoinID, CoinID: c.CoinID()}
}

// ConditionOpcode identifies a CLVM condition emitted by a puzzle's
// solution, restricted to the handful this system's puzzles actually
// produce.
type ConditionOpcode uint16

const (
	// OpCreateCoin creates a new coin (puzzle_hash, amount) as a child of
	// the spent coin.
	OpCreateCoin ConditionOpcode = 51

	// OpAggSigMe requires a BLS signature over (pubkey, message ||
	// coin_id || agg_sig_me_extra_data).
	OpAggSigMe ConditionOpcode = 50

	// OpAssertMyAmount asserts the spent coin's own amount.
	OpAssertMyAmount ConditionOpcode = 73

	// OpAssertSecondsRelative asserts a minimum elapsed time since the
	// spent coin's parent was confirmed.
	OpAssertSecondsRelative ConditionOpcode = 80

	// OpAssertHeightRelative asserts a minimum number of blocks since the
	// spent coin's parent was confirmed.
	OpAssertHeightRelative ConditionOpcode = 82

	// OpAssertHeightAbsolute asserts a minimum absolute block height.
	OpAssertHeightAbsolute ConditionOpcode = 83

	// OpReceiveMessage asserts receipt of an authenticated message from
	// another coin, used among others by the verification layer's oracle
	// mode and the vault's flexible-send-message delegated puzzle.
	OpReceiveMessage ConditionOpcode = 69
)

// Condition is a single parsed condition from a puzzle's output.
type Condition struct {
	Opcode ConditionOpcode
	Args   [][]byte
}

// hashCoin computes the tree hash of the three-element list
// (parent_coin_id puzzle_hash amount), the on-chain definition of a coin's
// identity.
func hashCoin(parentCoinID, puzzleHash chainhash.Hash, amountAtom []byte) chainhash.Hash {
	parentHash := clvm.HashAtom(parentCoinID[:])
	puzzleHashHash := clvm.HashAtom(puzzleHash[:])
	amountHash := clvm.HashAtom(amountAtom)
	return clvm.HashPair(parentHash, clvm.HashPair(puzzleHashHash, clvm.HashPair(amountHash, clvm.NilHash)))
}

func amountToAtom(amount uint64) []byte {
	if amount == 0 {
		return nil
	}
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = byte(amount)
		amount >>= 8
	}
	for len(buf) > 1 && buf[0] == 0 {
		buf = buf[1:]
	}
	return buf
}
