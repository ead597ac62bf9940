// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scheduler

import (
	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
)

// Price is the state type a PriceSchedule threads: a single uint64 price,
// targeting a registry's pricing-puzzle-hash state field.
type Price uint64

// priceHash tree-hashes a Price the way any other CLVM atom is hashed,
// matching the original's price_oracle.rs / price_scheduler_info.rs pairing
// of the generic state-scheduler pattern with a plain integer state.
func priceHash(p Price) chainhash.Hash {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(uint64(p) >> (8 * (7 - i)))
	}
	return clvm.HashAtom(b[:])
}

// PriceSchedule specializes Schedule[Price] for a pre-committed chain of
// (block_height, price) pairs targeting a pricing puzzle hash, the
// supplemented second consumer of the state-scheduler pattern found in the
// original's price_scheduler_info.rs / price_oracle.rs (a price oracle
// singleton, not just generic registry state).
type PriceSchedule struct {
	*Schedule[Price]
}

// NewPriceSchedule builds a PriceSchedule targeting the given pricing
// singleton's launcher ID.
func NewPriceSchedule(launcherID, pricingSingletonLauncherID chainhash.Hash, entries []Entry[Price], finalPuzzleHash chainhash.Hash) *PriceSchedule {
	return &PriceSchedule{
		Schedule: NewSchedule(launcherID, pricingSingletonLauncherID, entries, finalPuzzleHash, priceHash),
	}
}

// CurrentPrice returns the price scheduled to take effect as of
// generation, or the schedule's last entry's price if generation is beyond
// the schedule (the terminal, steady-state price).
func (p *PriceSchedule) CurrentPrice(generation int) Price {
	if len(p.Entries) == 0 {
		return 0
	}
	if generation >= len(p.Entries) {
		generation = len(p.Entries) - 1
	}
	if generation < 0 {
		generation = 0
	}
	return p.Entries[generation].State
}
