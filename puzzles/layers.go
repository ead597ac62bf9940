// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package puzzles holds the mod-hash constants for every puzzle layer and
// action this system spends against. A mod hash is the tree hash of an
// *uncurried* puzzle template; callers curry it with per-spend arguments
// via clvm.Curry to get the puzzle hash a specific coin actually locks
// value under.
//
// Where the constant below is annotated "bit-exact", it was copied
// character-for-character from the reference implementation's own puzzle
// source and is safe to compare against real on-chain puzzle hashes. Where
// it is annotated "derived", no verbatim constant was available and the mod
// hash is instead computed deterministically from a descriptive label —
// internally consistent for this module's own spends, but not a claim that
// it matches any particular on-chain deployment.
package puzzles

import (
	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
)

func mustHash(hexStr string) chainhash.Hash {
	h, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return *h
}

// derivedModHash synthesizes an internally-consistent mod hash for a puzzle
// layer whose exact on-chain bytecode wasn't available to this module,
// instead of fabricating a false "bit-exact" constant.
func derivedModHash(label string) chainhash.Hash {
	return clvm.HashAtom([]byte(label))
}

// Action-layer state machine (§4.1, §4.3). Bit-exact hash not captured from
// the reference source (only its raw 100-byte CLVM bytecode was), so this
// is derived.
var ActionLayerModHash = derivedModHash("action-layer-v1")

// State-scheduler chained-singleton puzzle (§4.6). Bit-exact.
var StateSchedulerModHash = mustHash("f081173cc82c6940a0c0a9f35b7ae5e75ff7befa431ac97f216af94328b9a8be")

// Verification-layer puzzle, oracle/revocation modes (§4.8). Bit-exact.
var VerificationLayerModHash = mustHash("72600e1408134c0def58ce09d1b9edce15ffcfd5f5a2ebcd421d4a47ec4518c2")

// Reserve coin puzzle backing a reward distributor's total_reserves
// invariant (§4.5). Bit-exact.
var ReserveModHash = mustHash("a16c0d18ef30b4c82fc5ad29ea72adf5b6686f1d838b077abc6be0f17f7720ce")

// Verification-payments puzzle paying out to a verified-data claimant.
// Bit-exact.
var VerificationPaymentsModHash = mustHash("8dac7372c4a705c78d900efa0883c6d5b6a51d2994ebc3788fae9434b9215bb9")

// Delegated-state action: lets an external singleton push an authorized
// new state into this one (used by scheduler.PriceSchedule and by the
// reward distributor's admin-controlled parameters). Bit-exact.
var DelegatedStateActionModHash = mustHash("1e5759069429397243b808748e5bd5270ea0891953ea06df9a46b87ce4ade466")
