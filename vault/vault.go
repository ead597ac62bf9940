// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vault implements the medieval multisig vault singleton (§4.7): an
// m-of-n BLS12-381 threshold vault whose inner puzzle accepts a selector
// bitmap naming which m of the n configured public keys are signing, a
// delegated puzzle, and a delegated solution. It generalizes
// covenants/vault.VaultScript's template/threshold shape from a
// hot/cold CSV Bitcoin-Taproot vault to an m-of-n BLS aggregate-signature
// vault with no time-lock tiers.
package vault

import (
	"errors"
	"fmt"
	"math/bits"

	blst "github.com/supranational/blst/bindings/go"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
	"github.com/chia-network/registry-core/wire"
)

// dst is the BLS12-381 domain-separation tag this vault signs under,
// mirroring Chia's "AugSchemeMPL" convention of domain-separating
// signatures by usage.
var dst = []byte("REGISTRY-CORE_VAULT_V1_BLS12381G2_XMD:SHA-256_SSWU_RO_AUG_")

var (
	// ErrThresholdOutOfRange is returned when Config.M is zero or exceeds
	// the number of configured public keys.
	ErrThresholdOutOfRange = errors.New("vault: m must be between 1 and len(public_keys)")

	// ErrWrongSelectorCount is returned when a selector bitmap does not
	// name exactly Config.M keys.
	ErrWrongSelectorCount = errors.New("vault: selector bitmap must select exactly m keys")

	// ErrSignatureVerificationFailed is returned when the aggregated
	// signature does not verify against the selected keys.
	ErrSignatureVerificationFailed = errors.New("vault: aggregated signature does not verify")

	// ErrMissingSignature is returned when a selected signer's signature
	// wasn't collected before aggregation.
	ErrMissingSignature = errors.New("vault: missing signature for a selected signer")
)

// Config is a vault's curried configuration: m signatures required out of
// the given ordered public key list, mirroring the original's
// `(m, public_key_list)` curry.
type Config struct {
	M          int
	PublicKeys []*blst.P1Affine
}

// PuzzleHash returns the vault singleton's curried inner puzzle hash.
func (c Config) PuzzleHash() chainhash.Hash {
	args := make([]chainhash.Hash, 0, len(c.PublicKeys)+1)
	args = append(args, clvm.HashAtom([]byte{byte(c.M)}))
	for _, pk := range c.PublicKeys {
		args = append(args, clvm.HashAtom(pk.Compress()))
	}
	return clvm.Curry(vaultModHash, args...)
}

var vaultModHash = clvm.HashAtom([]byte("medieval-vault-v1"))

func (c Config) validate() error {
	if c.M <= 0 || c.M > len(c.PublicKeys) {
		return ErrThresholdOutOfRange
	}
	return nil
}

// Selector is a bitmap naming which of Config.PublicKeys are signing a
// given spend, index 0 being the least significant bit.
type Selector uint64

// Indices returns the sorted list of key indices this selector names.
func (s Selector) Indices() []int {
	var out []int
	for i := 0; i < 64; i++ {
		if s&(1<<uint(i)) != 0 {
			out = append(out, i)
		}
	}
	return out
}

// Count returns the number of keys this selector names.
func (s Selector) Count() int {
	return bits.OnesCount64(uint64(s))
}

// DelegatedPuzzle is the interface both vault delegated-puzzle kinds
// (Rekey, FlexibleSendMessage) implement: given the vault's config, they
// compute their own puzzle hash and the conditions they emit once
// authorized.
type DelegatedPuzzle interface {
	PuzzleHash() chainhash.Hash
	Conditions() []wire.Condition
}

// Rekey is a delegated puzzle that replaces the vault's configuration with
// a new (m, public_key_list), producing the successor vault — §4.7's
// "rekey" delegated puzzle.
type Rekey struct {
	NewConfig Config
}

// PuzzleHash returns Rekey's delegated puzzle hash.
func (r Rekey) PuzzleHash() chainhash.Hash {
	return clvm.Curry(rekeyModHash, r.NewConfig.PuzzleHash())
}

// Conditions returns the CREATE_COIN recreating the vault at its new
// configuration's puzzle hash.
func (r Rekey) Conditions() []wire.Condition {
	ph := r.NewConfig.PuzzleHash()
	return []wire.Condition{{Opcode: wire.OpCreateCoin, Args: [][]byte{ph[:], {1}}}}
}

var rekeyModHash = clvm.HashAtom([]byte("vault-rekey-delegated-puzzle-v1"))

// FlexibleSendMessage is a delegated puzzle that announces a payload to a
// target singleton (identified by its launcher ID) while preserving the
// vault coin, §4.7's "flexible-send-message" delegated puzzle. It is
// consumed by the target's delegated-state or custom action via a
// state-scheduler-layer solution pointing at the target's current inner
// puzzle hash.
type FlexibleSendMessage struct {
	TargetLauncherID  chainhash.Hash
	Payload           []byte
	GenesisChallenge  chainhash.Hash
	VaultPuzzleHash   chainhash.Hash
}

// PuzzleHash returns FlexibleSendMessage's delegated puzzle hash.
func (m FlexibleSendMessage) PuzzleHash() chainhash.Hash {
	return clvm.Curry(
		flexibleSendMessageModHash,
		clvm.HashAtom(m.TargetLauncherID[:]),
		clvm.HashAtom(m.Payload),
		clvm.HashAtom(m.GenesisChallenge[:]),
	)
}

// Conditions returns a wire.OpReceiveMessage condition carrying the target
// launcher ID and the payload, plus the CREATE_COIN preserving the vault
// coin.
func (m FlexibleSendMessage) Conditions() []wire.Condition {
	return []wire.Condition{
		{Opcode: wire.OpReceiveMessage, Args: [][]byte{m.TargetLauncherID[:], m.Payload}},
		{Opcode: wire.OpCreateCoin, Args: [][]byte{m.VaultPuzzleHash[:], {1}}},
	}
}

var flexibleSendMessageModHash = clvm.HashAtom([]byte("vault-flexible-send-message-delegated-puzzle-v1"))

// Spend authorizes and assembles a vault spend: it verifies that the
// selector names exactly Config.M keys, that every selected signer
// supplied a signature, aggregates those signatures, and verifies the
// aggregate against the delegated puzzle's hash before returning the
// delegated puzzle's conditions.
func Spend(cfg Config, selector Selector, sigs map[int]*blst.P2Affine, delegated DelegatedPuzzle) ([]wire.Condition, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	indices := selector.Indices()
	if len(indices) != cfg.M {
		return nil, ErrWrongSelectorCount
	}

	delegatedHash := delegated.PuzzleHash()
	msg := delegatedHash[:]

	sigPtrs := make([]*blst.P2Affine, 0, len(indices))
	pkPtrs := make([]*blst.P1Affine, 0, len(indices))
	for _, idx := range indices {
		if idx >= len(cfg.PublicKeys) {
			return nil, fmt.Errorf("vault: selector names out-of-range key index %d", idx)
		}
		sig, ok := sigs[idx]
		if !ok {
			return nil, ErrMissingSignature
		}
		sigPtrs = append(sigPtrs, sig)
		pkPtrs = append(pkPtrs, cfg.PublicKeys[idx])
	}

	aggSig := new(blst.P2Aggregate)
	if !aggSig.AggregateCompressed(compressAll(sigPtrs), true) {
		return nil, ErrSignatureVerificationFailed
	}
	aggregated := aggSig.ToAffine()

	if !aggregated.AggregateVerify(true, pkPtrs, true, repeat(msg, len(pkPtrs)), dst) {
		return nil, ErrSignatureVerificationFailed
	}

	return delegated.Conditions(), nil
}

func compressAll(sigs []*blst.P2Affine) [][]byte {
	out := make([][]byte, len(sigs))
	for i, s := range sigs {
		out[i] = s.Compress()
	}
	return out
}

func repeat(msg []byte, n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = msg
	}
	return out
}
