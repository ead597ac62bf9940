// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package verification implements verification singletons (§4.8): a coin
// curried with a revocation vault struct and a piece of verified data,
// spendable in one of two modes: oracle (re-attest the data without
// consuming the coin) or revocation (consume it once a message arrives
// from the named revocation vault). The mode-predicate shape is grounded on
// settlement/claimable.ClaimPredicate's condition-evaluation approach,
// repurposed from "can this balance be claimed" to "should this
// verification be revoked".
package verification

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
	"github.com/chia-network/registry-core/wire"
)

var (
	// ErrNotRevoked is returned when a Revoke solution doesn't carry a
	// message actually originating from the coin's revocation vault.
	ErrNotRevoked = errors.New("verification: revocation message does not originate from the revocation vault")

	// ErrBadAttestationSignature is returned when Oracle's signature over
	// the verified data fails to verify against the oracle key.
	ErrBadAttestationSignature = errors.New("verification: oracle attestation signature invalid")
)

// Coin is a verification singleton: it carries arbitrary verified data
// (e.g. "this launcher ID is a KYC-cleared custodian"), an oracle public
// key authorized to re-attest it, and the launcher ID of the medieval
// vault that can revoke it.
type Coin struct {
	LauncherID          chainhash.Hash
	RevocationVaultLauncherID chainhash.Hash
	VerifiedData        []byte
	OracleKey            *btcec.PublicKey
}

// PuzzleHash returns the verification coin's curried inner puzzle hash:
// the revocation vault struct plus the verified data, per §4.8's
// "curried with (revocation_vault_struct, verified_data)".
func (c Coin) PuzzleHash() chainhash.Hash {
	return clvm.Curry(
		verificationModHash,
		clvm.HashAtom(c.RevocationVaultLauncherID[:]),
		clvm.HashAtom(c.VerifiedData),
	)
}

var verificationModHash = clvm.HashAtom([]byte("verification-singleton-v1"))

// OracleSolution carries an attestation: a fresh signature over the
// currently-verified data from the coin's configured oracle key.
type OracleSolution struct {
	Signature *ecdsa.Signature
}

// Oracle re-attests the coin's VerifiedData without consuming it,
// verifying Signature against OracleKey over VerifiedData — reusing the
// attestor signature-verification pattern from the liquidity package's
// market-making attestations.
func (c Coin) Oracle(sol OracleSolution) ([]wire.Condition, error) {
	dataHash := clvm.HashAtom(c.VerifiedData)
	if !sol.Signature.Verify(dataHash[:], c.OracleKey) {
		return nil, ErrBadAttestationSignature
	}
	announcement := append([]byte{}, c.VerifiedData...)
	return []wire.Condition{
		{Opcode: wire.OpReceiveMessage, Args: [][]byte{announcement}},
	}, nil
}

// RevokeSolution carries the revocation message the named revocation
// vault's FlexibleSendMessage delegated puzzle produced.
type RevokeSolution struct {
	MessageSenderLauncherID chainhash.Hash
}

// Revoke consumes the verification coin, producing no successor, iff the
// message originates from the coin's configured revocation vault — §4.8's
// "Revocation" mode.
func (c Coin) Revoke(sol RevokeSolution) ([]wire.Condition, error) {
	if sol.MessageSenderLauncherID != c.RevocationVaultLauncherID {
		return nil, ErrNotRevoked
	}
	return nil, nil
}
