// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package verification

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOracleAcceptsValidAttestation(t *testing.T) {
	sk, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	coin := Coin{
		LauncherID:                chainhash.Hash{1},
		RevocationVaultLauncherID: chainhash.Hash{2},
		VerifiedData:              []byte("custodian-kyc-cleared"),
		OracleKey:                 sk.PubKey(),
	}
	dataHash := clvm.HashAtom(coin.VerifiedData)
	sig := ecdsa.Sign(sk, dataHash[:])

	conds, err := coin.Oracle(OracleSolution{Signature: sig})
	require.NoError(t, err)
	assert.Len(t, conds, 1)
}

func TestOracleRejectsBadSignature(t *testing.T) {
	sk, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	otherSk, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	coin := Coin{
		VerifiedData: []byte("custodian-kyc-cleared"),
		OracleKey:    sk.PubKey(),
	}
	dataHash := clvm.HashAtom(coin.VerifiedData)
	badSig := ecdsa.Sign(otherSk, dataHash[:])

	_, err = coin.Oracle(OracleSolution{Signature: badSig})
	assert.ErrorIs(t, err, ErrBadAttestationSignature)
}

func TestRevokeRequiresMatchingVault(t *testing.T) {
	coin := Coin{RevocationVaultLauncherID: chainhash.Hash{2}}

	_, err := coin.Revoke(RevokeSolution{MessageSenderLauncherID: chainhash.Hash{9}})
	assert.ErrorIs(t, err, ErrNotRevoked)

	conds, err := coin.Revoke(RevokeSolution{MessageSenderLauncherID: chainhash.Hash{2}})
	require.NoError(t, err)
	assert.Nil(t, conds)
}

func TestPuzzleHashDependsOnVerifiedData(t *testing.T) {
	a := Coin{RevocationVaultLauncherID: chainhash.Hash{1}, VerifiedData: []byte("a")}
	b := Coin{RevocationVaultLauncherID: chainhash.Hash{1}, VerifiedData: []byte("b")}
	assert.NotEqual(t, a.PuzzleHash(), b.PuzzleHash())
}
