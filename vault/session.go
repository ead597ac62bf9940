// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package vault

import (
	"fmt"
	"sync"
	"time"

	blst "github.com/supranational/blst/bindings/go"
)

// SessionState tracks a SigningSession's progress, mirroring
// crypto/musig2.SessionState's state-machine shape but collapsed to two
// phases: BLS aggregate signatures need no nonce-commit/reveal
// choreography, so a session goes straight from collecting signatures to
// completion.
type SessionState uint8

const (
	SessionCollecting SessionState = iota
	SessionCompleted
	SessionExpired
)

// SigningSession is the off-chain signing protocol described in §4.7: each
// signer independently recomputes the delegated-puzzle hash, signs it, and
// publishes (index, signature); the broadcaster collects signatures
// matching its selector bitmap and aggregates them. It is the BLS
// re-target of crypto/musig2.MuSig2Session — aggregation replaces the
// nonce-commit/nonce-reveal/partial-signature dance MuSig2 needs, since
// BLS signatures aggregate independently of any interactive protocol.
type SigningSession struct {
	mu sync.RWMutex

	Config        Config
	Selector      Selector
	Delegated     DelegatedPuzzle
	DelegatedHash [32]byte
	ExpiresAt     time.Time

	state SessionState
	sigs  map[int]*blst.P2Affine
}

// NewSigningSession starts a signing session for a delegated puzzle
// against a vault configuration, open for the given duration.
func NewSigningSession(cfg Config, selector Selector, delegated DelegatedPuzzle, expiry time.Duration) (*SigningSession, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if selector.Count() != cfg.M {
		return nil, ErrWrongSelectorCount
	}
	h := delegated.PuzzleHash()
	return &SigningSession{
		Config:        cfg,
		Selector:      selector,
		Delegated:     delegated,
		DelegatedHash: [32]byte(h),
		ExpiresAt:     time.Now().Add(expiry),
		state:         SessionCollecting,
		sigs:          make(map[int]*blst.P2Affine),
	}, nil
}

// AddSignature records signer index's signature over the session's
// delegated-puzzle hash, after verifying it independently — each signer's
// contribution is checked as it arrives rather than only at aggregation
// time, so a bad signature is attributed to its signer immediately.
func (s *SigningSession) AddSignature(index int, sig *blst.P2Affine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionCollecting {
		return fmt.Errorf("vault: signing session not accepting signatures in state %d", s.state)
	}
	if time.Now().After(s.ExpiresAt) {
		s.state = SessionExpired
		return fmt.Errorf("vault: signing session expired")
	}
	if index < 0 || index >= len(s.Config.PublicKeys) {
		return fmt.Errorf("vault: signer index %d out of range", index)
	}
	found := false
	for _, idx := range s.Selector.Indices() {
		if idx == index {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("vault: signer index %d not named by this session's selector", index)
	}
	if !sig.Verify(true, s.Config.PublicKeys[index], true, s.DelegatedHash[:], dst) {
		return fmt.Errorf("vault: signature from signer %d failed verification", index)
	}

	s.sigs[index] = sig
	if len(s.sigs) >= s.Config.M {
		s.state = SessionCompleted
	}
	return nil
}

// Ready reports whether enough signatures have arrived to assemble a
// spend.
func (s *SigningSession) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == SessionCompleted
}

// Finalize aggregates the collected signatures once Ready and returns the
// compressed aggregate signature. It returns no conditions; Spend produces
// the delegated puzzle's conditions.
func (s *SigningSession) Finalize() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != SessionCompleted {
		return nil, fmt.Errorf("vault: signing session not ready, have %d/%d signatures", len(s.sigs), s.Config.M)
	}

	sigPtrs := make([]*blst.P2Affine, 0, len(s.sigs))
	for _, idx := range s.Selector.Indices() {
		sig, ok := s.sigs[idx]
		if !ok {
			return nil, ErrMissingSignature
		}
		sigPtrs = append(sigPtrs, sig)
	}

	aggSig := new(blst.P2Aggregate)
	if !aggSig.AggregateCompressed(compressAll(sigPtrs), true) {
		return nil, ErrSignatureVerificationFailed
	}
	return aggSig.ToAffine().Compress(), nil
}
