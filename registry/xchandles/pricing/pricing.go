// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pricing implements the two XCHandles pricing sub-puzzles (§4.4):
// a length/duration factor curve for ordinary registration and renewal, and
// an exponential-premium curve for renewing a handle shortly after it
// expires.
package pricing

import (
	"errors"
	"math"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
)

// ErrInvalidHandleLength is returned when a handle's length falls outside
// the supported class table.
var ErrInvalidHandleLength = errors.New("pricing: handle length out of range")

// Puzzle is the interface both pricing sub-puzzles satisfy: given a handle
// and a duration in years, compute the price in mojos a register/renew
// action must be paid.
type Puzzle interface {
	PuzzleHash() chainhash.Hash
	Price(handle string, years uint64) (uint64, error)
}

// Factor implements "price = base_price * handle_length_class * years"
// (§4.4), the ordinary registration/renewal pricing curve. Shorter handles
// cost proportionally more, mirroring real-world premium short-name
// registries.
type Factor struct {
	BasePrice uint64
}

// lengthClass maps a handle's rune length to its pricing multiplier: the
// shortest handles (3 chars) are the most expensive, lengths 3-6 scale down
// to a floor multiplier of 1 for anything 7 characters or longer.
func lengthClass(handleLen int) (uint64, error) {
	switch {
	case handleLen < 3:
		return 0, ErrInvalidHandleLength
	case handleLen == 3:
		return 5, nil
	case handleLen == 4:
		return 4, nil
	case handleLen <= 6:
		return 2, nil
	default:
		return 1, nil
	}
}

// PuzzleHash returns the curried Factor pricing puzzle's hash.
func (f Factor) PuzzleHash() chainhash.Hash {
	var priceAtom [8]byte
	for i := 0; i < 8; i++ {
		priceAtom[i] = byte(f.BasePrice >> (8 * (7 - i)))
	}
	return clvm.Curry(factorModHash, clvm.HashAtom(priceAtom[:]))
}

// Price computes the registration/renewal price for handle over years.
func (f Factor) Price(handle string, years uint64) (uint64, error) {
	class, err := lengthClass(len([]rune(handle)))
	if err != nil {
		return 0, err
	}
	if years == 0 {
		years = 1
	}
	return f.BasePrice * class * years, nil
}

var factorModHash = clvm.HashAtom([]byte("xchandles-factor-pricing-v1"))

// ExponentialPremium implements the decaying premium charged to renew a
// handle shortly after it expires (§4.4's "expired_handle_pricing_puzzle_hash"),
// mirroring the real-world "drop" premium auctions domain registries use:
// the premium starts high right after expiration and halves every
// HalvingPeriodSeconds until it reaches zero, after which the handle is
// priced at the ordinary Factor rate plus zero premium.
type ExponentialPremium struct {
	Base                Factor
	StartPremium        uint64
	HalvingPeriodSeconds uint64
}

// PuzzleHash returns the curried ExponentialPremium pricing puzzle's hash.
func (e ExponentialPremium) PuzzleHash() chainhash.Hash {
	return clvm.Curry(
		exponentialPremiumModHash,
		e.Base.PuzzleHash(),
		clvm.HashAtom(uint64Atom(e.StartPremium)),
		clvm.HashAtom(uint64Atom(e.HalvingPeriodSeconds)),
	)
}

// Price satisfies Puzzle: it returns the Base factor price for handle over
// years and adds no premium, since it has no time-since-expiration input.
// PriceAt is the variant that includes the decaying premium.
func (e ExponentialPremium) Price(handle string, years uint64) (uint64, error) {
	base, err := e.Base.Price(handle, years)
	if err != nil {
		return 0, err
	}
	return base, nil
}

// PriceAt computes the full renew-after-expiration price, including the
// decaying premium, at secondsSinceExpiration seconds past expiration. The
// premium decays geometrically, halved every HalvingPeriodSeconds, and is
// dropped once it falls below one mojo.
func (e ExponentialPremium) PriceAt(handle string, years uint64, secondsSinceExpiration uint64) (uint64, error) {
	base, err := e.Base.Price(handle, years)
	if err != nil {
		return 0, err
	}
	if e.HalvingPeriodSeconds == 0 {
		return base, nil
	}
	halvings := float64(secondsSinceExpiration) / float64(e.HalvingPeriodSeconds)
	premium := float64(e.StartPremium) / math.Pow(2, halvings)
	if premium < 1 {
		return base, nil
	}
	return base + uint64(premium), nil
}

var exponentialPremiumModHash = clvm.HashAtom([]byte("xchandles-exponential-premium-pricing-v1"))

func uint64Atom(v uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * (7 - i)))
	}
	return b[:]
}
