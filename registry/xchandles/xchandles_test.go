// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package xchandles

import (
	"testing"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/registry/xchandles/pricing"
	"github.com/chia-network/registry-core/slot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(chainhash.Hash{1}, State{})
}

func TestRegisterChargesFactorPrice(t *testing.T) {
	r := newTestRegistry()
	minSlot, _ := r.Slots.Get(slot.MinValueBytes)
	maxSlot, _ := r.Slots.Get(slot.MaxValueBytes)

	factor := pricing.Factor{BasePrice: 100}
	price, err := factor.Price("abcdefgh", 1)
	require.NoError(t, err)

	conds, err := r.Register(RegisterSolution{
		Handle:             "abcdefgh",
		LeftSlot:           minSlot.Value,
		RightSlot:          maxSlot.Value,
		Years:              1,
		Payment:            price,
		OwnerLauncherID:    chainhash.Hash{2},
		ResolvedLauncherID: chainhash.Hash{2},
		Pricing:            factor,
		CurrentTime:        1000,
	})
	require.NoError(t, err)
	assert.Len(t, conds, 8)
	require.NoError(t, r.Slots.CheckWellFormed())
}

func TestRegisterRejectsInsufficientPayment(t *testing.T) {
	r := newTestRegistry()
	minSlot, _ := r.Slots.Get(slot.MinValueBytes)
	maxSlot, _ := r.Slots.Get(slot.MaxValueBytes)
	factor := pricing.Factor{BasePrice: 1000}

	_, err := r.Register(RegisterSolution{
		Handle:    "abcdefgh",
		LeftSlot:  minSlot.Value,
		RightSlot: maxSlot.Value,
		Years:     1,
		Payment:   1,
		Pricing:   factor,
	})
	assert.ErrorIs(t, err, ErrInsufficientPayment)
}

func TestRegisterRejectsShortHandle(t *testing.T) {
	r := newTestRegistry()
	minSlot, _ := r.Slots.Get(slot.MinValueBytes)
	maxSlot, _ := r.Slots.Get(slot.MaxValueBytes)
	factor := pricing.Factor{BasePrice: 100}

	_, err := r.Register(RegisterSolution{
		Handle:    "ab",
		LeftSlot:  minSlot.Value,
		RightSlot: maxSlot.Value,
		Years:     1,
		Payment:   1_000_000,
		Pricing:   factor,
	})
	assert.ErrorIs(t, err, pricing.ErrInvalidHandleLength)
}

func registerHandle(t *testing.T, r *Registry, handle string, currentTime uint64) {
	t.Helper()
	minSlot, _ := r.Slots.Get(slot.MinValueBytes)
	maxSlot, _ := r.Slots.Get(slot.MaxValueBytes)
	factor := pricing.Factor{BasePrice: 100}
	price, err := factor.Price(handle, 1)
	require.NoError(t, err)
	_, err = r.Register(RegisterSolution{
		Handle:             handle,
		LeftSlot:           minSlot.Value,
		RightSlot:          maxSlot.Value,
		Years:              1,
		Payment:            price,
		OwnerLauncherID:    chainhash.Hash{2},
		ResolvedLauncherID: chainhash.Hash{2},
		Pricing:            factor,
		CurrentTime:        currentTime,
	})
	require.NoError(t, err)
}

func TestExpireRequiresPastExpiration(t *testing.T) {
	r := newTestRegistry()
	registerHandle(t, r, "abcdefgh", 100)

	_, err := r.Expire(ExpireSolution{Handle: "abcdefgh", CurrentTime: 100 + secondsPerYear - 1})
	assert.ErrorIs(t, err, ErrNotExpired)

	conds, err := r.Expire(ExpireSolution{Handle: "abcdefgh", CurrentTime: 100 + secondsPerYear + 1})
	require.NoError(t, err)
	assert.Len(t, conds, 9)
	require.NoError(t, r.Slots.CheckWellFormed())

	hh := handleHash("abcdefgh")
	_, exists := r.Slots.Get(hh)
	assert.False(t, exists)
}

func TestExpiredHandleCanBeReRegistered(t *testing.T) {
	r := newTestRegistry()
	registerHandle(t, r, "abcdefgh", 100)
	_, err := r.Expire(ExpireSolution{Handle: "abcdefgh", CurrentTime: 100 + secondsPerYear + 1})
	require.NoError(t, err)

	registerHandle(t, r, "abcdefgh", 100+secondsPerYear+1)
	hh := handleHash("abcdefgh")
	_, exists := r.Slots.Get(hh)
	assert.True(t, exists)
}

func TestUpdateRequiresOwner(t *testing.T) {
	r := newTestRegistry()
	registerHandle(t, r, "abcdefgh", 100)

	_, err := r.Update(UpdateSolution{
		Handle:                "abcdefgh",
		Caller:                chainhash.Hash{9},
		NewOwnerLauncherID:    chainhash.Hash{3},
		NewResolvedLauncherID: chainhash.Hash{3},
	})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = r.Update(UpdateSolution{
		Handle:                "abcdefgh",
		Caller:                chainhash.Hash{2},
		NewOwnerLauncherID:    chainhash.Hash{3},
		NewResolvedLauncherID: chainhash.Hash{3},
	})
	require.NoError(t, err)
	require.NoError(t, r.Slots.CheckWellFormed())
}

func TestRenewExtendsExpiration(t *testing.T) {
	r := newTestRegistry()
	registerHandle(t, r, "abcdefgh", 100)
	hh := handleHash("abcdefgh")
	before, _ := r.Slots.Get(hh)

	factor := pricing.Factor{BasePrice: 100}
	price, err := factor.Price("abcdefgh", 1)
	require.NoError(t, err)
	_, err = r.Renew(RenewSolution{Handle: "abcdefgh", Years: 1, Payment: price, Pricing: factor})
	require.NoError(t, err)

	after, _ := r.Slots.Get(hh)
	assert.Equal(t, before.Value.Expiration+secondsPerYear, after.Value.Expiration)
	require.NoError(t, r.Slots.CheckWellFormed())
}

func TestExponentialPremiumDecaysToBase(t *testing.T) {
	ep := pricing.ExponentialPremium{
		Base:                 pricing.Factor{BasePrice: 100},
		StartPremium:         1_000_000,
		HalvingPeriodSeconds: 86400,
	}
	atZero, err := ep.PriceAt("abcdefgh", 1, 0)
	require.NoError(t, err)
	afterManyHalvings, err := ep.PriceAt("abcdefgh", 1, 86400*40)
	require.NoError(t, err)
	base, err := ep.Base.Price("abcdefgh", 1)
	require.NoError(t, err)

	assert.Greater(t, atZero, base)
	assert.Equal(t, base, afterManyHalvings)
}
