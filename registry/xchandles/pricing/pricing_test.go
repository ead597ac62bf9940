// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorPriceScalesByLengthClass(t *testing.T) {
	f := Factor{BasePrice: 100}

	cases := []struct {
		handle string
		years  uint64
		want   uint64
	}{
		{"abc", 1, 500},     // length 3: class 5
		{"abcd", 1, 400},    // length 4: class 4
		{"abcdef", 1, 200},  // length 6: class 2
		{"abcdefg", 1, 100}, // length 7: floor class 1
		{"abcdefg", 3, 300}, // multi-year
	}
	for _, c := range cases {
		got, err := f.Price(c.handle, c.years)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "handle %q years %d", c.handle, c.years)
	}
}

func TestFactorPriceZeroYearsDefaultsToOne(t *testing.T) {
	f := Factor{BasePrice: 100}
	got, err := f.Price("abcdefg", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got)
}

func TestFactorPriceRejectsHandlesShorterThanThreeRunes(t *testing.T) {
	f := Factor{BasePrice: 100}
	_, err := f.Price("ab", 1)
	assert.ErrorIs(t, err, ErrInvalidHandleLength)
}

func TestFactorPriceHandlesMultibyteRunesByRuneLength(t *testing.T) {
	f := Factor{BasePrice: 100}
	got, err := f.Price("日本語", 1) // 3 runes, 9 bytes
	require.NoError(t, err)
	assert.Equal(t, uint64(500), got)
}

func TestFactorPuzzleHashIsDeterministicAndCurriesBasePrice(t *testing.T) {
	a := Factor{BasePrice: 1000}
	b := Factor{BasePrice: 1000}
	c := Factor{BasePrice: 2000}

	assert.Equal(t, a.PuzzleHash(), b.PuzzleHash())
	assert.NotEqual(t, a.PuzzleHash(), c.PuzzleHash())
}

func TestExponentialPremiumPriceAtDecaysByHalving(t *testing.T) {
	e := ExponentialPremium{
		Base:                 Factor{BasePrice: 100},
		StartPremium:         1000,
		HalvingPeriodSeconds: 86400,
	}

	base, err := e.Base.Price("abcdefg", 1)
	require.NoError(t, err)

	atZero, err := e.PriceAt("abcdefg", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, base+1000, atZero)

	atOneHalving, err := e.PriceAt("abcdefg", 1, 86400)
	require.NoError(t, err)
	assert.Equal(t, base+500, atOneHalving)

	atTwoHalvings, err := e.PriceAt("abcdefg", 1, 172800)
	require.NoError(t, err)
	assert.Equal(t, base+250, atTwoHalvings)
}

func TestExponentialPremiumPriceAtFloorsToBaseOncePremiumUnderflows(t *testing.T) {
	e := ExponentialPremium{
		Base:                 Factor{BasePrice: 100},
		StartPremium:         4,
		HalvingPeriodSeconds: 86400,
	}
	base, err := e.Base.Price("abcdefg", 1)
	require.NoError(t, err)

	got, err := e.PriceAt("abcdefg", 1, 86400*10)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestExponentialPremiumPriceAtWithZeroHalvingPeriodReturnsBaseOnly(t *testing.T) {
	e := ExponentialPremium{
		Base:                 Factor{BasePrice: 100},
		StartPremium:         1000,
		HalvingPeriodSeconds: 0,
	}
	base, err := e.Base.Price("abcdefg", 1)
	require.NoError(t, err)

	got, err := e.PriceAt("abcdefg", 1, 12345)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestExponentialPremiumPriceIgnoresPremiumEntirely(t *testing.T) {
	e := ExponentialPremium{
		Base:                 Factor{BasePrice: 100},
		StartPremium:         1000,
		HalvingPeriodSeconds: 86400,
	}
	base, err := e.Base.Price("abcdefg", 1)
	require.NoError(t, err)

	got, err := e.Price("abcdefg", 1)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestExponentialPremiumPuzzleHashCurriesBaseAndPremiumParameters(t *testing.T) {
	a := ExponentialPremium{Base: Factor{BasePrice: 100}, StartPremium: 1000, HalvingPeriodSeconds: 86400}
	b := ExponentialPremium{Base: Factor{BasePrice: 100}, StartPremium: 1000, HalvingPeriodSeconds: 86400}
	c := ExponentialPremium{Base: Factor{BasePrice: 100}, StartPremium: 2000, HalvingPeriodSeconds: 86400}

	assert.Equal(t, a.PuzzleHash(), b.PuzzleHash())
	assert.NotEqual(t, a.PuzzleHash(), c.PuzzleHash())
}
