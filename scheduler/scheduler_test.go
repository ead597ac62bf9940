// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scheduler

import (
	"testing"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SetModHash(clvm.HashAtom([]byte("state-scheduler-test-mod")))
}

func hashLabel(label string) chainhash.Hash {
	return clvm.HashAtom([]byte(label))
}

func TestInnerPuzzleHashForGenerationBeyondScheduleIsFinal(t *testing.T) {
	final := hashLabel("final")
	sched := NewSchedule[int](chainhash.Hash{1}, chainhash.Hash{2},
		[]Entry[int]{{RequiredBlockHeight: 100, State: 1}, {RequiredBlockHeight: 200, State: 2}},
		final, func(s int) chainhash.Hash { return clvm.HashAtom([]byte{byte(s)}) })

	assert.Equal(t, final, sched.InnerPuzzleHashForGeneration(5))
	assert.Equal(t, final, sched.InnerPuzzleHashForGeneration(2))
}

func TestInnerPuzzleHashForGenerationDiffersPerGeneration(t *testing.T) {
	final := hashLabel("final")
	sched := NewSchedule[int](chainhash.Hash{1}, chainhash.Hash{2},
		[]Entry[int]{{RequiredBlockHeight: 100, State: 1}, {RequiredBlockHeight: 200, State: 2}},
		final, func(s int) chainhash.Hash { return clvm.HashAtom([]byte{byte(s)}) })

	gen0 := sched.InnerPuzzleHashForGeneration(0)
	gen1 := sched.InnerPuzzleHashForGeneration(1)
	assert.NotEqual(t, gen0, gen1)
	assert.NotEqual(t, gen1, final)
}

func TestInnerPuzzleHashForGenerationIsDeterministic(t *testing.T) {
	final := hashLabel("final")
	build := func() *Schedule[int] {
		return NewSchedule[int](chainhash.Hash{1}, chainhash.Hash{2},
			[]Entry[int]{{RequiredBlockHeight: 100, State: 1}, {RequiredBlockHeight: 200, State: 2}, {RequiredBlockHeight: 300, State: 3}},
			final, func(s int) chainhash.Hash { return clvm.HashAtom([]byte{byte(s)}) })
	}
	a := build()
	b := build()
	assert.Equal(t, a.InnerPuzzleHashForGeneration(0), b.InnerPuzzleHashForGeneration(0))
}

func TestSpendRejectsOutOfRangeGeneration(t *testing.T) {
	sched := NewSchedule[int](chainhash.Hash{1}, chainhash.Hash{2}, nil, hashLabel("final"), func(s int) chainhash.Hash { return chainhash.Hash{} })
	_, err := sched.Spend(0)
	assert.ErrorIs(t, err, ErrGenerationOutOfRange)
}

func TestSpendEmitsHeightAssertionAndSuccessorCoin(t *testing.T) {
	sched := NewSchedule[int](chainhash.Hash{1}, chainhash.Hash{2},
		[]Entry[int]{{RequiredBlockHeight: 100, State: 1}},
		hashLabel("final"), func(s int) chainhash.Hash { return clvm.HashAtom([]byte{byte(s)}) })

	conds, err := sched.Spend(0)
	require.NoError(t, err)
	assert.Len(t, conds, 3)
}

func TestPriceScheduleCurrentPriceClampsAtEnd(t *testing.T) {
	ps := NewPriceSchedule(chainhash.Hash{1}, chainhash.Hash{2},
		[]Entry[Price]{{RequiredBlockHeight: 100, State: 1000}, {RequiredBlockHeight: 200, State: 2000}},
		hashLabel("final"))

	assert.Equal(t, Price(1000), ps.CurrentPrice(0))
	assert.Equal(t, Price(2000), ps.CurrentPrice(1))
	assert.Equal(t, Price(2000), ps.CurrentPrice(99))
}
