// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rewarddist

import (
	"testing"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestRegistry() *Registry {
	return NewRegistry(chainhash.Hash{1}, State{
		EpochStart:      0,
		EpochEnd:        1000,
		LastUpdate:      0,
		ActiveShares:    0,
		WithdrawalShareBps: 5000,
		PayoutThreshold: 10,
	})
}

func TestAddRewardsChargesValidatorFee(t *testing.T) {
	r := newTestRegistry()
	conds, err := r.AddRewards(AddRewardsSolution{Amount: 1000, ValidatorFeeBps: 1000, CurrentTime: 0})
	require.NoError(t, err)
	assert.Equal(t, uint64(900), r.State.RemainingRewards)
	assert.Equal(t, uint64(900), r.State.TotalReserves)
	assert.Len(t, conds, 4)
}

func TestAddRewardsRejectsExcessiveFee(t *testing.T) {
	r := newTestRegistry()
	_, err := r.AddRewards(AddRewardsSolution{Amount: 1000, ValidatorFeeBps: 3000, CurrentTime: 0})
	assert.ErrorIs(t, err, ErrValidatorFeeTooHigh)
}

func TestAddRewardsRejectsAfterEpochEnd(t *testing.T) {
	r := newTestRegistry()
	_, err := r.AddRewards(AddRewardsSolution{Amount: 100, CurrentTime: 1001})
	assert.Error(t, err)
}

func TestSyncAdvancesCumulativePayout(t *testing.T) {
	r := newTestRegistry()
	r.State.RewardRate = 100
	r.State.ActiveShares = 10

	result, err := r.Sync(50)
	require.NoError(t, err)
	assert.False(t, result.Clamped)
	assert.Equal(t, uint64(500), r.State.CumulativePayout)
	assert.Equal(t, uint64(50), r.State.LastUpdate)
}

func TestSyncClampsAtEpochEnd(t *testing.T) {
	r := newTestRegistry()
	r.State.RewardRate = 100
	r.State.ActiveShares = 1

	result, err := r.Sync(5000)
	require.NoError(t, err)
	assert.True(t, result.Clamped)
	assert.Equal(t, uint64(1000), r.State.LastUpdate)
}

func TestSyncRejectsGoingBackwards(t *testing.T) {
	r := newTestRegistry()
	r.State.LastUpdate = 500
	_, err := r.Sync(400)
	assert.ErrorIs(t, err, ErrSyncBeforeLastUpdate)
}

func TestNewEpochRequiresReachingEpochEnd(t *testing.T) {
	r := newTestRegistry()
	r.State.TotalReserves = 1000
	_, err := r.NewEpoch(NewEpochSolution{NextEpochStart: 1000, NextEpochEnd: 2000})
	assert.ErrorIs(t, err, ErrNotAtEpochEnd)

	r.State.LastUpdate = r.State.EpochEnd
	_, err = r.NewEpoch(NewEpochSolution{NextEpochStart: 1000, NextEpochEnd: 2000, Fee: 50})
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), r.State.EpochStart)
	assert.Equal(t, uint64(2000), r.State.EpochEnd)
	assert.Equal(t, uint64(950), r.State.TotalReserves)
}

func TestAddEntryThenInitiatePayoutRespectsThreshold(t *testing.T) {
	r := newTestRegistry()
	r.State.TotalReserves = 1000
	entryKey := [32]byte{7}
	_, err := r.AddEntry(AddEntrySolution{Key: entryKey, PayoutPuzzleHash: chainhash.Hash{9}, Shares: 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.State.ActiveShares)

	_, err = r.InitiatePayout(InitiatePayoutSolution{Key: entryKey})
	assert.ErrorIs(t, err, ErrBelowPayoutThreshold)

	r.State.CumulativePayout = 20
	conds, err := r.InitiatePayout(InitiatePayoutSolution{Key: entryKey})
	require.NoError(t, err)
	assert.Len(t, conds, 4)
	assert.Equal(t, uint64(980), r.State.TotalReserves)
}

func TestRemoveEntryPaysOwedAmountFirst(t *testing.T) {
	r := newTestRegistry()
	r.State.TotalReserves = 1000
	entryKey := [32]byte{7}
	_, err := r.AddEntry(AddEntrySolution{Key: entryKey, PayoutPuzzleHash: chainhash.Hash{9}, Shares: 2})
	require.NoError(t, err)

	r.State.CumulativePayout = 10
	conds, err := r.RemoveEntry(RemoveEntrySolution{Key: entryKey, PayoutPuzzleHash: chainhash.Hash{9}, Shares: 2})
	require.NoError(t, err)
	assert.Len(t, conds, 3)
	assert.Equal(t, uint64(0), r.State.ActiveShares)
	assert.Equal(t, uint64(980), r.State.TotalReserves)

	_, exists := r.EntrySlots.Get(entryKey)
	assert.False(t, exists)
}

func TestCommitThenWithdrawRewards(t *testing.T) {
	r := newTestRegistry()
	r.State.TotalReserves = 0

	_, err := r.CommitRewards(CommitRewardsSolution{EpochStart: 2000, Amount: 1000, NextEpochStart: 1000})
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), r.State.TotalReserves)

	commitment := CommitmentSlotValue{EpochStart: 2000, Amount: 1000, ClawbackPuzzleHash: r.State.ClawbackPuzzleHash}
	commitKey := [32]byte(commitment.Hash())

	conds, err := r.Withdraw(WithdrawSolution{EpochStart: 2000, CommitmentKey: commitKey, WithdrawalShareBps: 5000}, 500)
	require.NoError(t, err)
	assert.Len(t, conds, 4)
	assert.Equal(t, uint64(500), r.State.TotalReserves)
}

func TestCommitRewardsRejectsPastEpoch(t *testing.T) {
	r := newTestRegistry()
	_, err := r.CommitRewards(CommitRewardsSolution{EpochStart: 500, Amount: 10, NextEpochStart: 1000})
	assert.ErrorIs(t, err, ErrPastEpoch)
}

// TestPayoutLawNeverExceedsReserves is a property test asserting the
// reward-distributor invariant from §4.5: the reserve coin's amount never
// goes negative across a sequence of add-entry/sync/initiate-payout calls.
func TestPayoutLawNeverExceedsReserves(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r := newTestRegistry()
		r.State.TotalReserves = rapid.Uint64Range(1000, 1_000_000).Draw(rt, "reserves")
		r.State.RewardRate = rapid.Uint64Range(1, 1000).Draw(rt, "reward_rate")
		r.State.EpochEnd = rapid.Uint64Range(1000, 100000).Draw(rt, "epoch_end")

		numEntries := rapid.IntRange(1, 5).Draw(rt, "num_entries")
		keys := make([][32]byte, numEntries)
		for i := 0; i < numEntries; i++ {
			var key [32]byte
			key[0] = byte(i + 1)
			keys[i] = key
			shares := rapid.Uint64Range(1, 100).Draw(rt, "shares")
			if _, err := r.AddEntry(AddEntrySolution{Key: key, PayoutPuzzleHash: chainhash.Hash{byte(i + 1)}, Shares: shares}); err != nil {
				rt.Fatalf("add-entry: %v", err)
			}
		}

		syncTo := rapid.Uint64Range(1, r.State.EpochEnd+500).Draw(rt, "sync_to")
		if syncTo > 0 {
			if _, err := r.Sync(syncTo); err != nil {
				rt.Fatalf("sync: %v", err)
			}
		}

		for _, key := range keys {
			entry, exists := r.EntrySlots.Get(key)
			if !exists {
				continue
			}
			owed := r.owed(entry.Value)
			if owed > r.State.TotalReserves {
				continue // InitiatePayout/RemoveEntry reject this, never silently overspend
			}
			if owed >= r.State.PayoutThreshold {
				if _, err := r.InitiatePayout(InitiatePayoutSolution{Key: key}); err != nil {
					rt.Fatalf("initiate-payout: %v", err)
				}
			}
		}

		if r.State.TotalReserves > 1<<63 {
			rt.Fatalf("reserves underflowed: %d", r.State.TotalReserves)
		}
	})
}
