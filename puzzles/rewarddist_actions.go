// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package puzzles

// Reward distributor action mod hashes (§4.5). add-rewards, remove-mirror
// (entry removal), and sync are bit-exact, copied from the reference
// source's dig_add_incentives / dig_remove_mirror / dig_sync puzzles. The
// remaining five actions (commit-rewards, withdraw-rewards, new-epoch,
// add-entry, initiate-payout) are derived: their raw bytecode wasn't part
// of the retrieved reference material.
var (
	RewardDistAddRewardsModHash    = mustHash("723650e5eadbf3631e366d7083479124a9ec1823dac069749949fb00dcb41835")
	RewardDistRemoveEntryModHash   = mustHash("addf22b86ab52e2fd13a1b5d2a0a9b31ccae2859012b202cae037295025c3f9b")
	RewardDistSyncModHash          = mustHash("59f43204bc4029631fd3d7deaee02af4c66720788dd24249eb5e0176cd8348cc")
	RewardDistCommitRewardsModHash = derivedModHash("rewarddist-commit-rewards-action-v1")
	RewardDistWithdrawModHash      = derivedModHash("rewarddist-withdraw-rewards-action-v1")
	RewardDistNewEpochModHash      = derivedModHash("rewarddist-new-epoch-action-v1")
	RewardDistAddEntryModHash      = derivedModHash("rewarddist-add-entry-action-v1")
	RewardDistInitiatePayoutModHash = derivedModHash("rewarddist-initiate-payout-action-v1")
)
