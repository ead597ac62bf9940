// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rewarddist implements the reward distributor registry singleton:
// a continuously-updated cumulative-payout counter over a reserve coin,
// epoch-scoped reward commitments, and entry slots tracking each
// participant's pro-rata share (§4.5). It generalizes the one-shot
// quarterly claim table the teacher's liquidity reward program uses into a
// per-share counter that advances on every sync.
package rewarddist

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btclog"
	"github.com/chia-network/registry-core/action"
	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
	"github.com/chia-network/registry-core/puzzles"
	"github.com/chia-network/registry-core/slot"
	"github.com/chia-network/registry-core/wire"
)

var log = btclog.Disabled

// UseLogger sets the package-wide logger used by rewarddist.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// maxValidatorFeeBps is the hard consensus-level ceiling on the validator
// fee taken from incoming incentive deposits before the remainder enters
// the epoch's reward pool: a fee above 25% would materially break the
// pro-rata payout invariant's usefulness to honest participants.
const maxValidatorFeeBps = 2500

var (
	// ErrInsufficientReserve is returned when an action would reduce the
	// reserve below zero.
	ErrInsufficientReserve = errors.New("rewarddist: action would overspend the reserve")

	// ErrPastEpoch is returned when commit-rewards targets an epoch_start
	// before the next upcoming epoch.
	ErrPastEpoch = errors.New("rewarddist: cannot commit to a past or current epoch")

	// ErrNotAtEpochEnd is returned when new-epoch is invoked before
	// last_update has reached the current epoch's end.
	ErrNotAtEpochEnd = errors.New("rewarddist: epoch has not yet ended")

	// ErrSyncBeforeLastUpdate is returned when sync is asked to move the
	// clock backwards.
	ErrSyncBeforeLastUpdate = errors.New("rewarddist: sync time must be after last_update")

	// ErrValidatorFeeTooHigh is returned when add-rewards is given a
	// validator fee above maxValidatorFeeBps.
	ErrValidatorFeeTooHigh = errors.New("rewarddist: validator fee exceeds 25% ceiling")

	// ErrBelowPayoutThreshold is returned when initiate-payout is invoked
	// on an entry whose owed amount hasn't reached state.PayoutThreshold.
	ErrBelowPayoutThreshold = errors.New("rewarddist: owed amount below payout threshold")

	// ErrEntryNotFound is returned when an action names an entry slot
	// that does not exist.
	ErrEntryNotFound = errors.New("rewarddist: entry slot not found")

	// ErrCommitmentNotFound is returned when withdraw-rewards names a
	// commitment slot that does not exist.
	ErrCommitmentNotFound = errors.New("rewarddist: commitment slot not found")
)

// State is the reward distributor singleton's typed state record (§4.5).
type State struct {
	TotalReserves             uint64
	ActiveShares              uint64
	CumulativePayout          uint64
	RemainingRewards          uint64
	RewardRate                uint64
	EpochStart                uint64
	EpochEnd                  uint64
	LastUpdate                uint64
	WithdrawalShareBps        uint64
	PayoutThreshold           uint64
	ClawbackPuzzleHash        chainhash.Hash
	FeePayoutPuzzleHash       chainhash.Hash
	ValidatorPayoutPuzzleHash chainhash.Hash
}

// hashState folds every field of State into the tree hash curried into
// the registry's action-layer inner puzzle, in declaration order,
// matching the scheduler package's StateHasher convention.
func hashState(s State) chainhash.Hash {
	h := clvm.HashAtom(uint64Bytes(s.TotalReserves))
	h = clvm.HashPair(h, clvm.HashAtom(uint64Bytes(s.ActiveShares)))
	h = clvm.HashPair(h, clvm.HashAtom(uint64Bytes(s.CumulativePayout)))
	h = clvm.HashPair(h, clvm.HashAtom(uint64Bytes(s.RemainingRewards)))
	h = clvm.HashPair(h, clvm.HashAtom(uint64Bytes(s.RewardRate)))
	h = clvm.HashPair(h, clvm.HashAtom(uint64Bytes(s.EpochStart)))
	h = clvm.HashPair(h, clvm.HashAtom(uint64Bytes(s.EpochEnd)))
	h = clvm.HashPair(h, clvm.HashAtom(uint64Bytes(s.LastUpdate)))
	h = clvm.HashPair(h, clvm.HashAtom(uint64Bytes(s.WithdrawalShareBps)))
	h = clvm.HashPair(h, clvm.HashAtom(uint64Bytes(s.PayoutThreshold)))
	h = clvm.HashPair(h, clvm.HashAtom(s.ClawbackPuzzleHash[:]))
	h = clvm.HashPair(h, clvm.HashAtom(s.FeePayoutPuzzleHash[:]))
	h = clvm.HashPair(h, clvm.HashAtom(s.ValidatorPayoutPuzzleHash[:]))
	return h
}

// RewardSlotValue is a reward-slot's committed value, keyed by its
// epoch_start under the nonce-0 slot family.
type RewardSlotValue struct {
	EpochStart uint64
	Rewards    uint64
}

// Hash returns the on-chain value_hash committed by a slot carrying v.
func (v RewardSlotValue) Hash() chainhash.Hash {
	return clvm.HashPair(clvm.HashAtom(uint64Bytes(v.EpochStart)), clvm.HashAtom(uint64Bytes(v.Rewards)))
}

// CommitmentSlotValue records a pending commit-rewards deposit awaiting
// either future-epoch withdrawal or roll-forward into the reward pool.
type CommitmentSlotValue struct {
	EpochStart         uint64
	Amount             uint64
	ClawbackPuzzleHash chainhash.Hash
}

// Hash returns the on-chain value_hash committed by a slot carrying v.
func (v CommitmentSlotValue) Hash() chainhash.Hash {
	return clvm.HashPair(
		clvm.HashAtom(uint64Bytes(v.EpochStart)),
		clvm.HashPair(clvm.HashAtom(uint64Bytes(v.Amount)), clvm.HashAtom(v.ClawbackPuzzleHash[:])),
	)
}

// EntrySlotValue is a participant's pro-rata share record: its initial
// cumulative-payout snapshot (owed = (current_cum - initial_cum) * shares),
// payout destination, and share count, per the original's
// DigRemoveMirrorActionSolution shape.
type EntrySlotValue struct {
	PayoutPuzzleHash        chainhash.Hash
	Shares                  uint64
	InitialCumulativePayout uint64
}

// Hash returns the on-chain value_hash committed by a slot carrying v.
func (v EntrySlotValue) Hash() chainhash.Hash {
	return clvm.HashPair(
		clvm.HashAtom(v.PayoutPuzzleHash[:]),
		clvm.HashPair(clvm.HashAtom(uint64Bytes(v.Shares)), clvm.HashAtom(uint64Bytes(v.InitialCumulativePayout))),
	)
}

func uint64Bytes(v uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * (7 - i)))
	}
	return b[:]
}

// Registry is the in-memory projection of a reward-distributor singleton.
// RewardSlots and CommitmentSlots are keyed (non-ordered) families;
// EntrySlots is keyed by an opaque per-participant identity.
type Registry struct {
	LauncherID      chainhash.Hash
	State           State
	RewardSlots     *slot.Index[RewardSlotValue]
	CommitmentSlots *slot.Index[CommitmentSlotValue]
	EntrySlots      *slot.Index[EntrySlotValue]
	Table           *action.Table
}

// NewRegistry creates an empty reward distributor registry.
func NewRegistry(launcherID chainhash.Hash, state State) *Registry {
	return &Registry{
		LauncherID:      launcherID,
		State:           state,
		RewardSlots:     slot.NewIndex[RewardSlotValue](),
		CommitmentSlots: slot.NewIndex[CommitmentSlotValue](),
		EntrySlots:      slot.NewIndex[EntrySlotValue](),
		Table: action.NewTable([]chainhash.Hash{
			puzzles.RewardDistAddRewardsModHash,
			puzzles.RewardDistCommitRewardsModHash,
			puzzles.RewardDistWithdrawModHash,
			puzzles.RewardDistNewEpochModHash,
			puzzles.RewardDistSyncModHash,
			puzzles.RewardDistAddEntryModHash,
			puzzles.RewardDistRemoveEntryModHash,
			puzzles.RewardDistInitiatePayoutModHash,
		}),
	}
}

// innerPuzzleHash returns the curried action-layer inner puzzle hash for a
// given state: the value a spend must recreate this singleton at, and the
// value slot.Spend asserts as the spender's identity.
func (r *Registry) innerPuzzleHash(s State) chainhash.Hash {
	return clvm.Curry(puzzles.ActionLayerModHash, clvm.HashAtom(r.LauncherID[:]), clvm.HashAtom(r.Table.Root()[:]), hashState(s))
}

// reservePuzzleHash returns this registry's reserve coin's puzzle hash,
// curried with its launcher ID so no two registries' reserve coins can
// collide.
func (r *Registry) reservePuzzleHash() chainhash.Hash {
	return clvm.CurryBytes(puzzles.ReserveModHash, r.LauncherID[:])
}

// reserveCondition returns the CREATE_COIN that recreates the reserve coin
// at totalReserves, the amount every reserve-mutating action must emit per
// §4.5's "successor_reserve.amount == successor_state.total_reserves"
// invariant.
func (r *Registry) reserveCondition(totalReserves uint64) wire.Condition {
	ph := r.reservePuzzleHash()
	return wire.Condition{Opcode: wire.OpCreateCoin, Args: [][]byte{ph[:], uint64Bytes(totalReserves)}}
}

// createCoin returns the CREATE_COIN condition that recreates this
// registry's singleton at the given (curried) inner puzzle hash.
func createCoin(puzzleHash chainhash.Hash) wire.Condition {
	return wire.Condition{Opcode: wire.OpCreateCoin, Args: [][]byte{puzzleHash[:], {1}}}
}

func epochKey(epochStart uint64) [32]byte {
	h := clvm.HashAtom(uint64Bytes(epochStart))
	return [32]byte(h)
}

// owedFor computes an entry's currently-accrued, unpaid reward balance
// under the given state.
func owedFor(state State, e EntrySlotValue) uint64 {
	return (state.CumulativePayout - e.InitialCumulativePayout) * e.Shares
}

// owed computes an entry's currently-accrued, unpaid reward balance under
// the registry's current state.
func (r *Registry) owed(e EntrySlotValue) uint64 {
	return owedFor(r.State, e)
}

// AddRewardsSolution deposits an incentive payment into the distributor,
// taking a configured validator fee off the top before the remainder
// reaches the reward pool — the supplemented validator/manager fee
// restored from the original's dig_add_incentives action.
type AddRewardsSolution struct {
	Amount          uint64
	ValidatorFeeBps uint64
	CurrentTime     uint64
}

// addRewardsNextState validates and computes the state add-rewards would
// produce, without emitting conditions or touching slot indices.
func addRewardsNextState(state State, sol AddRewardsSolution) (next State, fee uint64, net uint64, err error) {
	if sol.ValidatorFeeBps > maxValidatorFeeBps {
		return state, 0, 0, ErrValidatorFeeTooHigh
	}
	if sol.CurrentTime > state.EpochEnd {
		return state, 0, 0, fmt.Errorf("rewarddist: add-rewards after epoch_end %d at %d", state.EpochEnd, sol.CurrentTime)
	}
	fee = sol.Amount * sol.ValidatorFeeBps / 10000
	net = sol.Amount - fee
	next = state
	next.RemainingRewards += net
	next.TotalReserves += net
	return next, fee, net, nil
}

// addRewardsAction wires AddRewards through the action-dispatched layer:
// its puzzle hash must be a member of the registry's Table, and its Apply
// is the authoritative implementation the public AddRewards method
// delegates to.
type addRewardsAction struct{ r *Registry }

func (a addRewardsAction) PuzzleHash() chainhash.Hash { return puzzles.RewardDistAddRewardsModHash }

func (a addRewardsAction) Apply(state State, sol AddRewardsSolution) (State, []wire.Condition, error) {
	next, fee, net, err := addRewardsNextState(state, sol)
	if err != nil {
		return state, nil, err
	}
	log.Infof("rewarddist: add-rewards amount=%d fee=%d net=%d", sol.Amount, fee, net)

	announcement := append(uint64Bytes(net), uint64Bytes(next.EpochEnd)...)
	conds := []wire.Condition{{Opcode: wire.OpReceiveMessage, Args: [][]byte{announcement}}}
	if fee > 0 {
		conds = append(conds, wire.Condition{
			Opcode: wire.OpCreateCoin,
			Args:   [][]byte{next.ValidatorPayoutPuzzleHash[:], uint64Bytes(fee)},
		})
	}
	conds = append(conds, a.r.reserveCondition(next.TotalReserves), createCoin(a.r.innerPuzzleHash(next)))
	return next, conds, nil
}

// AddRewards deposits Amount (less the validator fee) into the current
// epoch's reward pool, per §4.5's "add-rewards" action. It emits a
// puzzle-announcement carrying (amount, epoch_end) instead of mutating a
// slot directly, matching the table's "Consumes: —" row, plus the reserve
// recreation every reserve-mutating action must produce.
func (r *Registry) AddRewards(sol AddRewardsSolution) ([]wire.Condition, error) {
	next, _, _, err := addRewardsNextState(r.State, sol)
	if err != nil {
		return nil, err
	}
	successorPH := r.innerPuzzleHash(next)
	layer := action.NewLayer[State, AddRewardsSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, AddRewardsSolution]{addRewardsAction{r: r}}, []AddRewardsSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// CommitRewardsSolution stakes Amount into a future epoch's reward slot,
// splitting the existing reward-slot(epoch_start) into a commitment-slot
// plus a replacement reward-slot with rewards increased by Amount.
type CommitRewardsSolution struct {
	EpochStart     uint64
	Amount         uint64
	NextEpochStart uint64
}

func commitRewardsNextState(state State, sol CommitRewardsSolution) (State, error) {
	if sol.EpochStart < sol.NextEpochStart {
		return state, ErrPastEpoch
	}
	next := state
	next.TotalReserves += sol.Amount
	return next, nil
}

type commitRewardsAction struct{ r *Registry }

func (a commitRewardsAction) PuzzleHash() chainhash.Hash {
	return puzzles.RewardDistCommitRewardsModHash
}

func (a commitRewardsAction) Apply(state State, sol CommitRewardsSolution) (State, []wire.Condition, error) {
	r := a.r
	next, err := commitRewardsNextState(state, sol)
	if err != nil {
		return state, nil, err
	}

	key := epochKey(sol.EpochStart)
	existing, exists := r.RewardSlots.Get(key)
	rewards := sol.Amount
	if exists {
		rewards += existing.Value.Rewards
		if err := r.RewardSlots.Remove(key); err != nil {
			return state, nil, err
		}
	}
	newReward := RewardSlotValue{EpochStart: sol.EpochStart, Rewards: rewards}
	if err := r.RewardSlots.Put(key, [32]byte{}, [32]byte{}, &slot.Slot[RewardSlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceReward, ValueHash: newReward.Hash(), Value: newReward,
	}); err != nil {
		return state, nil, err
	}

	commitment := CommitmentSlotValue{EpochStart: sol.EpochStart, Amount: sol.Amount, ClawbackPuzzleHash: state.ClawbackPuzzleHash}
	commitKey := [32]byte(commitment.Hash())
	if err := r.CommitmentSlots.Put(commitKey, [32]byte{}, [32]byte{}, &slot.Slot[CommitmentSlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceCommitment, ValueHash: commitment.Hash(), Value: commitment,
	}); err != nil {
		return state, nil, err
	}

	log.Infof("rewarddist: committed %d to epoch_start=%d", sol.Amount, sol.EpochStart)
	return next, []wire.Condition{
		slot.CreateConditions(r.LauncherID, slot.NonceReward, newReward.Hash()),
		slot.CreateConditions(r.LauncherID, slot.NonceCommitment, commitment.Hash()),
		r.reserveCondition(next.TotalReserves),
		createCoin(r.innerPuzzleHash(next)),
	}, nil
}

// CommitRewards implements §4.5's "commit-rewards" action: epoch_start
// must be at or after the next upcoming epoch, and the clawback puzzle
// hash recorded on the commitment slot is pinned to state's configured
// value so only the registered clawback path can later withdraw it.
func (r *Registry) CommitRewards(sol CommitRewardsSolution) ([]wire.Condition, error) {
	next, err := commitRewardsNextState(r.State, sol)
	if err != nil {
		return nil, err
	}
	successorPH := r.innerPuzzleHash(next)
	layer := action.NewLayer[State, CommitRewardsSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, CommitRewardsSolution]{commitRewardsAction{r: r}}, []CommitRewardsSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// WithdrawSolution reclaims a fraction of a future-epoch commitment back
// to the clawback puzzle hash, reducing the matching reward slot.
type WithdrawSolution struct {
	EpochStart         uint64
	CommitmentKey      [32]byte
	WithdrawalShareBps uint64
}

// resolveWithdraw validates a withdraw and computes the amount it would
// reclaim, without mutating any slot index.
func (r *Registry) resolveWithdraw(state State, sol WithdrawSolution, currentTime uint64) (commitment CommitmentSlotValue, reward RewardSlotValue, withdrawn uint64, err error) {
	if sol.EpochStart <= currentTime {
		return commitment, reward, 0, fmt.Errorf("rewarddist: withdraw only allowed for future epochs, epoch_start=%d current_time=%d", sol.EpochStart, currentTime)
	}
	commitmentSlot, exists := r.CommitmentSlots.Get(sol.CommitmentKey)
	if !exists {
		return commitment, reward, 0, ErrCommitmentNotFound
	}
	key := epochKey(sol.EpochStart)
	rewardSlot, exists := r.RewardSlots.Get(key)
	if !exists {
		return commitment, reward, 0, fmt.Errorf("rewarddist: no reward slot for epoch_start=%d", sol.EpochStart)
	}

	share := sol.WithdrawalShareBps
	if share == 0 {
		share = state.WithdrawalShareBps
	}
	withdrawn = commitmentSlot.Value.Amount * share / 10000
	if withdrawn > rewardSlot.Value.Rewards {
		return commitment, reward, 0, ErrInsufficientReserve
	}
	return commitmentSlot.Value, rewardSlot.Value, withdrawn, nil
}

type withdrawAction struct {
	r           *Registry
	currentTime uint64
}

func (a withdrawAction) PuzzleHash() chainhash.Hash { return puzzles.RewardDistWithdrawModHash }

func (a withdrawAction) Apply(state State, sol WithdrawSolution) (State, []wire.Condition, error) {
	r := a.r
	commitment, reward, withdrawn, err := r.resolveWithdraw(state, sol, a.currentTime)
	if err != nil {
		return state, nil, err
	}

	if err := r.CommitmentSlots.Remove(sol.CommitmentKey); err != nil {
		return state, nil, err
	}
	key := epochKey(sol.EpochStart)
	if err := r.RewardSlots.Remove(key); err != nil {
		return state, nil, err
	}
	newReward := RewardSlotValue{EpochStart: sol.EpochStart, Rewards: reward.Rewards - withdrawn}
	if err := r.RewardSlots.Put(key, [32]byte{}, [32]byte{}, &slot.Slot[RewardSlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceReward, ValueHash: newReward.Hash(), Value: newReward,
	}); err != nil {
		return state, nil, err
	}

	next := state
	next.TotalReserves -= withdrawn
	return next, []wire.Condition{
		slot.CreateConditions(r.LauncherID, slot.NonceReward, newReward.Hash()),
		{Opcode: wire.OpCreateCoin, Args: [][]byte{commitment.ClawbackPuzzleHash[:], uint64Bytes(withdrawn)}},
		r.reserveCondition(next.TotalReserves),
		createCoin(r.innerPuzzleHash(next)),
	}, nil
}

// Withdraw implements §4.5's "withdraw-rewards" action: consumes the
// commitment-slot and its matching reward-slot, producing a reward-slot
// with rewards reduced by withdrawal_share * amount. It is restricted to
// future (not-yet-started) epochs, matching the table's "future-epoch
// only" guard.
func (r *Registry) Withdraw(sol WithdrawSolution, currentTime uint64) ([]wire.Condition, error) {
	_, _, withdrawn, err := r.resolveWithdraw(r.State, sol, currentTime)
	if err != nil {
		return nil, err
	}
	next := r.State
	next.TotalReserves -= withdrawn
	successorPH := r.innerPuzzleHash(next)
	layer := action.NewLayer[State, WithdrawSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, WithdrawSolution]{withdrawAction{r: r, currentTime: currentTime}}, []WithdrawSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// NewEpochSolution advances the distributor into its next epoch.
type NewEpochSolution struct {
	NextEpochStart uint64
	NextEpochEnd   uint64
	Fee            uint64
}

func newEpochNextState(state State, sol NewEpochSolution) (State, error) {
	if state.LastUpdate != state.EpochEnd {
		return state, ErrNotAtEpochEnd
	}
	if sol.Fee > state.TotalReserves {
		return state, ErrInsufficientReserve
	}
	next := state
	next.TotalReserves -= sol.Fee
	next.EpochStart = sol.NextEpochStart
	next.EpochEnd = sol.NextEpochEnd
	return next, nil
}

type newEpochAction struct{ r *Registry }

func (a newEpochAction) PuzzleHash() chainhash.Hash { return puzzles.RewardDistNewEpochModHash }

func (a newEpochAction) Apply(state State, sol NewEpochSolution) (State, []wire.Condition, error) {
	next, err := newEpochNextState(state, sol)
	if err != nil {
		return state, nil, err
	}
	log.Infof("rewarddist: new-epoch start=%d end=%d fee=%d", sol.NextEpochStart, sol.NextEpochEnd, sol.Fee)

	var conds []wire.Condition
	if sol.Fee > 0 {
		conds = append(conds, wire.Condition{
			Opcode: wire.OpCreateCoin,
			Args:   [][]byte{state.FeePayoutPuzzleHash[:], uint64Bytes(sol.Fee)},
		})
	}
	conds = append(conds, a.r.reserveCondition(next.TotalReserves), createCoin(a.r.innerPuzzleHash(next)))
	return next, conds, nil
}

// NewEpoch implements §4.5's "new-epoch" action: requires last_update ==
// epoch_end, pays Fee to state.FeePayoutPuzzleHash, and advances state to
// the next epoch.
func (r *Registry) NewEpoch(sol NewEpochSolution) ([]wire.Condition, error) {
	next, err := newEpochNextState(r.State, sol)
	if err != nil {
		return nil, err
	}
	successorPH := r.innerPuzzleHash(next)
	layer := action.NewLayer[State, NewEpochSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, NewEpochSolution]{newEpochAction{r: r}}, []NewEpochSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// SyncResult reports the outcome of a Sync call, including whether the
// requested time was clamped to epoch_end.
type SyncResult struct {
	Clamped       bool
	AppliedDeltaT uint64
	NewCumulative uint64
}

func syncNextState(state State, t uint64) (State, SyncResult, error) {
	if t <= state.LastUpdate {
		return state, SyncResult{}, ErrSyncBeforeLastUpdate
	}
	clamped := false
	target := t
	if target > state.EpochEnd {
		target = state.EpochEnd
		clamped = true
	}
	deltaT := target - state.LastUpdate

	next := state
	if next.ActiveShares > 0 {
		next.CumulativePayout += next.RewardRate * deltaT / next.ActiveShares
	}
	next.LastUpdate = target
	return next, SyncResult{Clamped: clamped, AppliedDeltaT: deltaT, NewCumulative: next.CumulativePayout}, nil
}

type syncAction struct{ r *Registry }

func (a syncAction) PuzzleHash() chainhash.Hash { return puzzles.RewardDistSyncModHash }

func (a syncAction) Apply(state State, t uint64) (State, []wire.Condition, error) {
	next, result, err := syncNextState(state, t)
	if err != nil {
		return state, nil, err
	}
	log.Debugf("rewarddist: sync t=%d delta_t=%d clamped=%v cumulative_payout=%d", t, result.AppliedDeltaT, result.Clamped, next.CumulativePayout)
	return next, []wire.Condition{createCoin(a.r.innerPuzzleHash(next))}, nil
}

// Sync advances state.LastUpdate and state.CumulativePayout by
// (reward_rate * delta_time / active_shares), per §4.5's integer-floor
// math. Requests past epoch_end are silently clamped (§9's stated
// implementation choice, carried here), but the clamp is reported back to
// the caller via SyncResult.Clamped so it remains observable.
func (r *Registry) Sync(t uint64) (SyncResult, error) {
	next, result, err := syncNextState(r.State, t)
	if err != nil {
		return SyncResult{}, err
	}
	successorPH := r.innerPuzzleHash(next)
	layer := action.NewLayer[State, uint64](r.Table)
	finalState, _, err := layer.Spend(r.State, []action.Action[State, uint64]{syncAction{r: r}}, []uint64{t}, successorPH)
	if err != nil {
		return SyncResult{}, err
	}
	r.State = finalState
	return result, nil
}

// AddEntrySolution registers a new participant's pro-rata share at the
// registry's current cumulative payout snapshot.
type AddEntrySolution struct {
	Key              [32]byte
	PayoutPuzzleHash chainhash.Hash
	Shares           uint64
}

func addEntryNextState(state State, sol AddEntrySolution) State {
	next := state
	next.ActiveShares += sol.Shares
	return next
}

type addEntryAction struct{ r *Registry }

func (a addEntryAction) PuzzleHash() chainhash.Hash { return puzzles.RewardDistAddEntryModHash }

func (a addEntryAction) Apply(state State, sol AddEntrySolution) (State, []wire.Condition, error) {
	r := a.r
	value := EntrySlotValue{PayoutPuzzleHash: sol.PayoutPuzzleHash, Shares: sol.Shares, InitialCumulativePayout: state.CumulativePayout}
	if err := r.EntrySlots.Put(sol.Key, [32]byte{}, [32]byte{}, &slot.Slot[EntrySlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: value.Hash(), Value: value,
	}); err != nil {
		return state, nil, err
	}
	next := addEntryNextState(state, sol)
	return next, []wire.Condition{
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, value.Hash()),
		createCoin(r.innerPuzzleHash(next)),
	}, nil
}

// AddEntry implements §4.5's "add-entry" action: authorization (external
// manager/NFT signature check) happens at the call site, since it is a
// BLS/secp256k1 verification concern outside this package's scope.
func (r *Registry) AddEntry(sol AddEntrySolution) ([]wire.Condition, error) {
	next := addEntryNextState(r.State, sol)
	successorPH := r.innerPuzzleHash(next)
	layer := action.NewLayer[State, AddEntrySolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, AddEntrySolution]{addEntryAction{r: r}}, []AddEntrySolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// RemoveEntrySolution names an entry slot to remove, along with the
// payout puzzle hash and shares the original's DigRemoveMirrorActionSolution
// requires explicitly rather than trusting an opaque handle.
type RemoveEntrySolution struct {
	Key              [32]byte
	PayoutPuzzleHash chainhash.Hash
	Shares           uint64
}

func (r *Registry) resolveRemoveEntry(state State, sol RemoveEntrySolution) (EntrySlotValue, uint64, State, error) {
	entry, exists := r.EntrySlots.Get(sol.Key)
	if !exists {
		return EntrySlotValue{}, 0, state, ErrEntryNotFound
	}
	if entry.Value.PayoutPuzzleHash != sol.PayoutPuzzleHash || entry.Value.Shares != sol.Shares {
		return EntrySlotValue{}, 0, state, fmt.Errorf("rewarddist: remove-entry solution does not match entry slot")
	}
	owed := owedFor(state, entry.Value)
	if owed > state.TotalReserves {
		return EntrySlotValue{}, 0, state, ErrInsufficientReserve
	}
	next := state
	next.ActiveShares -= entry.Value.Shares
	next.TotalReserves -= owed
	return entry.Value, owed, next, nil
}

type removeEntryAction struct{ r *Registry }

func (a removeEntryAction) PuzzleHash() chainhash.Hash { return puzzles.RewardDistRemoveEntryModHash }

func (a removeEntryAction) Apply(state State, sol RemoveEntrySolution) (State, []wire.Condition, error) {
	r := a.r
	_, owed, next, err := r.resolveRemoveEntry(state, sol)
	if err != nil {
		return state, nil, err
	}
	if err := r.EntrySlots.Remove(sol.Key); err != nil {
		return state, nil, err
	}

	var conds []wire.Condition
	if owed > 0 {
		conds = append(conds, wire.Condition{Opcode: wire.OpCreateCoin, Args: [][]byte{sol.PayoutPuzzleHash[:], uint64Bytes(owed)}})
	}
	conds = append(conds, r.reserveCondition(next.TotalReserves), createCoin(r.innerPuzzleHash(next)))
	return next, conds, nil
}

// RemoveEntry implements §4.5's "remove-entry" action: pays the entry's
// owed amount first, then removes its slot and reduces active_shares.
func (r *Registry) RemoveEntry(sol RemoveEntrySolution) ([]wire.Condition, error) {
	_, _, next, err := r.resolveRemoveEntry(r.State, sol)
	if err != nil {
		return nil, err
	}
	successorPH := r.innerPuzzleHash(next)
	layer := action.NewLayer[State, RemoveEntrySolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, RemoveEntrySolution]{removeEntryAction{r: r}}, []RemoveEntrySolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// InitiatePayoutSolution names the entry slot a participant wants to claim
// its currently-owed balance from.
type InitiatePayoutSolution struct {
	Key [32]byte
}

func (r *Registry) resolveInitiatePayout(state State, sol InitiatePayoutSolution) (EntrySlotValue, uint64, State, error) {
	entry, exists := r.EntrySlots.Get(sol.Key)
	if !exists {
		return EntrySlotValue{}, 0, state, ErrEntryNotFound
	}
	owed := owedFor(state, entry.Value)
	if owed < state.PayoutThreshold {
		return EntrySlotValue{}, 0, state, ErrBelowPayoutThreshold
	}
	if owed > state.TotalReserves {
		return EntrySlotValue{}, 0, state, ErrInsufficientReserve
	}
	next := state
	next.TotalReserves -= owed
	return entry.Value, owed, next, nil
}

type initiatePayoutAction struct{ r *Registry }

func (a initiatePayoutAction) PuzzleHash() chainhash.Hash {
	return puzzles.RewardDistInitiatePayoutModHash
}

func (a initiatePayoutAction) Apply(state State, sol InitiatePayoutSolution) (State, []wire.Condition, error) {
	r := a.r
	entryValue, owed, next, err := r.resolveInitiatePayout(state, sol)
	if err != nil {
		return state, nil, err
	}

	updated := entryValue
	updated.InitialCumulativePayout = next.CumulativePayout
	if err := r.EntrySlots.Remove(sol.Key); err != nil {
		return state, nil, err
	}
	if err := r.EntrySlots.Put(sol.Key, [32]byte{}, [32]byte{}, &slot.Slot[EntrySlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: updated.Hash(), Value: updated,
	}); err != nil {
		return state, nil, err
	}

	log.Infof("rewarddist: initiate-payout owed=%d payout_ph=%s", owed, updated.PayoutPuzzleHash)
	return next, []wire.Condition{
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, updated.Hash()),
		{Opcode: wire.OpCreateCoin, Args: [][]byte{updated.PayoutPuzzleHash[:], uint64Bytes(owed)}},
		r.reserveCondition(next.TotalReserves),
		createCoin(r.innerPuzzleHash(next)),
	}, nil
}

// InitiatePayout implements §4.5's "initiate-payout" action: requires the
// entry's owed amount to have reached state.PayoutThreshold, then advances
// the entry's initial_cumulative_payout snapshot and emits a CAT payout
// coin for the owed amount.
func (r *Registry) InitiatePayout(sol InitiatePayoutSolution) ([]wire.Condition, error) {
	_, _, next, err := r.resolveInitiatePayout(r.State, sol)
	if err != nil {
		return nil, err
	}
	successorPH := r.innerPuzzleHash(next)
	layer := action.NewLayer[State, InitiatePayoutSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, InitiatePayoutSolution]{initiatePayoutAction{r: r}}, []InitiatePayoutSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}
