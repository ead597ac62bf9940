// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package xchandles implements the XCHandles registry: a doubly-linked
// ordered set keyed by hashed handle, each entry carrying an expiration, an
// owner launcher ID and a resolved launcher ID. Expired entries are removed
// by the expire action.
package xchandles

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btclog"
	"github.com/chia-network/registry-core/action"
	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/clvm"
	"github.com/chia-network/registry-core/puzzles"
	"github.com/chia-network/registry-core/registry/xchandles/pricing"
	"github.com/chia-network/registry-core/slot"
	"github.com/chia-network/registry-core/wire"
)

var log = btclog.Disabled

// UseLogger sets the package-wide logger used by xchandles.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// State is the XCHandles registry singleton's typed state record (§3).
type State struct {
	CatMakerPuzzleHash             chainhash.Hash
	PricingPuzzleHash              chainhash.Hash
	ExpiredHandlePricingPuzzleHash chainhash.Hash
}

// hashState folds State's fields into the tree hash curried into the
// registry's action-layer inner puzzle.
func hashState(s State) chainhash.Hash {
	return clvm.HashPair(
		clvm.HashAtom(s.CatMakerPuzzleHash[:]),
		clvm.HashPair(clvm.HashAtom(s.PricingPuzzleHash[:]), clvm.HashAtom(s.ExpiredHandlePricingPuzzleHash[:])),
	)
}

// createCoin returns the CREATE_COIN condition that recreates this
// registry's singleton at the given (curried) inner puzzle hash.
func createCoin(puzzleHash chainhash.Hash) wire.Condition {
	return wire.Condition{Opcode: wire.OpCreateCoin, Args: [][]byte{puzzleHash[:], {1}}}
}

// SlotValue is the doubly-linked ordered-set entry XCHandles slots carry,
// ordered by HandleHash interpreted as a signed 256-bit integer.
type SlotValue struct {
	HandleHash         [32]byte
	LeftHandleHash     [32]byte
	RightHandleHash    [32]byte
	Expiration         uint64
	OwnerLauncherID    chainhash.Hash
	ResolvedLauncherID chainhash.Hash
}

// Hash returns the on-chain value_hash committed by a slot carrying v.
func (v SlotValue) Hash() chainhash.Hash {
	return clvm.HashPair(
		clvm.HashAtom(v.HandleHash[:]),
		clvm.HashPair(
			clvm.HashPair(clvm.HashAtom(v.LeftHandleHash[:]), clvm.HashAtom(v.RightHandleHash[:])),
			clvm.HashPair(
				clvm.HashAtom(expirationAtom(v.Expiration)),
				clvm.HashPair(clvm.HashAtom(v.OwnerLauncherID[:]), clvm.HashAtom(v.ResolvedLauncherID[:])),
			),
		),
	)
}

func expirationAtom(expiration uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(expiration >> (8 * (7 - i)))
	}
	return b[:]
}

var (
	// ErrAlreadyRegistered is returned when Register is asked to add a
	// handle hash that already has a live slot.
	ErrAlreadyRegistered = errors.New("xchandles: handle already registered")

	// ErrNotRegistered is returned when an operation names a handle hash
	// with no live slot.
	ErrNotRegistered = errors.New("xchandles: handle not registered")

	// ErrInsufficientPayment is returned when a register/renew solution's
	// payment does not cover the pricing puzzle's computed price.
	ErrInsufficientPayment = errors.New("xchandles: payment below required price")

	// ErrNotExpired is returned when Expire is asked to reclaim a slot
	// whose expiration has not yet passed currentTime.
	ErrNotExpired = errors.New("xchandles: handle has not expired")

	// ErrNotOwner is returned when Update is asked to mutate a slot by a
	// caller that isn't its owner launcher ID.
	ErrNotOwner = errors.New("xchandles: caller is not the handle's owner")
)

// Registry is the in-memory projection of an XCHandles singleton: its
// current state plus the slot index backing the ordered handle-hash set.
type Registry struct {
	LauncherID chainhash.Hash
	State      State
	Slots      *slot.Index[SlotValue]
	Table      *action.Table
}

// NewRegistry creates an empty XCHandles registry, pre-seeded with the
// MIN/MAX sentinel slots the ordered-list invariant requires.
func NewRegistry(launcherID chainhash.Hash, state State) *Registry {
	minValue := SlotValue{HandleHash: slot.MinValueBytes, LeftHandleHash: slot.MinValueBytes, RightHandleHash: slot.MaxValueBytes}
	maxValue := SlotValue{HandleHash: slot.MaxValueBytes, LeftHandleHash: slot.MinValueBytes, RightHandleHash: slot.MaxValueBytes}
	return &Registry{
		LauncherID: launcherID,
		State:      state,
		Slots:      slot.NewOrderedIndex[SlotValue](minValue, maxValue),
		Table: action.NewTable([]chainhash.Hash{
			puzzles.XchandlesRegisterModHash,
			puzzles.XchandlesRenewModHash,
			puzzles.XchandlesExpireModHash,
			puzzles.XchandlesUpdateModHash,
			puzzles.XchandlesOracleModHash,
			puzzles.XchandlesUpdateStateModHash,
		}),
	}
}

// innerPuzzleHash returns the curried action-layer inner puzzle hash for a
// given state: the value a spend must recreate this singleton at, and the
// value slot.Spend asserts as the spender's identity.
func (r *Registry) innerPuzzleHash(s State) chainhash.Hash {
	return clvm.Curry(puzzles.ActionLayerModHash, clvm.HashAtom(r.LauncherID[:]), clvm.HashAtom(r.Table.Root()[:]), hashState(s))
}

// handleHash is the committed identity of a human-readable handle: the
// registry only ever sees the hash, never the plaintext, matching the
// original's pre-committed-secret register flow (§4.4).
func handleHash(handle string) [32]byte {
	h := clvm.HashAtom([]byte(handle))
	return [32]byte(h)
}

// RegisterSolution is the per-action solution for registering a new handle
// between two existing neighbors. LeftProof and RightProof let the
// splice consume the neighbors' current slot coins (§4.4).
type RegisterSolution struct {
	Handle             string
	LeftSlot           SlotValue
	RightSlot          SlotValue
	Years              uint64
	Payment            uint64
	OwnerLauncherID    chainhash.Hash
	ResolvedLauncherID chainhash.Hash
	Pricing            pricing.Puzzle
	CurrentTime        uint64
	LeftProof          slot.Proof
	RightProof         slot.Proof
}

type registerAction struct{ r *Registry }

func (a registerAction) PuzzleHash() chainhash.Hash { return puzzles.XchandlesRegisterModHash }

func (a registerAction) Apply(state State, sol RegisterSolution) (State, []wire.Condition, error) {
	r := a.r
	hh := handleHash(sol.Handle)
	if _, exists := r.Slots.Get(hh); exists {
		return state, nil, ErrAlreadyRegistered
	}
	price, err := sol.Pricing.Price(sol.Handle, sol.Years)
	if err != nil {
		return state, nil, fmt.Errorf("xchandles: pricing handle %q: %w", sol.Handle, err)
	}
	if sol.Payment < price {
		return state, nil, ErrInsufficientPayment
	}
	if !slot.LessSigned256(sol.LeftSlot.HandleHash, hh) || !slot.LessSigned256(hh, sol.RightSlot.HandleHash) {
		return state, nil, fmt.Errorf("xchandles: handle %q not between named neighbors", sol.Handle)
	}

	spenderPH := r.innerPuzzleHash(state)
	leftConds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: sol.LeftSlot.Hash(), Value: sol.LeftSlot, Proof: &sol.LeftProof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("xchandles: spend left neighbor: %w", err)
	}
	rightConds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: sol.RightSlot.Hash(), Value: sol.RightSlot, Proof: &sol.RightProof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("xchandles: spend right neighbor: %w", err)
	}

	newValue := SlotValue{
		HandleHash:         hh,
		LeftHandleHash:     sol.LeftSlot.HandleHash,
		RightHandleHash:    sol.RightSlot.HandleHash,
		Expiration:         sol.CurrentTime + sol.Years*secondsPerYear,
		OwnerLauncherID:    sol.OwnerLauncherID,
		ResolvedLauncherID: sol.ResolvedLauncherID,
	}
	newSlot := &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID,
		Nonce:      slot.NonceEntry,
		ValueHash:  newValue.Hash(),
		Value:      newValue,
	}
	if err := r.Slots.Put(hh, sol.LeftSlot.HandleHash, sol.RightSlot.HandleHash, newSlot); err != nil {
		return state, nil, err
	}

	updatedLeft := sol.LeftSlot
	updatedLeft.RightHandleHash = hh
	if err := r.Slots.ReplaceValue(sol.LeftSlot.HandleHash, &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: updatedLeft.Hash(), Value: updatedLeft,
	}); err != nil {
		return state, nil, err
	}
	updatedRight := sol.RightSlot
	updatedRight.LeftHandleHash = hh
	if err := r.Slots.ReplaceValue(sol.RightSlot.HandleHash, &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: updatedRight.Hash(), Value: updatedRight,
	}); err != nil {
		return state, nil, err
	}

	log.Infof("xchandles: registered handle=%q expiration=%d", sol.Handle, newValue.Expiration)
	conds := append(leftConds, rightConds...)
	conds = append(conds,
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, newValue.Hash()),
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, updatedLeft.Hash()),
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, updatedRight.Hash()),
		createCoin(r.innerPuzzleHash(state)),
	)
	return state, conds, nil
}

// Register splices a new handle into the ordered list between left and
// right, charging the pricing puzzle's computed price, per §4.4's
// "register" action: consuming the two neighbor slots and recreating
// three — the new entry plus both neighbors with corrected pointers.
func (r *Registry) Register(sol RegisterSolution) ([]wire.Condition, error) {
	successorPH := r.innerPuzzleHash(r.State)
	layer := action.NewLayer[State, RegisterSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, RegisterSolution]{registerAction{r: r}}, []RegisterSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// secondsPerYear matches the original's use of a 365-day year for
// expiration math.
const secondsPerYear = 365 * 24 * 60 * 60

// RenewSolution extends an existing handle's expiration by an additional
// term, priced by the caller-supplied Pricing puzzle. renewAction does not
// choose between the ordinary and expired-handle pricing puzzles by the
// handle's expiration. Proof lets the renewal consume the slot's current
// coin.
type RenewSolution struct {
	Handle      string
	Years       uint64
	Payment     uint64
	Pricing     pricing.Puzzle
	CurrentTime uint64
	Proof       slot.Proof
}

type renewAction struct{ r *Registry }

func (a renewAction) PuzzleHash() chainhash.Hash { return puzzles.XchandlesRenewModHash }

func (a renewAction) Apply(state State, sol RenewSolution) (State, []wire.Condition, error) {
	r := a.r
	hh := handleHash(sol.Handle)
	existing, exists := r.Slots.Get(hh)
	if !exists {
		return state, nil, ErrNotRegistered
	}
	price, err := sol.Pricing.Price(sol.Handle, sol.Years)
	if err != nil {
		return state, nil, fmt.Errorf("xchandles: pricing handle %q: %w", sol.Handle, err)
	}
	if sol.Payment < price {
		return state, nil, ErrInsufficientPayment
	}

	spenderPH := r.innerPuzzleHash(state)
	conds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: existing.ValueHash, Value: existing.Value, Proof: &sol.Proof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("xchandles: spend entry: %w", err)
	}

	updated := existing.Value
	updated.Expiration += sol.Years * secondsPerYear
	newSlot := &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID,
		Nonce:      slot.NonceEntry,
		ValueHash:  updated.Hash(),
		Value:      updated,
	}
	if err := r.Slots.Remove(hh); err != nil {
		return state, nil, err
	}
	if err := r.Slots.Put(hh, updated.LeftHandleHash, updated.RightHandleHash, newSlot); err != nil {
		return state, nil, err
	}

	log.Infof("xchandles: renewed handle=%q new_expiration=%d", sol.Handle, updated.Expiration)
	conds = append(conds, slot.CreateConditions(r.LauncherID, slot.NonceEntry, updated.Hash()), createCoin(r.innerPuzzleHash(state)))
	return state, conds, nil
}

// Renew extends a handle's expiration by Years, charging the computed
// price, per §4.4's "renew" action.
func (r *Registry) Renew(sol RenewSolution) ([]wire.Condition, error) {
	successorPH := r.innerPuzzleHash(r.State)
	layer := action.NewLayer[State, RenewSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, RenewSolution]{renewAction{r: r}}, []RenewSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// ExpireSolution identifies a handle to reclaim because its expiration has
// already passed. SelfProof, LeftProof, and RightProof let the
// splice-back consume all three affected slots.
type ExpireSolution struct {
	Handle      string
	CurrentTime uint64
	SelfProof   slot.Proof
	LeftProof   slot.Proof
	RightProof  slot.Proof
}

type expireAction struct{ r *Registry }

func (a expireAction) PuzzleHash() chainhash.Hash { return puzzles.XchandlesExpireModHash }

func (a expireAction) Apply(state State, sol ExpireSolution) (State, []wire.Condition, error) {
	r := a.r
	hh := handleHash(sol.Handle)
	existing, exists := r.Slots.Get(hh)
	if !exists {
		return state, nil, ErrNotRegistered
	}
	if sol.CurrentTime <= existing.Value.Expiration {
		return state, nil, ErrNotExpired
	}
	leftKey, rightKey, err := r.Slots.Neighbors(hh)
	if err != nil {
		return state, nil, err
	}
	leftSlot, ok := r.Slots.Get(leftKey)
	if !ok {
		return state, nil, fmt.Errorf("xchandles: left neighbor %x missing", leftKey)
	}
	rightSlot, ok := r.Slots.Get(rightKey)
	if !ok {
		return state, nil, fmt.Errorf("xchandles: right neighbor %x missing", rightKey)
	}

	spenderPH := r.innerPuzzleHash(state)
	selfConds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: existing.ValueHash, Value: existing.Value, Proof: &sol.SelfProof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("xchandles: spend entry: %w", err)
	}
	leftConds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: leftSlot.ValueHash, Value: leftSlot.Value, Proof: &sol.LeftProof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("xchandles: spend left neighbor: %w", err)
	}
	rightConds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: rightSlot.ValueHash, Value: rightSlot.Value, Proof: &sol.RightProof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("xchandles: spend right neighbor: %w", err)
	}

	log.Infof("xchandles: expiring handle=%q expiration=%d current_time=%d", sol.Handle, existing.Value.Expiration, sol.CurrentTime)
	if err := r.Slots.Remove(hh); err != nil {
		return state, nil, err
	}

	updatedLeft := leftSlot.Value
	updatedLeft.RightHandleHash = rightSlot.Value.HandleHash
	if err := r.Slots.ReplaceValue(leftKey, &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: updatedLeft.Hash(), Value: updatedLeft,
	}); err != nil {
		return state, nil, err
	}
	updatedRight := rightSlot.Value
	updatedRight.LeftHandleHash = leftSlot.Value.HandleHash
	if err := r.Slots.ReplaceValue(rightKey, &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: updatedRight.Hash(), Value: updatedRight,
	}); err != nil {
		return state, nil, err
	}

	conds := append(selfConds, append(leftConds, rightConds...)...)
	conds = append(conds,
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, updatedLeft.Hash()),
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, updatedRight.Hash()),
		createCoin(r.innerPuzzleHash(state)),
	)
	return state, conds, nil
}

// Expire removes an expired handle's slot, stitching its neighbors back
// together, per §4.4's "expire" action and edge case #2. It requires
// current_time > slot.expiration, matching CnsExpireActionSolution's
// shape from the original implementation.
func (r *Registry) Expire(sol ExpireSolution) ([]wire.Condition, error) {
	successorPH := r.innerPuzzleHash(r.State)
	layer := action.NewLayer[State, ExpireSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, ExpireSolution]{expireAction{r: r}}, []ExpireSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// UpdateSolution changes an existing handle's owner and/or resolved
// launcher ID. Only the current owner may do this. Proof lets the update
// consume the slot's current coin.
type UpdateSolution struct {
	Handle                string
	Caller                chainhash.Hash
	NewOwnerLauncherID    chainhash.Hash
	NewResolvedLauncherID chainhash.Hash
	Proof                 slot.Proof
}

type updateAction struct{ r *Registry }

func (a updateAction) PuzzleHash() chainhash.Hash { return puzzles.XchandlesUpdateModHash }

func (a updateAction) Apply(state State, sol UpdateSolution) (State, []wire.Condition, error) {
	r := a.r
	hh := handleHash(sol.Handle)
	existing, exists := r.Slots.Get(hh)
	if !exists {
		return state, nil, ErrNotRegistered
	}
	if existing.Value.OwnerLauncherID != sol.Caller {
		return state, nil, ErrNotOwner
	}

	spenderPH := r.innerPuzzleHash(state)
	conds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: existing.ValueHash, Value: existing.Value, Proof: &sol.Proof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("xchandles: spend entry: %w", err)
	}

	updated := existing.Value
	updated.OwnerLauncherID = sol.NewOwnerLauncherID
	updated.ResolvedLauncherID = sol.NewResolvedLauncherID
	newSlot := &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID,
		Nonce:      slot.NonceEntry,
		ValueHash:  updated.Hash(),
		Value:      updated,
	}
	if err := r.Slots.Remove(hh); err != nil {
		return state, nil, err
	}
	if err := r.Slots.Put(hh, updated.LeftHandleHash, updated.RightHandleHash, newSlot); err != nil {
		return state, nil, err
	}
	conds = append(conds, slot.CreateConditions(r.LauncherID, slot.NonceEntry, updated.Hash()), createCoin(r.innerPuzzleHash(state)))
	return state, conds, nil
}

// Update installs a new owner/resolved launcher ID pair, per §4.4's
// "update" action.
func (r *Registry) Update(sol UpdateSolution) ([]wire.Condition, error) {
	successorPH := r.innerPuzzleHash(r.State)
	layer := action.NewLayer[State, UpdateSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, UpdateSolution]{updateAction{r: r}}, []UpdateSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// UpdateStateSolution carries a new registry state to install, typically
// authorized by a price-singleton (scheduler package) or the medieval
// vault.
type UpdateStateSolution struct {
	NewState State
}

type updateStateAction struct{ r *Registry }

func (a updateStateAction) PuzzleHash() chainhash.Hash { return puzzles.XchandlesUpdateStateModHash }

func (a updateStateAction) Apply(state State, sol UpdateStateSolution) (State, []wire.Condition, error) {
	successorPH := a.r.innerPuzzleHash(sol.NewState)
	return sol.NewState, []wire.Condition{createCoin(successorPH)}, nil
}

// UpdateState installs a new registry state, per §4.4's "update-state"
// action.
func (r *Registry) UpdateState(sol UpdateStateSolution) ([]wire.Condition, error) {
	successorPH := r.innerPuzzleHash(sol.NewState)
	layer := action.NewLayer[State, UpdateStateSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, UpdateStateSolution]{updateStateAction{r: r}}, []UpdateStateSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// OracleSolution re-attests a slot's current value on-chain without
// mutating it, mirroring XchandlesOracleActionSolution's data_treehash
// field from the original implementation. Proof lets the re-attestation
// consume and recreate the slot's coin.
type OracleSolution struct {
	Handle string
	Proof  slot.Proof
}

type oracleAction struct{ r *Registry }

func (a oracleAction) PuzzleHash() chainhash.Hash { return puzzles.XchandlesOracleModHash }

func (a oracleAction) Apply(state State, sol OracleSolution) (State, []wire.Condition, error) {
	r := a.r
	hh := handleHash(sol.Handle)
	s, exists := r.Slots.Get(hh)
	if !exists {
		return state, nil, ErrNotRegistered
	}
	spenderPH := r.innerPuzzleHash(state)
	conds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: s.ValueHash, Value: s.Value, Proof: &sol.Proof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("xchandles: spend entry: %w", err)
	}
	conds = append(conds, slot.CreateConditions(r.LauncherID, slot.NonceEntry, s.ValueHash), createCoin(r.innerPuzzleHash(state)))
	return state, conds, nil
}

// Oracle re-confirms a handle's committed value is still current.
func (r *Registry) Oracle(sol OracleSolution) ([]wire.Condition, error) {
	successorPH := r.innerPuzzleHash(r.State)
	layer := action.NewLayer[State, OracleSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, OracleSolution]{oracleAction{r: r}}, []OracleSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}
