// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package catalog implements the CATalog registry: an append-only
// doubly-linked ordered set of registered asset identifiers, each backed
// by a slot coin and accompanied by an off-chain-addressed NFT carrying
// descriptive metadata.
package catalog

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

// UseLogger sets the package-wide logger used by catalog.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// State is the CATalog registry singleton's typed state record (§3).
type State struct {
	CatMakerPuzzleHash chainhash.Hash
	RegistrationPrice  uint64
}

// hashState folds State's fields into the tree hash curried into the
// registry's action-layer inner puzzle.
func hashState(s State) chainhash.Hash {
	return clvm.HashPair(clvm.HashAtom(s.CatMakerPuzzleHash[:]), clvm.HashAtom(uint64Bytes(s.RegistrationPrice)))
}

func uint64Bytes(v uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * (7 - i)))
	}
	return b[:]
}

// createCoin returns the CREATE_COIN condition that recreates this
// registry's singleton at the given (curried) inner puzzle hash.
func createCoin(puzzleHash chainhash.Hash) wire.Condition {
	return wire.Condition{Opcode: wire.OpCreateCoin, Args: [][]byte{puzzleHash[:], {1}}}
}

// SlotValue is the doubly-linked ordered-set entry CATalog slots carry.
// Ordering is by AssetID, interpreted as a signed 256-bit integer.
type SlotValue struct {
	AssetID      [32]byte
	LeftAssetID  [32]byte
	RightAssetID [32]byte
}

// Hash returns the on-chain value_hash committed by a slot carrying v.
func (v SlotValue) Hash() chainhash.Hash {
	return clvm.HashPair(
		clvm.HashAtom(v.AssetID[:]),
		clvm.HashPair(clvm.HashAtom(v.LeftAssetID[:]), clvm.HashAtom(v.RightAssetID[:])),
	)
}

var (
	// ErrAlreadyRegistered is returned when Register is asked to add an
	// asset ID that already has a live slot.
	ErrAlreadyRegistered = errors.New("catalog: asset id already registered")

	// ErrNotRegistered is returned when an operation names an asset ID
	// with no live slot.
	ErrNotRegistered = errors.New("catalog: asset id not registered")

	// ErrInsufficientPayment is returned when a register solution's
	// payment does not cover state.RegistrationPrice.
	ErrInsufficientPayment = errors.New("catalog: payment below registration price")
)

// Registry is the in-memory projection of a CATalog singleton: its current
// state plus the slot index backing the ordered asset-id set.
type Registry struct {
	LauncherID chainhash.Hash
	State      State
	Slots      *slot.Index[SlotValue]
	Table      *action.Table
}

// NewRegistry creates an empty CATalog registry, pre-seeded with the
// MIN/MAX sentinel slots the ordered-list invariant requires.
func NewRegistry(launcherID chainhash.Hash, state State) *Registry {
	minValue := SlotValue{AssetID: slot.MinValueBytes, LeftAssetID: slot.MinValueBytes, RightAssetID: slot.MaxValueBytes}
	maxValue := SlotValue{AssetID: slot.MaxValueBytes, LeftAssetID: slot.MinValueBytes, RightAssetID: slot.MaxValueBytes}
	return &Registry{
		LauncherID: launcherID,
		State:      state,
		Slots:      slot.NewOrderedIndex[SlotValue](minValue, maxValue),
		Table: action.NewTable([]chainhash.Hash{
			puzzles.CatalogRegisterModHash,
			puzzles.CatalogRefundModHash,
			puzzles.CatalogUpdateStateModHash,
			puzzles.CnsOracleModHash,
			puzzles.CatalogLaunchBatchModHash,
		}),
	}
}

// innerPuzzleHash returns the curried action-layer inner puzzle hash for a
// given state: the value a spend must recreate this singleton at, and the
// value slot.Spend asserts as the spender's identity.
func (r *Registry) innerPuzzleHash(s State) chainhash.Hash {
	return clvm.Curry(puzzles.ActionLayerModHash, clvm.HashAtom(r.LauncherID[:]), clvm.HashAtom(r.Table.Root()[:]), hashState(s))
}

// RegisterSolution is the per-action solution for registering a new asset
// ID between two existing neighbors. LeftProof and RightProof let the
// splice consume the neighbors' current slot coins (§4.4).
type RegisterSolution struct {
	AssetID    [32]byte
	LeftSlot   SlotValue
	RightSlot  SlotValue
	Payment    uint64
	CatalogNFT CatalogNFT
	LeftProof  slot.Proof
	RightProof slot.Proof
}

// CatalogNFT carries the descriptive metadata minted alongside a newly
// registered asset, per §1's "off-chain-addressed NFT" requirement.
type CatalogNFT struct {
	Code        string
	Name        string
	Description string
	ImageURLs   []string
	ImageHash   chainhash.Hash
}

// registerAction wires Register through the action-dispatched layer.
type registerAction struct{ r *Registry }

func (a registerAction) PuzzleHash() chainhash.Hash { return puzzles.CatalogRegisterModHash }

func (a registerAction) Apply(state State, sol RegisterSolution) (State, []wire.Condition, error) {
	r := a.r
	if sol.Payment < state.RegistrationPrice {
		return state, nil, ErrInsufficientPayment
	}
	if _, exists := r.Slots.Get(sol.AssetID); exists {
		return state, nil, ErrAlreadyRegistered
	}
	if !slot.LessSigned256(sol.LeftSlot.AssetID, sol.AssetID) || !slot.LessSigned256(sol.AssetID, sol.RightSlot.AssetID) {
		return state, nil, fmt.Errorf("catalog: asset id %x not between neighbors %x and %x", sol.AssetID, sol.LeftSlot.AssetID, sol.RightSlot.AssetID)
	}

	spenderPH := r.innerPuzzleHash(state)
	leftConds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: sol.LeftSlot.Hash(), Value: sol.LeftSlot, Proof: &sol.LeftProof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("catalog: spend left neighbor: %w", err)
	}
	rightConds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: sol.RightSlot.Hash(), Value: sol.RightSlot, Proof: &sol.RightProof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("catalog: spend right neighbor: %w", err)
	}

	newValue := SlotValue{AssetID: sol.AssetID, LeftAssetID: sol.LeftSlot.AssetID, RightAssetID: sol.RightSlot.AssetID}
	newSlot := &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID,
		Nonce:      slot.NonceEntry,
		ValueHash:  newValue.Hash(),
		Value:      newValue,
	}
	if err := r.Slots.Put(sol.AssetID, sol.LeftSlot.AssetID, sol.RightSlot.AssetID, newSlot); err != nil {
		return state, nil, err
	}

	updatedLeft := sol.LeftSlot
	updatedLeft.RightAssetID = sol.AssetID
	if err := r.Slots.ReplaceValue(sol.LeftSlot.AssetID, &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: updatedLeft.Hash(), Value: updatedLeft,
	}); err != nil {
		return state, nil, err
	}
	updatedRight := sol.RightSlot
	updatedRight.LeftAssetID = sol.AssetID
	if err := r.Slots.ReplaceValue(sol.RightSlot.AssetID, &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: updatedRight.Hash(), Value: updatedRight,
	}); err != nil {
		return state, nil, err
	}

	log.Infof("catalog: registered asset_id=%x code=%s", sol.AssetID, sol.CatalogNFT.Code)
	conds := append(leftConds, rightConds...)
	conds = append(conds,
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, newValue.Hash()),
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, updatedLeft.Hash()),
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, updatedRight.Hash()),
		createCoin(r.innerPuzzleHash(state)),
	)
	return state, conds, nil
}

// Register splices a new asset ID into the ordered list between left and
// right, charging state.RegistrationPrice. It implements the CATalog
// "register" action from §4.4: consuming the two neighbor slots and
// recreating three — the new entry plus both neighbors with corrected
// pointers. The solution's CatalogNFT is only logged; Register emits no
// NFT-minting condition.
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

// RefundSolution identifies a pending registration to refund because its
// payment coin was spent without completing registration. SelfProof,
// LeftProof, and RightProof let the splice-back consume all three
// affected slots.
type RefundSolution struct {
	AssetID    [32]byte
	Reason     string
	SelfProof  slot.Proof
	LeftProof  slot.Proof
	RightProof slot.Proof
}

type refundAction struct{ r *Registry }

func (a refundAction) PuzzleHash() chainhash.Hash { return puzzles.CatalogRefundModHash }

func (a refundAction) Apply(state State, sol RefundSolution) (State, []wire.Condition, error) {
	r := a.r
	self, exists := r.Slots.Get(sol.AssetID)
	if !exists {
		return state, nil, ErrNotRegistered
	}
	leftKey, rightKey, err := r.Slots.Neighbors(sol.AssetID)
	if err != nil {
		return state, nil, err
	}
	leftSlot, ok := r.Slots.Get(leftKey)
	if !ok {
		return state, nil, fmt.Errorf("catalog: left neighbor %x missing", leftKey)
	}
	rightSlot, ok := r.Slots.Get(rightKey)
	if !ok {
		return state, nil, fmt.Errorf("catalog: right neighbor %x missing", rightKey)
	}

	spenderPH := r.innerPuzzleHash(state)
	selfConds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: self.ValueHash, Value: self.Value, Proof: &sol.SelfProof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("catalog: spend entry: %w", err)
	}
	leftConds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: leftSlot.ValueHash, Value: leftSlot.Value, Proof: &sol.LeftProof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("catalog: spend left neighbor: %w", err)
	}
	rightConds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: rightSlot.ValueHash, Value: rightSlot.Value, Proof: &sol.RightProof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("catalog: spend right neighbor: %w", err)
	}

	if err := r.Slots.Remove(sol.AssetID); err != nil {
		return state, nil, err
	}

	updatedLeft := leftSlot.Value
	updatedLeft.RightAssetID = rightSlot.Value.AssetID
	if err := r.Slots.ReplaceValue(leftKey, &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: updatedLeft.Hash(), Value: updatedLeft,
	}); err != nil {
		return state, nil, err
	}
	updatedRight := rightSlot.Value
	updatedRight.LeftAssetID = leftSlot.Value.AssetID
	if err := r.Slots.ReplaceValue(rightKey, &slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: updatedRight.Hash(), Value: updatedRight,
	}); err != nil {
		return state, nil, err
	}

	log.Infof("catalog: refunding asset_id=%x reason=%q", sol.AssetID, sol.Reason)
	conds := append(selfConds, append(leftConds, rightConds...)...)
	conds = append(conds,
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, updatedLeft.Hash()),
		slot.CreateConditions(r.LauncherID, slot.NonceEntry, updatedRight.Hash()),
		createCoin(r.innerPuzzleHash(state)),
	)
	return state, conds, nil
}

// Refund reverses a not-yet-finalized registration, per §4.4's "refund"
// action: consumes the entry slot and its two neighbors, splicing the
// neighbors back together with corrected pointers.
func (r *Registry) Refund(sol RefundSolution) ([]wire.Condition, error) {
	successorPH := r.innerPuzzleHash(r.State)
	layer := action.NewLayer[State, RefundSolution](r.Table)
	finalState, conds, err := layer.Spend(r.State, []action.Action[State, RefundSolution]{refundAction{r: r}}, []RefundSolution{sol}, successorPH)
	if err != nil {
		return nil, err
	}
	r.State = finalState
	return conds, nil
}

// UpdateStateSolution carries a new State to install, typically authorized by a price-singleton (scheduler package)
// or the medieval vault.
type UpdateStateSolution struct {
	NewState State
}

type updateStateAction struct{ r *Registry }

func (a updateStateAction) PuzzleHash() chainhash.Hash { return puzzles.CatalogUpdateStateModHash }

func (a updateStateAction) Apply(state State, sol UpdateStateSolution) (State, []wire.Condition, error) {
	successorPH := a.r.innerPuzzleHash(sol.NewState)
	return sol.NewState, []wire.Condition{createCoin(successorPH)}, nil
}

// UpdateState installs a new registry state, per §4.4's "update-state"
// action (registration price changes, cat maker puzzle hash rotation).
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
// mutating it, the supplemented "oracle" action from SPEC_FULL's
// CATalog expansion. Proof lets the re-attestation consume and recreate
// the slot's coin.
type OracleSolution struct {
	AssetID [32]byte
	Proof   slot.Proof
}

type oracleAction struct{ r *Registry }

func (a oracleAction) PuzzleHash() chainhash.Hash { return puzzles.CnsOracleModHash }

func (a oracleAction) Apply(state State, sol OracleSolution) (State, []wire.Condition, error) {
	r := a.r
	s, exists := r.Slots.Get(sol.AssetID)
	if !exists {
		return state, nil, ErrNotRegistered
	}
	spenderPH := r.innerPuzzleHash(state)
	conds, err := slot.Spend(&slot.Slot[SlotValue]{
		LauncherID: r.LauncherID, Nonce: slot.NonceEntry, ValueHash: s.ValueHash, Value: s.Value, Proof: &sol.Proof,
	}, spenderPH)
	if err != nil {
		return state, nil, fmt.Errorf("catalog: spend entry: %w", err)
	}
	conds = append(conds, slot.CreateConditions(r.LauncherID, slot.NonceEntry, s.ValueHash), createCoin(r.innerPuzzleHash(state)))
	return state, conds, nil
}

// Oracle re-confirms a slot's committed value is still current, useful
// for third parties needing a fresh on-chain attestation of set
// membership. It spends and recreates the registry singleton and the slot
// without changing the state or the slot's value.
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
