// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/rpc"
	"github.com/chia-network/registry-core/store"
)

// fakeNode is an in-memory rpc.NodeClient backed by a chain of coins
// scripted ahead of time, letting tests drive SyncLauncher deterministically
// without a real node.
type fakeNode struct {
	records map[chainhash.Hash]rpc.CoinRecord
	sols    map[chainhash.Hash]rpc.PuzzleAndSolution
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		records: make(map[chainhash.Hash]rpc.CoinRecord),
		sols:    make(map[chainhash.Hash]rpc.PuzzleAndSolution),
	}
}

func (f *fakeNode) GetBlockchainState(ctx context.Context) (rpc.BlockchainState, error) {
	return rpc.BlockchainState{Synced: true}, nil
}

func (f *fakeNode) GetCoinRecordByName(ctx context.Context, coinID chainhash.Hash) (rpc.CoinRecord, error) {
	return f.records[coinID], nil
}

func (f *fakeNode) GetCoinRecordsByHint(ctx context.Context, hint chainhash.Hash, includeSpent bool) ([]rpc.CoinRecord, error) {
	return nil, nil
}

func (f *fakeNode) GetCoinRecordsByPuzzleHash(ctx context.Context, puzzleHash chainhash.Hash, includeSpent bool) ([]rpc.CoinRecord, error) {
	return nil, nil
}

func (f *fakeNode) GetPuzzleAndSolution(ctx context.Context, coinID chainhash.Hash, spentHeight uint32) (rpc.PuzzleAndSolution, error) {
	return f.sols[coinID], nil
}

func (f *fakeNode) PushTX(ctx context.Context, spendBundle []byte) error { return nil }

func (f *fakeNode) Subscribe(ctx context.Context) (<-chan rpc.PeakNotification, error) {
	ch := make(chan rpc.PeakNotification)
	close(ch)
	return ch, nil
}

// scriptedApplier replays a fixed sequence of mutations, one per call,
// regardless of which coin is passed in — sufficient for exercising
// Driver's loop without decoding real puzzle reveals.
type scriptedApplier struct {
	mutations []Mutation
	calls     int
}

func (a *scriptedApplier) ApplySpend(ctx context.Context, spent rpc.CoinRecord, ps rpc.PuzzleAndSolution) (Mutation, error) {
	m := a.mutations[a.calls]
	a.calls++
	return m, nil
}

func openTestStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSyncLauncherWalksLineageToUnspentTip(t *testing.T) {
	node := newFakeNode()
	launcherID := [32]byte{1}
	genesis := chainhash.Hash{1}
	middle := chainhash.Hash{2}
	tip := chainhash.Hash{3}

	node.records[genesis] = rpc.CoinRecord{ConfirmedHeight: 1, SpentHeight: 2}
	node.records[middle] = rpc.CoinRecord{ConfirmedHeight: 2, SpentHeight: 3}
	node.records[tip] = rpc.CoinRecord{ConfirmedHeight: 3}

	db := openTestStore(t)
	driver := NewDriver(node, db)

	applier := &scriptedApplier{mutations: []Mutation{
		{SuccessorCoinID: &middle, Height: 1},
		{SuccessorCoinID: &tip, Height: 2},
	}}

	report, err := driver.SyncLauncher(context.Background(), launcherID, genesis, applier)
	require.NoError(t, err)
	assert.True(t, report.Synced)
	assert.Equal(t, tip, report.TipCoinID)
	assert.Equal(t, 2, report.SpendsApplied)

	stored, err := db.Get(store.SingletonCoinKey(launcherID))
	require.NoError(t, err)
	assert.Equal(t, tip[:], stored)
}

func TestSyncLauncherResumesFromStoredTip(t *testing.T) {
	node := newFakeNode()
	launcherID := [32]byte{1}
	genesis := chainhash.Hash{1}
	tip := chainhash.Hash{2}

	node.records[genesis] = rpc.CoinRecord{ConfirmedHeight: 1, SpentHeight: 2}
	node.records[tip] = rpc.CoinRecord{ConfirmedHeight: 2}

	db := openTestStore(t)
	require.NoError(t, db.Put(tipKey(launcherID), genesis[:]))

	driver := NewDriver(node, db)
	applier := &scriptedApplier{mutations: []Mutation{
		{SuccessorCoinID: &tip, Height: 1},
	}}

	report, err := driver.SyncLauncher(context.Background(), launcherID, chainhash.Hash{}, applier)
	require.NoError(t, err)
	assert.Equal(t, tip, report.TipCoinID)
	assert.Equal(t, 1, applier.calls)
}

func TestSyncLauncherReturnsErrNoSuccessorOnTerminalSpend(t *testing.T) {
	node := newFakeNode()
	launcherID := [32]byte{1}
	genesis := chainhash.Hash{1}
	node.records[genesis] = rpc.CoinRecord{ConfirmedHeight: 1, SpentHeight: 2}

	db := openTestStore(t)
	driver := NewDriver(node, db)
	applier := &scriptedApplier{mutations: []Mutation{{SuccessorCoinID: nil}}}

	_, err := driver.SyncLauncher(context.Background(), launcherID, genesis, applier)
	assert.ErrorIs(t, err, ErrNoSuccessor)

	_, err = db.Get(tipKey(launcherID))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFoldMutationIsIdempotent(t *testing.T) {
	node := newFakeNode()
	launcherID := [32]byte{1}
	spent := chainhash.Hash{9}

	db := openTestStore(t)
	driver := NewDriver(node, db)

	m := Mutation{
		Puts: []SlotPut{{LauncherID: launcherID, Nonce: 2, ValueHash: [32]byte{5}, Encoded: []byte("v1")}},
	}
	require.NoError(t, driver.foldMutation(spent, m))

	// Re-applying the same spend's mutation (as a resumed sync would) must
	// not fail or double-write.
	m2 := Mutation{
		Puts: []SlotPut{{LauncherID: launcherID, Nonce: 2, ValueHash: [32]byte{5}, Encoded: []byte("v2-should-not-apply")}},
	}
	require.NoError(t, driver.foldMutation(spent, m2))

	got, err := db.GetSlot(launcherID, 2, [32]byte{5})
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)
}

func TestSweepEvictsEntriesOlderThanWindow(t *testing.T) {
	node := newFakeNode()
	db := openTestStore(t)
	driver := NewDriver(node, db)

	launcherID := [32]byte{1}
	oldHash := [32]byte{1}
	freshHash := [32]byte{2}

	require.NoError(t, driver.foldMutation(chainhash.Hash{1}, Mutation{
		Puts:   []SlotPut{{LauncherID: launcherID, Nonce: 0, ValueHash: oldHash, Encoded: []byte("old")}},
		Height: 10,
	}))
	require.NoError(t, driver.foldMutation(chainhash.Hash{2}, Mutation{
		Puts:   []SlotPut{{LauncherID: launcherID, Nonce: 0, ValueHash: freshHash, Encoded: []byte("fresh")}},
		Height: 900,
	}))

	evicted, err := driver.Sweep(1000)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	_, err = db.GetSlot(launcherID, 0, oldHash)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := db.GetSlot(launcherID, 0, freshHash)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got)
}

func TestSweepNoopWhenPeakBelowWindow(t *testing.T) {
	node := newFakeNode()
	db := openTestStore(t)
	driver := NewDriver(node, db)

	evicted, err := driver.Sweep(50)
	require.NoError(t, err)
	assert.Equal(t, 0, evicted)
}
