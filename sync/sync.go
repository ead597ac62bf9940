// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sync drives the local cache forward by walking a singleton's
// lineage of confirmed spends, à la blockchain.ShellChainState's extended
// state management by processing spends one at a time and folding their
// effects into persistent state. Unlike that teacher type, which applies
// inline to a UTXO view during block connection, Driver pulls confirmed
// coin records from a rpc.NodeClient and folds them into a store.DB —
// there is no local mempool or block connection here, only a remote
// node's confirmed chain.
package sync

import (
	"context"
	"errors"
	"fmt"

	btclog "github.com/btcsuite/btclog"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/rpc"
	"github.com/chia-network/registry-core/store"
)

var log = btclog.Disabled

// UseLogger sets the package-wide logger, following the same convention as
// the catalog, xchandles, rewarddist and slot packages.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// ErrNoSuccessor is returned when a spend's Applier reports no successor
// coin, meaning the singleton's lineage terminated (melted).
var ErrNoSuccessor = errors.New("sync: singleton lineage terminated with no successor coin")

// sweepWindow is how many blocks behind the current peak a slot or
// singleton entry may lag before the periodic cache sweep removes it —
// §5's "removes slot and singleton entries older than 128 blocks behind
// the current peak".
const sweepWindow = 128

// SlotPut is one slot-index write a spend's effects imply.
type SlotPut struct {
	LauncherID [32]byte
	Nonce      uint8
	ValueHash  [32]byte
	Encoded    []byte
}

// SlotDelete is one slot-index removal a spend's effects imply (the slot
// was consumed by the action and has no successor of its own).
type SlotDelete struct {
	LauncherID [32]byte
	Nonce      uint8
	ValueHash  [32]byte
}

// Mutation is everything a single confirmed spend implies for the local
// cache: the singleton's successor coin (nil if the lineage terminated),
// the slot-index puts/deletes the spend's action performed, and the
// confirmation height those puts occurred at (used by Sweep).
type Mutation struct {
	SuccessorCoinID *chainhash.Hash
	Puts            []SlotPut
	Deletes         []SlotDelete
	Height          uint32
}

// Applier decodes a spent coin's revealed puzzle and solution into the
// Mutation it implies. Driver itself has no notion of what a puzzle reveal
// means; the caller supplies the Applier, and no package in this module
// implements one.
type Applier interface {
	ApplySpend(ctx context.Context, spent rpc.CoinRecord, ps rpc.PuzzleAndSolution) (Mutation, error)
}

// Driver walks a singleton's confirmed lineage, one spend at a time,
// folding each spend's Mutation into the local store. Because the
// singleton invariant guarantees at most one live successor at a time,
// walking lineage forward from a known coin is independent of how the
// node's mempool happened to order the confirming transactions — §5's
// "ancestor/descendant reordering" tolerance falls out of only ever
// asking "is this specific coin spent, and if so by what", never asking
// the mempool for an ordering of unconfirmed bundles.
type Driver struct {
	node  rpc.NodeClient
	store *store.DB
}

// NewDriver constructs a sync driver over a node client and a local
// store.
func NewDriver(node rpc.NodeClient, db *store.DB) *Driver {
	return &Driver{node: node, store: db}
}

// Report summarizes one SyncLauncher call.
type Report struct {
	SpendsApplied int
	TipCoinID     chainhash.Hash
	Synced        bool // true once the tip coin is confirmed but unspent
}

// tipKey namespaces the "current known tip coin ID for this launcher"
// record, distinct from the coin's own singleton-namespace record.
func tipKey(launcherID [32]byte) []byte {
	key := make([]byte, 0, 4+32)
	key = append(key, "tip:"...)
	key = append(key, launcherID[:]...)
	return key
}

// processedKey namespaces the idempotency marker for a spend, keyed by
// the spent coin's identifier — §5's "writes are idempotent and keyed by
// coin identifier; re-applying an already-seen spend has no effect".
func processedKey(coinID chainhash.Hash) []byte {
	key := make([]byte, 0, 10+32)
	key = append(key, "processed:"...)
	key = append(key, coinID[:]...)
	return key
}

// SyncLauncher walks forward from the last known tip for launcherID (or
// from genesisCoinID if this is the first sync), applying apply to every
// confirmed spend in the singleton's lineage, until it reaches a coin
// that is confirmed but not yet spent.
func (d *Driver) SyncLauncher(ctx context.Context, launcherID [32]byte, genesisCoinID chainhash.Hash, apply Applier) (Report, error) {
	current := genesisCoinID
	if tip, err := d.store.Get(tipKey(launcherID)); err == nil {
		copy(current[:], tip)
	} else if !errors.Is(err, store.ErrNotFound) {
		return Report{}, fmt.Errorf("sync: reading tip for launcher %x: %w", launcherID, err)
	}

	var applied int
	for {
		record, err := d.node.GetCoinRecordByName(ctx, current)
		if err != nil {
			return Report{}, fmt.Errorf("sync: fetching coin record %s: %w", current, err)
		}
		if !record.Spent() {
			if err := d.store.Put(tipKey(launcherID), current[:]); err != nil {
				return Report{}, fmt.Errorf("sync: persisting tip: %w", err)
			}
			if err := d.store.Put(store.SingletonCoinKey(launcherID), current[:]); err != nil {
				return Report{}, fmt.Errorf("sync: persisting singleton record: %w", err)
			}
			return Report{SpendsApplied: applied, TipCoinID: current, Synced: true}, nil
		}

		ps, err := d.node.GetPuzzleAndSolution(ctx, current, record.SpentHeight)
		if err != nil {
			return Report{}, fmt.Errorf("sync: fetching puzzle/solution for %s: %w", current, err)
		}

		mutation, err := apply.ApplySpend(ctx, record, ps)
		if err != nil {
			return Report{}, fmt.Errorf("sync: applying spend %s: %w", current, err)
		}

		if err := d.foldMutation(current, mutation); err != nil {
			return Report{}, err
		}
		applied++

		if mutation.SuccessorCoinID == nil {
			if err := d.store.Delete(tipKey(launcherID)); err != nil {
				return Report{}, fmt.Errorf("sync: clearing tip after terminal spend: %w", err)
			}
			return Report{SpendsApplied: applied, TipCoinID: current, Synced: false}, ErrNoSuccessor
		}
		current = *mutation.SuccessorCoinID
	}
}

// foldMutation applies one spend's slot-index effects and marks the
// spend processed, all idempotently: repeating the same mutation for a
// coin already marked processed is a no-op.
func (d *Driver) foldMutation(spentCoinID chainhash.Hash, m Mutation) error {
	if _, err := d.store.Get(processedKey(spentCoinID)); err == nil {
		return nil
	}

	for _, p := range m.Puts {
		if err := d.store.PutSlot(p.LauncherID, p.Nonce, p.ValueHash, p.Encoded); err != nil {
			return fmt.Errorf("sync: applying slot put: %w", err)
		}
		if err := d.store.Put(heightIndexKey(m.Height, p.LauncherID, p.Nonce, p.ValueHash), []byte{1}); err != nil {
			return fmt.Errorf("sync: recording sweep height index: %w", err)
		}
	}
	for _, del := range m.Deletes {
		if err := d.store.DeleteSlot(del.LauncherID, del.Nonce, del.ValueHash); err != nil {
			return fmt.Errorf("sync: applying slot delete: %w", err)
		}
	}
	return d.store.Put(processedKey(spentCoinID), []byte{1})
}

// heightIndexKey namespaces "which slot entries were written at height
// H", letting Sweep find entries old enough to evict without scanning
// every slot family.
func heightIndexKey(height uint32, launcherID [32]byte, nonce uint8, valueHash [32]byte) []byte {
	key := make([]byte, 0, 7+4+32+1+32)
	key = append(key, "height:"...)
	var h [4]byte
	h[0] = byte(height >> 24)
	h[1] = byte(height >> 16)
	h[2] = byte(height >> 8)
	h[3] = byte(height)
	key = append(key, h[:]...)
	key = append(key, launcherID[:]...)
	key = append(key, nonce)
	key = append(key, valueHash[:]...)
	return key
}

// Sweep removes slot entries more than sweepWindow blocks behind
// peakHeight, per §5's periodic cache sweep. It walks the height index
// rather than every slot family, so the cost is proportional to how much
// history has accumulated, not to the size of the live slot set.
func (d *Driver) Sweep(peakHeight uint32) (int, error) {
	if peakHeight < sweepWindow {
		return 0, nil
	}
	cutoff := peakHeight - sweepWindow

	it := d.store.NewIterator([]byte("height:"))
	defer it.Release()

	var evicted int
	var toDelete [][]byte
	for it.Next() {
		key := it.Key()
		if len(key) != 7+4+32+1+32 {
			continue
		}
		height := uint32(key[7])<<24 | uint32(key[8])<<16 | uint32(key[9])<<8 | uint32(key[10])
		if height > cutoff {
			continue
		}
		var launcherID, valueHash [32]byte
		copy(launcherID[:], key[11:43])
		nonce := key[43]
		copy(valueHash[:], key[44:76])

		if err := d.store.DeleteSlot(launcherID, nonce, valueHash); err != nil {
			return evicted, fmt.Errorf("sync: sweeping slot %x: %w", valueHash, err)
		}
		toDelete = append(toDelete, append([]byte{}, key...))
		evicted++
	}
	if err := it.Error(); err != nil {
		return evicted, err
	}
	for _, key := range toDelete {
		if err := d.store.Delete(key); err != nil {
			return evicted, fmt.Errorf("sync: clearing height index entry: %w", err)
		}
	}
	return evicted, nil
}
