// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package catalog

import (
	"fmt"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/slot"
	"github.com/chia-network/registry-core/wire"
)

// LaunchBatch is the supplemented "preroll" primitive (grounded on the
// original implementation's catalog preroller): it seeds a CATalog
// registry with several initial entries in one call, finding each entry's
// insertion point itself so the entries may be given in any order. Each
// entry is registered through its own Registry.Register spend; no
// per-asset prelauncher coin or NFT is created.
type LaunchBatch struct {
	LauncherID chainhash.Hash
	ToLaunch   []LaunchBatchEntry
}

// LaunchBatchEntry is one asset to be registered as part of a batch
// launch.
type LaunchBatchEntry struct {
	AssetID [32]byte
	NFT     CatalogNFT
}

// Spend produces the RegisterSolution sequence and CREATE_COIN conditions
// needed to register every entry in the batch against the given registry,
// threading the ordered-list splice positions entry by entry so later
// entries see the neighbors left by earlier ones in the same batch.
func (b LaunchBatch) Spend(r *Registry) ([]wire.Condition, error) {
	var allConditions []wire.Condition
	for _, entry := range b.ToLaunch {
		left, right, err := findInsertionNeighbors(r, entry.AssetID)
		if err != nil {
			return nil, fmt.Errorf("catalog: launch batch entry %x: %w", entry.AssetID, err)
		}
		leftSlot, _ := r.Slots.Get(left)
		rightSlot, _ := r.Slots.Get(right)
		conds, err := r.Register(RegisterSolution{
			AssetID:    entry.AssetID,
			LeftSlot:   leftSlot.Value,
			RightSlot:  rightSlot.Value,
			Payment:    r.State.RegistrationPrice,
			CatalogNFT: entry.NFT,
		})
		if err != nil {
			return nil, fmt.Errorf("catalog: launch batch entry %x: %w", entry.AssetID, err)
		}
		allConditions = append(allConditions, conds...)
	}
	return allConditions, nil
}

// findInsertionNeighbors walks the registry's ordered list to find the
// pair of adjacent live slots assetID should be spliced between.
func findInsertionNeighbors(r *Registry, assetID [32]byte) (left, right [32]byte, err error) {
	cur := slot.MinValueBytes
	for {
		_, curRight, nerr := r.Slots.Neighbors(cur)
		if nerr != nil {
			return left, right, nerr
		}
		if !slot.LessSigned256(cur, assetID) {
			return left, right, fmt.Errorf("catalog: asset id %x already at or before current cursor", assetID)
		}
		if slot.LessSigned256(assetID, curRight) {
			return cur, curRight, nil
		}
		if curRight == slot.MaxValueBytes {
			return left, right, fmt.Errorf("catalog: reached list end without finding an insertion point")
		}
		cur = curRight
	}
}
