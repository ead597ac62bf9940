// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc declares the node RPC surface §6 requires without
// implementing it: a JSON-over-HTTPS node RPC plus a WebSocket peak feed.
// Supplying a concrete client (connection pooling, TLS, retry/backoff) is
// explicitly out of scope; sync.Driver is written against NodeClient so a
// caller can substitute a real implementation, a recorded fixture, or a
// test double interchangeably.
package rpc

import (
	"context"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
)

// CoinRecord mirrors a node's coin-record response: a coin plus its
// confirmation/spend status.
type CoinRecord struct {
	ParentCoinID    chainhash.Hash
	PuzzleHash      chainhash.Hash
	Amount          uint64
	Coinbase        bool
	ConfirmedHeight uint32
	SpentHeight     uint32 // 0 if unspent
	Timestamp       uint64
}

// Spent reports whether the node has observed a spend of this coin.
func (r CoinRecord) Spent() bool {
	return r.SpentHeight != 0
}

// PuzzleAndSolution is a spent coin's revealed puzzle reveal and solution,
// as returned by get_puzzle_and_solution.
type PuzzleAndSolution struct {
	CoinID     chainhash.Hash
	PuzzleReveal []byte
	Solution     []byte
	Height       uint32
}

// BlockchainState mirrors get_blockchain_state's reply: enough to learn
// the current peak height and whether the node considers itself synced.
type BlockchainState struct {
	PeakHeight uint32
	PeakHash   chainhash.Hash
	Synced     bool
}

// NodeClient is the node RPC surface §6 names. Every method is a single
// request/response HTTP call except Subscribe, which opens the WebSocket
// peak feed described there; callers are expected to apply the fixed
// 30-second timeout and the WebSocket 5-second reconnect/resync backoff
// themselves — NodeClient only describes the calls, not their transport
// policy.
type NodeClient interface {
	// GetBlockchainState returns the node's current view of the chain tip.
	GetBlockchainState(ctx context.Context) (BlockchainState, error)

	// GetCoinRecordByName looks up a single coin by its coin ID.
	GetCoinRecordByName(ctx context.Context, coinID chainhash.Hash) (CoinRecord, error)

	// GetCoinRecordsByHint returns every coin record hinted with hint,
	// optionally restricted to unspent coins.
	GetCoinRecordsByHint(ctx context.Context, hint chainhash.Hash, includeSpent bool) ([]CoinRecord, error)

	// GetCoinRecordsByPuzzleHash returns every coin record locked under
	// puzzleHash, optionally restricted to unspent coins.
	GetCoinRecordsByPuzzleHash(ctx context.Context, puzzleHash chainhash.Hash, includeSpent bool) ([]CoinRecord, error)

	// GetPuzzleAndSolution returns the revealed puzzle and solution for a
	// spent coin.
	GetPuzzleAndSolution(ctx context.Context, coinID chainhash.Hash, spentHeight uint32) (PuzzleAndSolution, error)

	// PushTX submits a spend bundle for inclusion in the mempool.
	PushTX(ctx context.Context, spendBundle []byte) error

	// Subscribe opens the "new peak" WebSocket feed, delivering each
	// advisory peak notification on the returned channel until ctx is
	// canceled. The channel is closed on disconnect; callers are
	// responsible for reconnecting.
	Subscribe(ctx context.Context) (<-chan PeakNotification, error)
}

// PeakNotification is the advisory "new peak" WebSocket message — §5
// notes authoritative state changes are confirmed only via coin-record
// queries, never from this notification alone.
type PeakNotification struct {
	Height uint32
	Hash   chainhash.Hash
}
