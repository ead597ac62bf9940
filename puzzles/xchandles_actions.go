// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package puzzles

// XCHandles registry action mod hashes (§4.4). Expire reuses the bit-exact
// CnsExpireModHash, since an XCHandles handle-hash slot is ordered and
// spliced out the same way a CNS name slot is; the oracle action has its
// own bit-exact constant below. Register, renew, update and update-state
// are derived.
var (
	XchandlesRegisterModHash    = derivedModHash("xchandles-register-action-v1")
	XchandlesRenewModHash       = derivedModHash("xchandles-renew-action-v1")
	XchandlesUpdateModHash      = derivedModHash("xchandles-update-action-v1")
	XchandlesExpireModHash      = CnsExpireModHash
	XchandlesUpdateStateModHash = derivedModHash("xchandles-update-state-action-v1")
)

// XchandlesOracleModHash re-attests an XCHandles slot's current value.
// Bit-exact.
var XchandlesOracleModHash = mustHash("594aa7ec5ccc704bb182309b8b41b531103a12eca6baf3135b4a3b9ef8394a67")
