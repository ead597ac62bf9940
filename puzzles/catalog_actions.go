// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package puzzles

// CATalog registry action mod hashes (§4.4). Register/refund/update-state
// are derived: this module's retrieved reference material did not include
// their raw CLVM bytecode, unlike the oracle action below.
var (
	CatalogRegisterModHash     = derivedModHash("catalog-register-action-v1")
	CatalogRefundModHash       = derivedModHash("catalog-refund-action-v1")
	CatalogUpdateStateModHash  = derivedModHash("catalog-update-state-action-v1")
	CatalogLaunchBatchModHash  = derivedModHash("catalog-launch-batch-preroll-v1")
)

// CnsExpireModHash is the expiry-splice action shared by name-style
// registries (§4.4's XCHandles "expire"). Bit-exact.
var CnsExpireModHash = mustHash("45f28b9fce7646be66c5ed1d9d8ef5f198fa9c54d02a3553c5a33614da3bfe52")

// CnsOracleModHash re-attests a slot's current value on-chain without
// mutating it. Bit-exact.
var CnsOracleModHash = mustHash("d058cd73b26b2ce268c433760d1f7bd77a926bfbf49200d72b4fec7bb531598a")
