// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the network-selectable constants a registry
// client needs to talk to a given chain: the genesis challenge used to seed
// launcher coin IDs, the AggSig additional data mixed into every BLS
// signature, and the well-known launcher puzzle hash each registry type is
// singleton-launched from.
package chaincfg

import (
	"errors"
	"strings"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
)

// Network identifies one of the registered networks a Params value
// describes.
type Network uint8

const (
	// Mainnet is the production network.
	Mainnet Network = iota

	// Testnet is the public test network.
	Testnet

	// Simnet is a local, single-node network used for integration tests.
	Simnet
)

// String returns the name used in config files and RPC URLs.
func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	case Simnet:
		return "simnet"
	default:
		return "unknown"
	}
}

// Params groups the network-specific constants a registry client needs.
// Selecting a Params value is the registry-core analogue of selecting a
// btcd chaincfg.Params: it fixes the genesis challenge, the AggSig domain
// separator, and the launcher puzzle hashes the client will recognize.
type Params struct {
	// Name is the network's canonical name, e.g. "mainnet".
	Name string

	// Net is the enum identifying this network.
	Net Network

	// GenesisChallenge seeds every launcher coin's singleton struct on this
	// network; it is the root of trust a client uses to recognize that a
	// singleton was actually launched under this network's rules rather than
	// replayed from another chain.
	GenesisChallenge chainhash.Hash

	// AggSigMeExtraData is mixed into the message hashed for every
	// AGG_SIG_ME condition on this network (BLS domain separation between
	// mainnet/testnet/simnet so a signature valid on one network can never
	// be replayed on another).
	AggSigMeExtraData chainhash.Hash

	// CatalogLauncherPuzzleHash is the well-known singleton launcher puzzle
	// hash the CATalog registry's first coin is created under.
	CatalogLauncherPuzzleHash chainhash.Hash

	// XchandlesLauncherPuzzleHash is the well-known singleton launcher
	// puzzle hash the XCHandles registry's first coin is created under.
	XchandlesLauncherPuzzleHash chainhash.Hash

	// DefaultRPCBaseURL is the default full-node RPC endpoint a CLI build
	// for this network talks to absent an explicit override.
	DefaultRPCBaseURL string

	// Bech32HRPSegwit is unused by this system directly but kept, matching
	// the teacher's Params shape, for address display of the XCHandles
	// owner/resolved-target keys.
	Bech32HRPSegwit string
}

// MainNetParams defines the network parameters for the production network.
var MainNetParams = Params{
	Name:                        "mainnet",
	Net:                         Mainnet,
	GenesisChallenge:            newHashFromStr("ecc6a35480674b495ee6d1eac1bd35b91d5fdc1016cf79f8c21ccbb97c7b20f2"),
	AggSigMeExtraData:           newHashFromStr("7992be4cf3ee59573b56461b7c784180570a79c222f2c0ebd571fbbe4beb5585"),
	CatalogLauncherPuzzleHash:   newHashFromStr("bf6b2b1d0c829ca036e803cffcfe08ca884ef021b9df15b85895841c1bcfddcf"),
	XchandlesLauncherPuzzleHash: newHashFromStr("b3ec8133fbbbbe2dcc96203e97705827d1183afecbf51bd5fef4084cf132a7d9"),
	DefaultRPCBaseURL:           "https://mainnet-rpc.registry-core.example/",
	Bech32HRPSegwit:             "xch",
}

// TestNet3Params defines the network parameters for the public test
// network. It reuses MainNetParams' shape but with distinct domain-
// separation constants so mainnet and testnet signatures never collide.
var TestNet3Params = Params{
	Name:                        "testnet",
	Net:                         Testnet,
	GenesisChallenge:            newHashFromStr("22667c086c3c0c4da62aab7c89384e54a2bca85ea4a7a86a59747a862a00e8b0"),
	AggSigMeExtraData:           newHashFromStr("9d40693d7d4a6b7d58b829eaa3ec1c93ccdef9d97ef2d7a54757299d7ab4f612"),
	CatalogLauncherPuzzleHash:   newHashFromStr("8492ef9650ce21d57f05be8aa2c76f070d0b84fa3c9a7df4787d8a9c10bf2af2"),
	XchandlesLauncherPuzzleHash: newHashFromStr("a1f4ce7b584de5369193c152430b78d14cd4ef813f2272082e815f775a1cb1a0"),
	DefaultRPCBaseURL:           "https://testnet11-rpc.registry-core.example/",
	Bech32HRPSegwit:             "txch",
}

// SimNetParams defines the network parameters for a local, single-node test
// network. There is no well-known genesis challenge for simnet: a node
// operator mints one per private network, so SimNetParams leaves it zeroed
// and expects the caller to fill it in from their own node's config.
var SimNetParams = Params{
	Name:              "simnet",
	Net:               Simnet,
	DefaultRPCBaseURL: "http://localhost:18444/",
	Bech32HRPSegwit:   "sxch",
}

var (
	registeredNets = map[Network]*Params{
		Mainnet: &MainNetParams,
		Testnet: &TestNet3Params,
		Simnet:  &SimNetParams,
	}
	networksByName = map[string]*Params{
		MainNetParams.Name: &MainNetParams,
		TestNet3Params.Name: &TestNet3Params,
		SimNetParams.Name:   &SimNetParams,
	}
)

// ErrUnknownNetwork is returned by ParamsByName when the given name does not
// match any registered network.
var ErrUnknownNetwork = errors.New("chaincfg: unknown network name")

// ParamsForNetwork looks up the registered Params for a Network enum value.
// It panics if net is not one of the three built-in networks, mirroring the
// teacher's convention that Network values are always one of a fixed,
// compile-time-known set.
func ParamsForNetwork(net Network) *Params {
	p, ok := registeredNets[net]
	if !ok {
		panic("chaincfg: unregistered network")
	}
	return p
}

// ParamsByName looks up the registered Params for a network by its string
// name ("mainnet", "testnet", "simnet"), as accepted from a CLI --network
// flag.
func ParamsByName(name string) (*Params, error) {
	p, ok := networksByName[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownNetwork
	}
	return p, nil
}

// newHashFromStr panics on a malformed literal; used only for the package's
// own compile-time constant tables, where a bad hex literal is a programmer
// error caught immediately rather than a runtime condition to handle.
func newHashFromStr(hexStr string) chainhash.Hash {
	h, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return *h
}
