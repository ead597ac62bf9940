// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/chia-network/registry-core/chaincfg"
)

const (
	defaultConfigFilename = "registryd.conf"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultLogFilename    = "registryd.log"
)

var (
	defaultHomeDir    = appHomeDir()
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(defaultHomeDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(defaultHomeDir, "logs")
)

// config defines the command-line and config-file options registryd
// accepts, following the same go-flags option-struct-with-`long`/`short`
// tags convention the rest of this module's dependency set (jessevdk/
// go-flags) expects of its caller.
type config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string `short:"b" long:"datadir" description:"Directory to store the local slot/singleton cache"`

	Network string `long:"network" description:"Network to connect to {mainnet, testnet, simnet}"`

	RPCBaseURL string `long:"rpcurl" description:"Full node RPC base URL (overrides the network default)"`

	LauncherID string `long:"launcher" description:"Hex-encoded launcher ID of the registry singleton to sync"`

	LogDir   string `long:"logdir" description:"Directory to log output to"`
	LogLevel string `long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`

	NoSweep bool `long:"nosweep" description:"Disable the periodic cache sweep"`
}

// appHomeDir resolves the default application data directory,
// platform-appropriately, mirroring the teacher's btcutil.AppDataDir
// convention without importing btcutil solely for this.
func appHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".registryd")
}

// loadConfig parses command-line flags, applying defaults for anything
// left unset, and validates the resulting network selection.
func loadConfig() (*config, error) {
	cfg := config{
		ConfigFile: defaultConfigFile,
		DataDir:    defaultDataDir,
		Network:    chaincfg.MainNetParams.Name,
		LogDir:     defaultLogDir,
		LogLevel:   defaultLogLevel,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if _, err := chaincfg.ParamsByName(cfg.Network); err != nil {
		return nil, fmt.Errorf("config: %w: %q", err, cfg.Network)
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("config: creating data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return nil, fmt.Errorf("config: creating log dir: %w", err)
	}

	return &cfg, nil
}

// params resolves the chaincfg.Params this config's Network selects.
func (c *config) params() *chaincfg.Params {
	p, err := chaincfg.ParamsByName(c.Network)
	if err != nil {
		// loadConfig already validated Network; unreachable in practice.
		panic(err)
	}
	return p
}

// rpcBaseURL returns the RPC endpoint to dial: the explicit override if
// given, otherwise the selected network's default.
func (c *config) rpcBaseURL() string {
	if c.RPCBaseURL != "" {
		return c.RPCBaseURL
	}
	return c.params().DefaultRPCBaseURL
}
