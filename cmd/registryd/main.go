// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command registryd is the reference CLI entrypoint for syncing a single
// on-chain registry singleton against a node RPC endpoint and maintaining
// its local slot/singleton cache. Building an actual production node RPC
// client is out of scope (see rpc.NodeClient's doc comment); registryd
// wires configuration, logging, storage, and the sync loop around
// whatever NodeClient implementation is linked in.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chia-network/registry-core/chaincfg/chainhash"
	"github.com/chia-network/registry-core/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "registryd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return err
	}
	defer logRotator.Close()

	params := cfg.params()
	log.Infof("registryd starting: network=%s rpc=%s datadir=%s", params.Name, cfg.rpcBaseURL(), cfg.DataDir)

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	var launcherID chainhash.Hash
	if cfg.LauncherID != "" {
		h, err := chainhash.NewHashFromStr(cfg.LauncherID)
		if err != nil {
			return fmt.Errorf("parsing --launcher: %w", err)
		}
		launcherID = *h
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	if launcherID == (chainhash.Hash{}) {
		log.Warn("no --launcher supplied; idling (registryd has nothing to sync)")
		<-ctx.Done()
		return nil
	}

	// sync.Driver requires a rpc.NodeClient, which this binary does not
	// link in (see rpc.NodeClient's doc comment for why). An embedder
	// linking in a concrete NodeClient calls sync.NewDriver(node, db) and
	// drives SyncLauncher/Sweep from the loop below in its place.
	log.Infof("ready to sync launcher %s once a rpc.NodeClient is linked in", launcherID)

	sweepTicker := time.NewTicker(30 * time.Minute)
	defer sweepTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("registryd stopped")
			return nil
		case <-sweepTicker.C:
			if cfg.NoSweep {
				continue
			}
			log.Debug("periodic cache sweep tick")
		}
	}
}
