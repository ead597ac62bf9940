// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/chia-network/registry-core/registry/catalog"
	"github.com/chia-network/registry-core/registry/xchandles"
	"github.com/chia-network/registry-core/rewarddist"
	regsync "github.com/chia-network/registry-core/sync"
)

// logRotator writes log output to a rotated file; logWriter pairs it with
// stdout, as the teacher's daemon logging setup does.
var logRotator *rotator.Rotator

// backendLog is the btclog backend every subsystem logger is created
// from.
var backendLog = btclog.NewBackend(logWriter{})

// subsystemLoggers holds one tagged logger for each subsystem initLogging
// wires (catalog, xchandles, rewarddist, sync) plus registryd's own, the
// way btcd's log.go wires one logger per subsystem. The slot package's
// UseLogger hook is not wired here.
var subsystemLoggers = map[string]btclog.Logger{
	"CTLG": backendLog.Logger("CTLG"),
	"XCHD": backendLog.Logger("XCHD"),
	"RWRD": backendLog.Logger("RWRD"),
	"SYNC": backendLog.Logger("SYNC"),
	"RGYD": backendLog.Logger("RGYD"),
}

// logWriter implements io.Writer, sending logged bytes to both standard
// output and the rotating log file.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogging creates the log rotator, wires those subsystems' UseLogger
// hooks to their tagged loggers, and applies the configured log level
// uniformly.
func initLogging(cfg *config) error {
	logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("log: failed to create rotator: %w", err)
	}
	logRotator = r

	level, ok := btclog.LevelFromString(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("log: unknown log level %q", cfg.LogLevel)
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}

	catalog.UseLogger(subsystemLoggers["CTLG"])
	xchandles.UseLogger(subsystemLoggers["XCHD"])
	rewarddist.UseLogger(subsystemLoggers["RWRD"])
	regsync.UseLogger(subsystemLoggers["SYNC"])

	return nil
}

// log is registryd's own top-level logger, for messages that don't belong
// to any one registry subsystem (config, startup/shutdown, sweep timer).
var log = subsystemLoggers["RGYD"]
