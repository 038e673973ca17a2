// Package zeldminer is the public orchestrator façade: it validates a
// mining request, builds the transaction plan and template, drives a
// coordinator to a match, and assembles the resulting PSBT.
package zeldminer

import (
	"github.com/btcsuite/btclog"

	"github.com/zeldhash/miner/coordinator"
	"github.com/zeldhash/miner/gpuminer"
	"github.com/zeldhash/miner/miner"
)

var log btclog.Logger

func init() {
	DisableLog()
}

// DisableLog disables all library log output, in this package and every
// package it fans out to.
func DisableLog() {
	UseLogger(btclog.Disabled)
}

// UseLogger sets the package-wide logger used by this package and cascades
// it to every subsystem package beneath it, the same fan-out idiom the
// teacher's root log.go uses for wallet/txmgr/chain.
func UseLogger(logger btclog.Logger) {
	log = logger
	coordinator.UseLogger(logger)
	gpuminer.UseLogger(logger)
	miner.UseLogger(logger)
}
