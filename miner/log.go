package miner

import "github.com/btcsuite/btclog"

// log is the package-level logger used by the CPU mining loop, following
// the wallet package's subsystem-logger convention: disabled by default
// until a caller wires one in with UseLogger.
var log btclog.Logger

func init() {
	DisableLog()
}

// DisableLog disables all library log output.
func DisableLog() {
	log = btclog.Disabled
}

// UseLogger sets the package-wide logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
