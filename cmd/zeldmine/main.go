// Command zeldmine is a thin manual-smoke-test wrapper around the
// zeldminer orchestrator. It is intentionally minimal: config loading,
// clipboard/download glue and packaging are explicitly out of scope for
// this module.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/jessevdk/go-flags"

	"github.com/zeldhash/miner/address"
	"github.com/zeldhash/miner/coordinator"
	"github.com/zeldhash/miner/txplan"
	"github.com/zeldhash/miner/zeldminer"
)

type options struct {
	DestAddr    string `long:"dest" description:"destination address" required:"true"`
	ChangeAddr  string `long:"change" description:"change address" required:"true"`
	AmountSats  int64  `long:"amount" description:"destination output value, in satoshis" required:"true"`
	FeeRate     int64  `long:"fee-rate" description:"fee rate, satoshis per vbyte" default:"1"`
	TargetZeros uint8  `long:"zeros" description:"required leading hex zero digits" default:"4"`
	RangeSpan   uint64 `long:"range" description:"nonce range span to search" default:"16777216"`
	GPU         bool   `long:"gpu" description:"prefer the GPU backend, falling back to CPU"`
	Workers     int    `long:"workers" description:"CPU worker count" default:"4"`
	BatchSize   uint64 `long:"batch-size" description:"nonces per dispatch batch" default:"1000000"`

	PrevTxid  string `long:"prev-txid" description:"previous output txid (hex, display order)" required:"true"`
	PrevIndex uint32 `long:"prev-index" description:"previous output index" default:"0"`
	PrevValue int64  `long:"prev-value" description:"previous output value, in satoshis" required:"true"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "zeldmine:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	dest, err := address.Parse(opts.DestAddr)
	if err != nil {
		return err
	}
	change, err := address.Parse(opts.ChangeAddr)
	if err != nil {
		return err
	}

	prevScript, err := addressScriptFromTxOut(opts)
	if err != nil {
		return err
	}

	prevTxid, err := chainhash.NewHashFromStr(opts.PrevTxid)
	if err != nil {
		return err
	}

	backend := coordinator.BackendCPU
	if opts.GPU {
		backend = coordinator.BackendGPU
	}

	orchestrator, err := zeldminer.New(zeldminer.Config{
		Backend:       backend,
		AllowFallback: true,
		Workers:       opts.Workers,
		BatchSize:     opts.BatchSize,
	})
	if err != nil {
		return err
	}

	outcome, err := orchestrator.Mine(context.Background(), zeldminer.Request{
		Inputs: []txplan.Input{{
			PrevOut:      *prevTxid,
			PrevOutIndex: opts.PrevIndex,
			Value:        opts.PrevValue,
			PrevScript:   prevScript,
			AddrType:     prevAddrType(opts),
		}},
		Outputs: []txplan.Output{
			{Addr: dest, Value: opts.AmountSats},
			{Addr: change, IsChange: true},
		},
		FeeRate:     opts.FeeRate,
		TargetZeros: opts.TargetZeros,
		RangeStart:  0,
		RangeSpan:   opts.RangeSpan,
	})
	if err != nil {
		return err
	}

	fmt.Printf("nonce=%d txid=%x\n", outcome.Nonce, outcome.Txid)
	fmt.Println(outcome.PSBT)
	return nil
}

// addressScriptFromTxOut derives the previous output's scriptPubKey from
// the change address supplied on the command line, standing in for a real
// UTXO lookup (this module has no wallet-discovery component; a real
// caller would supply the actual previous scriptPubKey from its own UTXO
// index).
func addressScriptFromTxOut(opts options) ([]byte, error) {
	parsed, err := address.Parse(opts.ChangeAddr)
	if err != nil {
		return nil, err
	}
	return address.ScriptPubKey(parsed)
}

func prevAddrType(opts options) address.Type {
	parsed, err := address.Parse(opts.ChangeAddr)
	if err != nil {
		return address.P2WPKH
	}
	return parsed.Type
}
