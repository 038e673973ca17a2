package zeldminer

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/zeldhash/miner/address"
	"github.com/zeldhash/miner/coordinator"
	"github.com/zeldhash/miner/hash"
	"github.com/zeldhash/miner/txplan"
)

func TestMineEndToEnd(t *testing.T) {
	dest, err := address.Parse("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	require.NoError(t, err)
	script, err := address.ScriptPubKey(dest)
	require.NoError(t, err)

	inputs := []txplan.Input{
		{
			PrevOut:      chainhash.Hash{9, 9, 9},
			PrevOutIndex: 0,
			Value:        500_000,
			PrevScript:   script,
			AddrType:     address.P2WPKH,
		},
	}
	outputs := []txplan.Output{
		{Addr: dest, Value: 100_000},
		{Addr: dest, IsChange: true},
	}

	o, err := New(Config{
		Backend:   coordinator.BackendCPU,
		Workers:   2,
		BatchSize: 1 << 12,
	})
	require.NoError(t, err)

	result, err := o.Mine(context.Background(), Request{
		Inputs:      inputs,
		Outputs:     outputs,
		FeeRate:     10,
		TargetZeros: 1,
		RangeStart:  0,
		RangeSpan:   1 << 16,
	})
	require.NoError(t, err)
	require.True(t, hash.MeetsTarget(result.Txid, 1))
	require.NotEmpty(t, result.PSBT)
}

func TestMineRejectsConcurrentCalls(t *testing.T) {
	o, err := New(Config{Backend: coordinator.BackendCPU, Workers: 1, BatchSize: 1024})
	require.NoError(t, err)

	o.running = true
	_, err = o.Mine(context.Background(), Request{TargetZeros: 1, RangeSpan: 1})
	require.Error(t, err)
}

func TestMineRejectsInvalidTargetZeros(t *testing.T) {
	o, err := New(Config{Backend: coordinator.BackendCPU, Workers: 1, BatchSize: 1024})
	require.NoError(t, err)

	_, err = o.Mine(context.Background(), Request{TargetZeros: 0, RangeSpan: 1})
	require.Error(t, err)
}

func TestNewRejectsNonPositiveWorkersOrBatchSize(t *testing.T) {
	_, err := New(Config{Backend: coordinator.BackendCPU, Workers: 0, BatchSize: 1024})
	require.Error(t, err)

	_, err = New(Config{Backend: coordinator.BackendCPU, Workers: 1, BatchSize: 0})
	require.Error(t, err)
}
