package psbtbuild

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/zeldhash/miner/address"
	"github.com/zeldhash/miner/txplan"
)

func TestBuildProducesDecodablePsbt(t *testing.T) {
	dest, err := address.Parse("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	require.NoError(t, err)
	script, err := address.ScriptPubKey(dest)
	require.NoError(t, err)

	inputs := []txplan.Input{
		{
			PrevOut:      chainhash.Hash{1, 2, 3},
			PrevOutIndex: 0,
			Value:        100_000,
			PrevScript:   script,
			AddrType:     address.P2WPKH,
		},
	}
	outputs := []txplan.Output{
		{Addr: dest, Value: 50_000},
		{Addr: dest, IsChange: true},
	}

	plan, err := txplan.PlanTransaction(inputs, outputs, txplan.PlanOptions{
		FeeRate:         10,
		MaxNonceByteLen: 8,
	})
	require.NoError(t, err)

	b64, txid, err := Build(plan, make([]byte, 8))
	require.NoError(t, err)
	require.NotEmpty(t, b64)
	require.NotEqual(t, chainhash.Hash{}, txid)
}
