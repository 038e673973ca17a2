// Package psbtbuild assembles the unsigned BIP-174 PSBT this module emits
// once a matching nonce is found: one global unsigned transaction plus one
// WITNESS_UTXO per input, nothing else — no signatures, no redeem scripts,
// no SIGHASH type, matching the "never signs" boundary of this module.
package psbtbuild

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/zeldhash/miner/minererr"
	"github.com/zeldhash/miner/txplan"
)

// Build constructs the unsigned wire.MsgTx for plan with nonceBytes
// substituted into the OP_RETURN output, wraps it in a PSBT packet with one
// WITNESS_UTXO per input, and returns both the base64-encoded packet and
// the resulting txid as a chainhash.Hash (internal byte order; its String
// method renders the reversed display order).
func Build(plan *txplan.Plan, nonceBytes []byte) (b64 string, txid chainhash.Hash, err error) {
	tx, err := toMsgTx(plan, nonceBytes)
	if err != nil {
		return "", chainhash.Hash{}, err
	}

	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return "", chainhash.Hash{}, minererr.New(minererr.ErrWorkerError, "failed to wrap unsigned tx in psbt", err)
	}

	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return "", chainhash.Hash{}, minererr.New(minererr.ErrWorkerError, "failed to create psbt updater", err)
	}

	for i, in := range plan.Inputs {
		utxo := &wire.TxOut{Value: in.Value, PkScript: in.PrevScript}
		if err := updater.AddInWitnessUtxo(utxo, i); err != nil {
			return "", chainhash.Hash{}, minererr.New(minererr.ErrWorkerError, "failed to attach witness utxo", err)
		}
	}

	encoded, err := packet.B64Encode()
	if err != nil {
		return "", chainhash.Hash{}, minererr.New(minererr.ErrWorkerError, "failed to base64-encode psbt", err)
	}

	return encoded, tx.TxHash(), nil
}

func toMsgTx(plan *txplan.Plan, nonceBytes []byte) (*wire.MsgTx, error) {
	raw, err := txplan.SerializeUnsignedTx(plan, nonceBytes)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, minererr.New(minererr.ErrWorkerError, "failed to parse serialized unsigned tx", err)
	}
	return tx, nil
}
