// Package txplan builds the fixed legacy-serialized transaction template a
// miner varies a nonce against: it plans outputs (including the OP_RETURN
// carrying the nonce and an optional change output), computes the fee and
// virtual size, serializes the unsigned transaction for txid computation,
// and splits that serialization into a prefix/suffix pair around the nonce
// bytes.
package txplan

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/zeldhash/miner/address"
)

// Input is a single transaction input: a previous output being spent, its
// value and scriptPubKey (needed for fee/change accounting and the PSBT's
// WITNESS_UTXO field — never signed here), and the address type that
// determines its witness weight.
type Input struct {
	PrevOut      chainhash.Hash
	PrevOutIndex uint32
	Value        int64
	PrevScript   []byte
	AddrType     address.Type
}

// Output is a single non-OP_RETURN transaction output: a destination
// address and a value, or — for exactly one output in a plan — a flag
// marking it as the change output whose value is computed rather than
// supplied.
type Output struct {
	Addr      address.Parsed
	Value     int64
	IsChange  bool
}

// ZeldDistribution, when non-nil, switches the OP_RETURN payload from the
// legacy minimal-nonce form to the "ZELD" + CBOR([...shares, nonce]) form.
type ZeldDistribution struct {
	Shares []uint64
}

// DefaultSequence is the sequence number used for every input; it signals
// opt-in RBF without enabling an nLockTime-based timelock, matching
// original_source's DEFAULT_SEQUENCE.
const DefaultSequence uint32 = 0xfffffffd

// ZeldPrefix is the 4-byte magic preceding a ZELD distribution OP_RETURN
// payload.
var ZeldPrefix = []byte("ZELD")
