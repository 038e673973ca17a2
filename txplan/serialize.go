package txplan

import (
	"bytes"

	"github.com/btcsuite/btcd/wire"
)

// writeVarInt appends the Bitcoin compact-size encoding of n to buf via the
// wire package, matching how txsizes accounts for varint-sized fields.
func writeVarInt(buf *bytes.Buffer, n uint64) {
	_ = wire.WriteVarInt(buf, 0, n)
}

func varIntLen(n uint64) int {
	return wire.VarIntSerializeSize(n)
}

const (
	txVersion  = 2
	inputCoreSize = 32 + 4 + 1 + 4 // prevout hash + index + empty sigScript varint + sequence
)

// serializeInputs writes every plan input's legacy (non-witness) body:
// prevout, an empty scriptSig (this module never signs), and the sequence
// number.
func serializeInputs(buf *bytes.Buffer, inputs []Input) {
	writeVarInt(buf, uint64(len(inputs)))
	for _, in := range inputs {
		prev := in.PrevOut
		// chainhash.Hash is stored internally reversed relative to
		// display order; wire serialization uses internal order
		// directly.
		buf.Write(prev[:])
		var idx [4]byte
		idx[0] = byte(in.PrevOutIndex)
		idx[1] = byte(in.PrevOutIndex >> 8)
		idx[2] = byte(in.PrevOutIndex >> 16)
		idx[3] = byte(in.PrevOutIndex >> 24)
		buf.Write(idx[:])
		writeVarInt(buf, 0) // empty scriptSig
		var seq [4]byte
		seq[0] = byte(DefaultSequence)
		seq[1] = byte(DefaultSequence >> 8)
		seq[2] = byte(DefaultSequence >> 16)
		seq[3] = byte(DefaultSequence >> 24)
		buf.Write(seq[:])
	}
}

func writeOutputValue(buf *bytes.Buffer, value int64) {
	var v [8]byte
	u := uint64(value)
	for i := range v {
		v[i] = byte(u)
		u >>= 8
	}
	buf.Write(v[:])
}

func writeOutputScript(buf *bytes.Buffer, script []byte) {
	writeVarInt(buf, uint64(len(script)))
	buf.Write(script)
}

func writeLockTime(buf *bytes.Buffer) {
	buf.Write([]byte{0, 0, 0, 0})
}

func writeVersion(buf *bytes.Buffer) {
	buf.Write([]byte{byte(txVersion), 0, 0, 0})
}
