package txplan

import (
	"bytes"

	"github.com/zeldhash/miner/address"
)

// Template is the fixed byte layout a miner hashes per attempt: Prefix and
// Suffix sandwich a NonceLen-byte gap that the miner fills with each
// candidate nonce encoding before double-hashing the concatenation.
type Template struct {
	Prefix   []byte
	Suffix   []byte
	NonceLen int
}

// BuildTemplate serializes plan's unsigned transaction with an
// all-zero nonce placeholder of nonceLen bytes in the OP_RETURN output, then
// splits the serialization around that placeholder.
func BuildTemplate(plan *Plan, nonceLen int) (Template, error) {
	opReturnScript, nonceOffsetInScript, err := opReturnScriptFor(plan, nonceLen)
	if err != nil {
		return Template{}, err
	}

	var buf bytes.Buffer
	writeVersion(&buf)
	serializeInputs(&buf, plan.Inputs)

	writeVarInt(&buf, uint64(len(plan.Outputs)+1))
	for _, o := range plan.Outputs {
		script, err := address.ScriptPubKey(o.Addr)
		if err != nil {
			return Template{}, err
		}
		writeOutputValue(&buf, o.Value)
		writeOutputScript(&buf, script)
	}

	writeOutputValue(&buf, 0)
	scriptBodyOffset := buf.Len() + varIntPrefixLen(opReturnScript)
	writeOutputScript(&buf, opReturnScript)
	nonceOffset := scriptBodyOffset + nonceOffsetInScript

	writeLockTime(&buf)

	full := buf.Bytes()
	return Template{
		Prefix:   append([]byte(nil), full[:nonceOffset]...),
		Suffix:   append([]byte(nil), full[nonceOffset+nonceLen:]...),
		NonceLen: nonceLen,
	}, nil
}

func varIntPrefixLen(script []byte) int {
	return varIntLen(uint64(len(script)))
}

func opReturnScriptFor(plan *Plan, nonceLen int) (script []byte, nonceOffsetInScript int, err error) {
	if plan.Distribution != nil {
		return ZeldDistributionOpReturnScript(plan.Distribution.Shares, nonceLen)
	}
	s, off := LegacyOpReturnScript(nonceLen)
	return s, off, nil
}

// SerializeUnsignedTx returns the full legacy-serialized unsigned
// transaction with the given nonce encoding substituted into the OP_RETURN
// output, ready for txid computation or PSBT embedding.
func SerializeUnsignedTx(plan *Plan, nonceBytes []byte) ([]byte, error) {
	tmpl, err := BuildTemplate(plan, len(nonceBytes))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(tmpl.Prefix)+len(nonceBytes)+len(tmpl.Suffix))
	out = append(out, tmpl.Prefix...)
	out = append(out, nonceBytes...)
	out = append(out, tmpl.Suffix...)
	return out, nil
}
