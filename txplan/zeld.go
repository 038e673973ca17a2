package txplan

import "github.com/zeldhash/miner/nonce"

// zeldDistributionFixedPrefix builds "ZELD" + CBOR array header for
// len(shares)+1 elements + each share's canonical CBOR encoding. The final
// array element — the nonce itself — is intentionally left out of the
// fixed prefix: its full canonical CBOR encoding (header byte included) is
// substituted wholesale at mining time via nonce.EncodeCBOR, since the
// header byte only depends on the segment's length class and is therefore
// already constant across every nonce in a mining segment.
func zeldDistributionFixedPrefix(shares []uint64, nonceLen int) ([]byte, error) {
	elementCount := uint64(len(shares) + 1)

	out := make([]byte, 0, len(ZeldPrefix)+nonce.CBORLen(elementCount)+16)
	out = append(out, ZeldPrefix...)
	out = append(out, cborArrayHeader(elementCount)...)
	for _, s := range shares {
		out = append(out, nonce.EncodeCBOR(s)...)
	}
	return out, nil
}

// cborArrayHeader returns the CBOR major-type-4 header for an array of n
// elements. The argument-length encoding rules are identical to major type
// 0 (unsigned integer); only the high 3 bits (the major type) differ.
func cborArrayHeader(n uint64) []byte {
	enc := nonce.EncodeCBOR(n)
	header := make([]byte, len(enc))
	copy(header, enc)
	header[0] = (header[0] & 0x1f) | 0x80
	return header
}

// ZeldDistributionPayloadLength returns the total OP_RETURN payload length
// (excluding the OP_RETURN opcode and its own pushdata prefix) for a ZELD
// distribution carrying shares and a nonce of nonceLen bytes (its full
// canonical CBOR encoding, header included).
func ZeldDistributionPayloadLength(shares []uint64, nonceLen int) int {
	total := len(ZeldPrefix)
	total += nonce.CBORLen(uint64(len(shares) + 1))
	for _, s := range shares {
		total += nonce.CBORLen(s)
	}
	total += nonceLen
	return total
}
