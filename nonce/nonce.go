// Package nonce encodes mining nonces two ways — a minimal big-endian raw
// encoding and a CBOR (RFC 8949) major-type-0 unsigned integer encoding —
// and splits a nonce range into length-homogeneous segments for either
// encoding so that a mining template's prefix/suffix split never needs to
// change mid-segment.
package nonce

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"

	"github.com/zeldhash/miner/minererr"
)

// EncodeRaw returns the minimal big-endian encoding of n: the shortest byte
// string, 1 to 8 bytes, with no leading zero byte except when n itself is
// zero (which encodes as a single 0x00 byte).
func EncodeRaw(n uint64) []byte {
	l := RawLen(n)
	out := make([]byte, l)
	for i := l - 1; i >= 0; i-- {
		out[i] = byte(n)
		n >>= 8
	}
	return out
}

// RawLen returns the length EncodeRaw(n) would produce, without allocating.
func RawLen(n uint64) int {
	if n == 0 {
		return 1
	}
	l := 0
	for n > 0 {
		l++
		n >>= 8
	}
	return l
}

// EncodeCBOR returns the canonical CBOR encoding of n as an unsigned
// integer (major type 0), delegating to a real CBOR encoder so the
// shortest-form guarantee comes from the library's own RFC 8949 compliance
// rather than a hand-maintained boundary table.
func EncodeCBOR(n uint64) []byte {
	// cbor.Marshal on a plain uint64 always emits the canonical shortest
	// major-type-0 encoding. It allocates on every call, and the CPU miner
	// calls this once per nonce attempt in CBOR mode.
	out, err := cbor.Marshal(n)
	if err != nil {
		// cbor.Marshal only fails for cyclic/unsupported types; a
		// uint64 can never trigger that.
		panic(err)
	}
	return out
}

// CBORLen returns the length EncodeCBOR(n) would produce.
func CBORLen(n uint64) int {
	switch {
	case n < 24:
		return 1
	case n <= 0xff:
		return 2
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// DecodeCBORUint decodes a canonical CBOR unsigned integer from the front
// of data, returning the value and the number of bytes consumed. Used by
// tests to round-trip EncodeCBOR against a real decoder; built on
// cbor.Decoder rather than cbor.Unmarshal since the latter requires
// consuming the entire input, and a nonce is frequently just the tail
// element of a larger CBOR array.
func DecodeCBORUint(data []byte) (uint64, int, error) {
	dec := cbor.NewDecoder(bytes.NewReader(data))
	var n uint64
	if err := dec.Decode(&n); err != nil {
		return 0, 0, err
	}
	return n, dec.NumBytesRead(), nil
}

// EncodeArray returns the canonical CBOR encoding of values as an array of
// unsigned integers, used to build the ZELD distribution OP_RETURN payload
// (distribution shares followed by the nonce itself).
func EncodeArray(values []uint64) ([]byte, error) {
	out, err := cbor.Marshal(values)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ArrayLen returns the byte length EncodeArray(values) would produce
// without allocating the encoding.
func ArrayLen(values []uint64) int {
	l := arrayHeaderLen(len(values))
	for _, v := range values {
		l += CBORLen(v)
	}
	return l
}

func arrayHeaderLen(n int) int {
	return CBORLen(uint64(n))
}

// Segment describes a contiguous, length-homogeneous slice of a nonce
// range: every value in [Start, Start+Count-1] encodes to exactly Len
// bytes under the relevant codec.
type Segment struct {
	Start uint64
	Count uint64
	Len   int
}

// rawBoundaries are the values at which RawLen's output grows by one byte:
// 0 is length 1; 0x100 is the first length-2 value; and so on. Index i
// holds the first n with RawLen(n) == i+2.
var rawBoundaries = []uint64{
	0x100,
	0x10000,
	0x1000000,
	0x100000000,
	0x10000000000,
	0x1000000000000,
	0x100000000000000,
}

// cborBoundaries are the first values at which CBORLen grows: 24, 256,
// 65536, 2^32.
var cborBoundaries = []uint64{24, 256, 65536, 4294967296}

// SplitSegments partitions [start, start+span-1] into the fewest possible
// length-homogeneous segments for the chosen codec. span must be > 0.
func SplitSegments(start uint64, span uint64, useCBOR bool) ([]Segment, error) {
	if span == 0 {
		return nil, minererr.New(minererr.ErrInvalidInput, "nonce span must be nonzero", nil)
	}

	end := start + span - 1
	if end < start {
		return nil, minererr.New(minererr.ErrInvalidInput, "nonce range overflows uint64", nil)
	}

	boundaries := rawBoundaries
	lenAt := RawLen
	if useCBOR {
		boundaries = cborBoundaries
		lenAt = CBORLen
	}

	var segments []Segment
	cur := start
	for cur <= end {
		l := lenAt(cur)

		// Find the first boundary strictly greater than cur; the
		// segment runs up to (boundary - 1) or end, whichever is
		// smaller.
		segEnd := end
		for _, b := range boundaries {
			if b > cur && b-1 < segEnd {
				segEnd = b - 1
			}
		}

		segments = append(segments, Segment{
			Start: cur,
			Count: segEnd - cur + 1,
			Len:   l,
		})

		if segEnd == end {
			break
		}
		cur = segEnd + 1
	}

	return segments, nil
}
