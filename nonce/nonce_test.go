package nonce

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeRawMinimal(t *testing.T) {
	require.Equal(t, []byte{0x00}, EncodeRaw(0))
	require.Equal(t, []byte{0xf0}, EncodeRaw(0xf0))
	require.Equal(t, []byte{0x01, 0x00}, EncodeRaw(0x100))
	require.Equal(t, 1, RawLen(0xff))
	require.Equal(t, 2, RawLen(0x100))
}

func TestEncodeCBORRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 23, 24, 255, 256, 65535, 65536, 4294967295, 4294967296, 1 << 40} {
		enc := EncodeCBOR(n)
		require.Equal(t, CBORLen(n), len(enc))

		decoded, consumed, err := DecodeCBORUint(enc)
		require.NoError(t, err)
		require.Equal(t, n, decoded)
		require.Equal(t, len(enc), consumed)
	}
}

// TestEncodeCBORArrayFixture mirrors the literal fixture in
// original_source/crates/core/src/cbor.rs: encoding [600,300,100,42] as a
// CBOR array produces a known byte sequence.
func TestEncodeCBORArrayFixture(t *testing.T) {
	values := []uint64{600, 300, 100, 42}
	want := []byte{0x84, 0x19, 0x02, 0x58, 0x19, 0x01, 0x2c, 0x18, 0x64, 0x18, 0x2a}

	got, err := EncodeArray(values)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSplitSegmentsRaw(t *testing.T) {
	segs, err := SplitSegments(0xf0, 0x20, false)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	require.Equal(t, uint64(16), segs[0].Count)
	require.Equal(t, 1, segs[0].Len)
	require.Equal(t, uint64(16), segs[1].Count)
	require.Equal(t, 2, segs[1].Len)
}

func TestSplitSegmentsCBOR(t *testing.T) {
	segs, err := SplitSegments(0, 300, true)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	require.Equal(t, []uint64{24, 232, 44}, counts(segs))
	require.Equal(t, []int{1, 2, 3}, lens(segs))
}

func TestSplitSegmentsRejectsZeroSpan(t *testing.T) {
	_, err := SplitSegments(0, 0, false)
	require.Error(t, err)
}

func counts(segs []Segment) []uint64 {
	out := make([]uint64, len(segs))
	for i, s := range segs {
		out[i] = s.Count
	}
	return out
}

func lens(segs []Segment) []int {
	out := make([]int, len(segs))
	for i, s := range segs {
		out[i] = s.Len
	}
	return out
}
