package gpuminer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeldhash/miner/hash"
	"github.com/zeldhash/miner/nonce"
)

// TestReferenceDoubleMatchesHashPackage confirms the kernel's message
// assembly (prefix || nonce || suffix, then double-SHA256) produces the
// identical digest the CPU miner computes, for a table of fixtures — the
// equivalence this module's GPU/CPU fallback path depends on.
func TestReferenceDoubleMatchesHashPackage(t *testing.T) {
	cases := []struct {
		prefix, suffix []byte
		n              uint64
	}{
		{[]byte("tx-prefix"), []byte("tx-suffix"), 0},
		{[]byte(""), []byte("suffix-only"), 42},
		{[]byte("prefix-only"), []byte(""), 1 << 20},
		{[]byte("a longer template prefix segment"), []byte("and its suffix segment"), 1 << 40},
	}

	for _, c := range cases {
		nonceBytes := nonce.EncodeRaw(c.n)
		got := ReferenceDouble(c.prefix, nonceBytes, c.suffix)

		want := hash.Double(append(append(append([]byte{}, c.prefix...), nonceBytes...), c.suffix...))
		require.Equal(t, want, got)
	}
}

func TestPackWordsBEPacksMSBFirst(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	words := packWordsBE(data)
	require.Len(t, words, 2)
	require.Equal(t, uint32(0x01020304), words[0])
	require.Equal(t, uint32(0x05000000), words[1])
}

func TestDecodeMatchesEmpty(t *testing.T) {
	raw := make([]byte, resultBufferSize())
	matches := decodeMatches(raw)
	require.Empty(t, matches)
}
