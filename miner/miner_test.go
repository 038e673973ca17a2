package miner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeldhash/miner/hash"
	"github.com/zeldhash/miner/nonce"
	"github.com/zeldhash/miner/txplan"
)

// findTargetInRange brute-forces [0, 2^16) for the first nonce whose
// zero-padded template digest has at least one leading hex zero digit and
// returns it with its exact leading-zero count, so the target handed to the
// miner is known to be reachable inside the test's segment.
func findTargetInRange(t *testing.T, prefix, suffix []byte, nonceLen int) (uint64, uint8) {
	t.Helper()
	for n := uint64(0); n < 1<<16; n++ {
		b := nonce.EncodeRaw(n)
		padded := make([]byte, nonceLen)
		copy(padded[nonceLen-len(b):], b)

		full := append(append(append([]byte{}, prefix...), padded...), suffix...)
		digest := hash.Double(full)
		zeros := hash.CountLeadingZeros(digest)
		if zeros >= 1 {
			return n, zeros
		}
	}
	t.Fatal("no candidate found in bounded search range")
	return 0, 0
}

func TestMineSegmentFindsPlantedMatch(t *testing.T) {
	prefix := []byte("template-prefix-bytes")
	suffix := []byte("template-suffix-bytes")
	nonceLen := 2

	winner, zeros := findTargetInRange(t, prefix, suffix, nonceLen)

	tmpl := txplan.Template{Prefix: prefix, Suffix: suffix, NonceLen: nonceLen}
	seg := nonce.Segment{Start: 0, Count: 1 << 16, Len: nonceLen}

	result, err := MineSegment(context.Background(), tmpl, seg, false, zeros, nil)
	require.NoError(t, err)
	require.Equal(t, winner, result.Nonce)
	require.True(t, hash.MeetsTarget(result.Txid, zeros))
}

func TestMineSegmentExhaustsWithoutMatch(t *testing.T) {
	tmpl := txplan.Template{Prefix: []byte("a"), Suffix: []byte("b"), NonceLen: 1}
	seg := nonce.Segment{Start: 0, Count: 4, Len: 1}

	_, err := MineSegment(context.Background(), tmpl, seg, false, 64, nil)
	require.Error(t, err)
}

func TestMineSegmentRespectsCancellation(t *testing.T) {
	tmpl := txplan.Template{Prefix: []byte("a"), Suffix: []byte("b"), NonceLen: 8}
	seg := nonce.Segment{Start: 0, Count: 1 << 40, Len: 8}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MineSegment(ctx, tmpl, seg, false, 64, nil)
	require.Error(t, err)
}

func TestMineParallelFindsMatch(t *testing.T) {
	prefix := []byte("template-prefix-bytes")
	suffix := []byte("template-suffix-bytes")
	nonceLen := 2

	winner, zeros := findTargetInRange(t, prefix, suffix, nonceLen)

	tmpl := txplan.Template{Prefix: prefix, Suffix: suffix, NonceLen: nonceLen}
	seg := nonce.Segment{Start: 0, Count: 1 << 16, Len: nonceLen}

	result, err := MineParallel(context.Background(), tmpl, seg, false, zeros, 4, nil)
	require.NoError(t, err)
	require.True(t, hash.MeetsTarget(result.Txid, zeros))
	_ = winner
}
