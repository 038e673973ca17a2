package hash

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDoubleMatchesTwoPassSHA256 confirms Double is exactly two chained
// SHA256 passes, the convention original_source/hash.rs documents.
func TestDoubleMatchesTwoPassSHA256(t *testing.T) {
	data := []byte("zeldhash mining template fixture")
	first := sha256.Sum256(data)
	want := sha256.Sum256(first[:])

	require.Equal(t, want, Double(data))
}

func TestCountLeadingZerosBoundaries(t *testing.T) {
	var allZero [32]byte
	require.Equal(t, uint8(64), CountLeadingZeros(allZero))

	// Display order reads digest[31] first. digest[31]=0x00, digest[30]=0x01
	// displays as "0001...", three leading zero hex digits followed by a '1'.
	var d [32]byte
	d[31] = 0x00
	d[30] = 0x01
	require.Equal(t, uint8(3), CountLeadingZeros(d))

	var none [32]byte
	none[31] = 0xff
	require.Equal(t, uint8(0), CountLeadingZeros(none))
}

func TestMeetsTarget(t *testing.T) {
	var d [32]byte
	d[31] = 0x00
	d[30] = 0x0f
	require.True(t, MeetsTarget(d, 1))
	require.False(t, MeetsTarget(d, 4))
}
