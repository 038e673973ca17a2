package address

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeldhash/miner/minererr"
)

func TestParseP2WPKHMainnet(t *testing.T) {
	// bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4 is the BIP-173 test
	// vector for a mainnet P2WPKH address.
	p, err := Parse("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	require.NoError(t, err)
	require.Equal(t, Mainnet, p.Network)
	require.Equal(t, P2WPKH, p.Type)
	require.Len(t, p.Program, 20)

	script, err := ScriptPubKey(p)
	require.NoError(t, err)
	require.Equal(t, byte(0x00), script[0])
	require.Equal(t, byte(20), script[1])
}

func TestParseP2TRMainnet(t *testing.T) {
	// bc1p... BIP-350 test vector for a mainnet P2TR address.
	p, err := Parse("bc1p5d7rjq7g6rdk2yhzks9smlaqtedr4dekq08ge8ztwac72sfr9rusxg3297")
	require.NoError(t, err)
	require.Equal(t, Mainnet, p.Network)
	require.Equal(t, P2TR, p.Type)
	require.Len(t, p.Program, 32)
}

func TestParseInvalidAddress(t *testing.T) {
	_, err := Parse("not-a-real-address")
	require.Error(t, err)

	var merr *minererr.Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, minererr.ErrInvalidAddress, merr.Code)
}

func TestParseForNetworkMismatch(t *testing.T) {
	_, err := ParseForNetwork("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", Testnet)
	require.Error(t, err)

	var merr *minererr.Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, minererr.ErrNetworkMismatch, merr.Code)
}
