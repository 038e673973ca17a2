package txplan

import "github.com/zeldhash/miner/address"

// Witness weight estimates, in vbytes-equivalent units, for a single
// signed input of each supported type. These stand in for the worst-case
// sigScript/witness sizes txsizes.go computes for legacy inputs, adapted to
// the two witness-only types this module ever spends.
const (
	P2WPKHWitnessTypical = 108
	P2TRWitnessTypical   = 66
)

// Dust limits, in satoshis, below which an output of the given type is
// non-standard and must be folded into the fee instead of paid out as
// change.
const (
	DustP2WPKH  = 310
	DustP2TR    = 330
	DustDefault = 546
)

// DustLimitForAddress returns the dust limit appropriate to addr's type.
func DustLimitForAddress(addr address.Parsed) int64 {
	switch addr.Type {
	case address.P2WPKH:
		return DustP2WPKH
	case address.P2TR:
		return DustP2TR
	default:
		return DustDefault
	}
}

func witnessWeightForType(t address.Type) int {
	switch t {
	case address.P2TR:
		return P2TRWitnessTypical
	default:
		return P2WPKHWitnessTypical
	}
}

// MarkerFlagWeight is the weight, in vbytes-equivalent units, of the
// SegWit marker and flag bytes (0x00 0x01) that a transaction serializes
// once, immediately after the version field, whenever it spends at least
// one witness input.
const MarkerFlagWeight = 2

// TotalWitnessWeight sums each input's typical witness weight plus, when
// inputs is non-empty, the transaction-wide marker/flag weight — every
// input this module plans spends a witness program, so any non-empty set
// of inputs is segwit.
func TotalWitnessWeight(inputs []Input) int {
	if len(inputs) == 0 {
		return 0
	}
	total := MarkerFlagWeight
	for _, in := range inputs {
		total += witnessWeightForType(in.AddrType)
	}
	return total
}

// CalculateVsize returns ceil((baseSize*4 + witnessSize) / 4), Bitcoin's
// standard virtual-size weight formula.
func CalculateVsize(baseSize, witnessSize int) int {
	weight := baseSize*4 + witnessSize
	return (weight + 3) / 4
}

// CalculateFee returns vsize * feeRatePerVByte, truncating towards zero the
// way a per-vbyte multiplication naturally does; this module never performs
// fee-rate estimation, only this direct multiplication.
func CalculateFee(vsize int, feeRatePerVByte int64) int64 {
	return int64(vsize) * feeRatePerVByte
}
