package gpuminer

import "github.com/zeldhash/miner/hash"

// ReferenceDouble reproduces, in pure Go, exactly the message assembly and
// double-hash the kernel performs per thread: concatenate prefix, the
// fixed-width nonce encoding, and suffix, then double-SHA256 the result.
// Used to verify GPU/CPU digest equivalence (scenario this module's
// mining protocol depends on) without requiring an OpenCL device.
func ReferenceDouble(prefix, nonceBytes, suffix []byte) [32]byte {
	msg := make([]byte, 0, len(prefix)+len(nonceBytes)+len(suffix))
	msg = append(msg, prefix...)
	msg = append(msg, nonceBytes...)
	msg = append(msg, suffix...)
	return hash.Double(msg)
}
