package gpuminer

// MaxResults is the fixed capacity of the GPU result buffer; the kernel
// stops recording matches past this many per dispatch, same as the
// SPIR-V compute kernel this package's OpenCL kernel is modeled on.
const MaxResults = 8

// Workgroup is the local work-group size the kernel is compiled and
// dispatched with.
const Workgroup = 256

// MiningParams mirrors the uniform PARAMS binding the kernel reads: the
// nonce range assigned to this dispatch, the mining target, and the fixed
// prefix/suffix/nonce lengths needed to reconstruct each thread's message.
type MiningParams struct {
	StartNonceLo uint32
	StartNonceHi uint32
	BatchSize    uint32
	TargetZeros  uint32
	PrefixLen    uint32
	SuffixLen    uint32
	NonceLen     uint32
	_pad         [5]uint32 // keeps the struct 16-byte aligned for uniform buffer rules
}

// ResultEntry mirrors one slot of the RESULTS binding's array: a winning
// nonce split into two 32-bit words (OpenCL has no portable 64-bit atomic
// guarantee across all device classes) plus the resulting digest's first
// 8 little-endian 32-bit words (32 bytes).
type ResultEntry struct {
	NonceLo uint32
	NonceHi uint32
	Txid    [8]uint32
	_pad    [2]uint32
}

// ResultBuffer mirrors the RESULTS binding as a whole: an atomically
// incremented found-count guarding a fixed-capacity array of ResultEntry.
type ResultBuffer struct {
	FoundCount uint32
	_pad       [3]uint32
	Results    [MaxResults]ResultEntry
}
