package txplan

import (
	"github.com/zeldhash/miner/address"
	"github.com/zeldhash/miner/minererr"
	"github.com/zeldhash/miner/nonce"
)

// NoChangeOutput is the ChangeIndex value reported when the planner
// absorbed the change amount into the fee instead of paying it out.
const NoChangeOutput = -1

// Plan is a fully validated, fee-calculated transaction template: every
// output value is final except for the OP_RETURN's nonce bytes, which the
// miner substitutes per attempt.
type Plan struct {
	Inputs       []Input
	Outputs      []Output // in order, non-change and (if present) change
	ChangeIndex  int      // index into Outputs of the change output, or NoChangeOutput
	FeeRate      int64
	Distribution *ZeldDistribution

	Vsize int
	Fee   int64
}

// CollectOutputs validates that outputs contains exactly one change output
// and returns its index.
func CollectOutputs(outputs []Output) (changeIndex int, err error) {
	changeIndex = -1
	for i, o := range outputs {
		if o.IsChange {
			if changeIndex != -1 {
				return -1, minererr.New(
					minererr.ErrMultipleChangeOutputs,
					"more than one output marked as change",
					nil,
				)
			}
			changeIndex = i
		}
	}
	if changeIndex == -1 {
		return -1, minererr.New(
			minererr.ErrInvalidInput,
			"exactly one output must be marked as change",
			nil,
		)
	}
	return changeIndex, nil
}

// PlanOptions holds everything PlanTransaction needs beyond the raw
// inputs/outputs: the encoding mode and an upper-bound nonce byte length
// used for fee estimation before the exact mining segment is known.
type PlanOptions struct {
	FeeRate          int64
	Distribution     *ZeldDistribution
	MaxNonceByteLen  int // conservative nonce width used to size the OP_RETURN for fee planning
	UseCBOR          bool
}

// PlanTransaction validates outputs, sizes the OP_RETURN for the requested
// encoding, computes vsize and fee, and resolves the change output's
// value. If the resolved change would be dust, the change output is
// dropped and its value is folded into the fee instead (ChangeIndex comes
// back as NoChangeOutput); the plan only fails with ErrInsufficientFunds
// if the inputs cannot cover the outputs and fee even after that fold.
func PlanTransaction(inputs []Input, outputs []Output, opts PlanOptions) (*Plan, error) {
	changeIndex, err := CollectOutputs(outputs)
	if err != nil {
		return nil, err
	}

	if opts.Distribution != nil && len(opts.Distribution.Shares) != len(outputs)-1 {
		return nil, minererr.New(
			minererr.ErrInvalidInput,
			"distribution share count must equal the number of non-change outputs",
			nil,
		)
	}

	for i, o := range outputs {
		if i == changeIndex {
			continue
		}
		if o.Value < DustLimitForAddress(o.Addr) {
			return nil, minererr.New(minererr.ErrDustOutput, "a non-change output is below its dust limit", nil)
		}
	}

	opReturnLen := estimateOpReturnPayloadLen(opts)
	witnessSize := TotalWitnessWeight(inputs)

	var inSum, outSum int64
	for _, in := range inputs {
		inSum += in.Value
	}
	for i, o := range outputs {
		if i == changeIndex {
			continue
		}
		outSum += o.Value
	}

	baseSize := baseTxSize(inputs, outputs, opReturnLen)
	vsize := CalculateVsize(baseSize, witnessSize)
	fee := CalculateFee(vsize, opts.FeeRate)

	change := inSum - outSum - fee

	if change < DustLimitForAddress(outputs[changeIndex].Addr) {
		withoutChange := make([]Output, 0, len(outputs)-1)
		for i, o := range outputs {
			if i != changeIndex {
				withoutChange = append(withoutChange, o)
			}
		}

		baseSizeNoChange := baseTxSize(inputs, withoutChange, opReturnLen)
		vsizeNoChange := CalculateVsize(baseSizeNoChange, witnessSize)
		feeNoChange := CalculateFee(vsizeNoChange, opts.FeeRate)

		remainder := inSum - outSum
		if remainder < feeNoChange {
			return nil, minererr.New(minererr.ErrInsufficientFunds, "inputs do not cover outputs plus fee after absorbing dust change", nil)
		}

		return &Plan{
			Inputs:       inputs,
			Outputs:      withoutChange,
			ChangeIndex:  NoChangeOutput,
			FeeRate:      opts.FeeRate,
			Distribution: opts.Distribution,
			Vsize:        vsizeNoChange,
			Fee:          remainder,
		}, nil
	}

	resolved := make([]Output, len(outputs))
	copy(resolved, outputs)
	resolved[changeIndex].Value = change

	return &Plan{
		Inputs:       inputs,
		Outputs:      resolved,
		ChangeIndex:  changeIndex,
		FeeRate:      opts.FeeRate,
		Distribution: opts.Distribution,
		Vsize:        vsize,
		Fee:          fee,
	}, nil
}

func estimateOpReturnPayloadLen(opts PlanOptions) int {
	if opts.Distribution != nil {
		return ZeldDistributionPayloadLength(opts.Distribution.Shares, opts.MaxNonceByteLen)
	}
	return opts.MaxNonceByteLen
}

func baseTxSize(inputs []Input, outputs []Output, opReturnPayloadLen int) int {
	size := 4 // version
	size += varIntLen(uint64(len(inputs)))
	size += len(inputs) * inputCoreSize

	size += varIntLen(uint64(len(outputs) + 1)) // +1 for OP_RETURN
	for _, o := range outputs {
		script, _ := address.ScriptPubKey(o.Addr)
		size += 8 + varIntLen(uint64(len(script))) + len(script)
	}

	opReturnScriptLen := 1 + pushDataPrefixLen(opReturnPayloadLen) + opReturnPayloadLen
	size += 8 + varIntLen(uint64(opReturnScriptLen)) + opReturnScriptLen

	size += 4 // locktime
	return size
}

// NonceLenForRange returns the encoding byte length shared by every value
// in [start, start+span-1], or an error if the range crosses a length-class
// boundary.
func NonceLenForRange(start, span uint64, useCBOR bool) (int, error) {
	segs, err := nonce.SplitSegments(start, span, useCBOR)
	if err != nil {
		return 0, err
	}
	if len(segs) != 1 {
		return 0, minererr.New(
			minererr.ErrInvalidInput,
			"nonce range crosses an encoding length-class boundary",
			nil,
		)
	}
	return segs[0].Len, nil
}
