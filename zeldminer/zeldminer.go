package zeldminer

import (
	"context"
	"sync"

	"github.com/zeldhash/miner/coordinator"
	"github.com/zeldhash/miner/minererr"
	"github.com/zeldhash/miner/nonce"
	"github.com/zeldhash/miner/psbtbuild"
	"github.com/zeldhash/miner/txplan"
)

// Config configures an Orchestrator for its lifetime: backend preference
// and worker/batch sizing that apply to every Mine call.
type Config struct {
	Backend       coordinator.Backend
	AllowFallback bool
	Workers       int
	BatchSize     uint64
}

// Request describes one mining job: the transaction to vary, the encoding
// to use, the target difficulty, and the nonce range to search.
type Request struct {
	Inputs       []txplan.Input
	Outputs      []txplan.Output
	FeeRate      int64
	Distribution *txplan.ZeldDistribution
	UseCBOR      bool
	TargetZeros  uint8
	RangeStart   uint64
	RangeSpan    uint64
}

// Outcome is the result of a successful Mine call: the winning nonce, the
// resulting txid, and the assembled unsigned PSBT ready for signing
// elsewhere.
type Outcome struct {
	Nonce uint64
	Txid  [32]byte
	PSBT  string
}

// Orchestrator is the single entry point this module exposes. It is safe
// for reuse across calls but only one Mine call may be in flight at a
// time, the same single-flight guard wallet.Wallet uses for its own
// rescan entry point.
type Orchestrator struct {
	cfg Config

	mu      sync.Mutex
	running bool
}

// New returns an Orchestrator configured with cfg. Workers and BatchSize
// are validated synchronously, before any worker spawns, the same way
// worker_threads/batch_size/sats_per_vbyte are required positive at
// construction or per call.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Workers <= 0 {
		return nil, minererr.New(minererr.ErrInvalidInput, "worker count must be positive", nil)
	}
	if cfg.BatchSize == 0 {
		return nil, minererr.New(minererr.ErrInvalidInput, "batch size must be positive", nil)
	}
	return &Orchestrator{cfg: cfg}, nil
}

// Mine validates req, plans the transaction, mines the requested nonce
// range, and returns the winning outcome.
func (o *Orchestrator) Mine(ctx context.Context, req Request) (*Outcome, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, minererr.New(minererr.ErrInvalidInput, "a mining run is already in progress on this orchestrator", nil)
	}
	o.running = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// A ZELD distribution payload is a CBOR array, so its trailing nonce
	// element is always CBOR-encoded.
	useCBOR := req.UseCBOR || req.Distribution != nil

	nonceLen, err := txplan.NonceLenForRange(req.RangeStart, req.RangeSpan, useCBOR)
	if err != nil {
		return nil, err
	}

	plan, err := txplan.PlanTransaction(req.Inputs, req.Outputs, txplan.PlanOptions{
		FeeRate:         req.FeeRate,
		Distribution:    req.Distribution,
		MaxNonceByteLen: nonceLen,
		UseCBOR:         useCBOR,
	})
	if err != nil {
		return nil, err
	}

	tmpl, err := txplan.BuildTemplate(plan, nonceLen)
	if err != nil {
		return nil, err
	}

	coord := coordinator.New(coordinator.Config{
		Backend:       o.cfg.Backend,
		AllowFallback: o.cfg.AllowFallback,
		Workers:       o.cfg.Workers,
		BatchSize:     o.cfg.BatchSize,
		TargetZeros:   req.TargetZeros,
		UseCBOR:       useCBOR,
	})

	result, err := coord.Run(ctx, tmpl, req.RangeStart, req.RangeSpan)
	if err != nil {
		return nil, err
	}

	var nonceBytes []byte
	if useCBOR {
		nonceBytes = nonce.EncodeCBOR(result.Nonce)
	} else {
		nonceBytes = nonce.EncodeRaw(result.Nonce)
		if len(nonceBytes) < nonceLen {
			padded := make([]byte, nonceLen)
			copy(padded[nonceLen-len(nonceBytes):], nonceBytes)
			nonceBytes = padded
		}
	}

	b64, txid, err := psbtbuild.Build(plan, nonceBytes)
	if err != nil {
		return nil, err
	}

	return &Outcome{Nonce: result.Nonce, Txid: [32]byte(txid), PSBT: b64}, nil
}

func validateRequest(req Request) error {
	if req.TargetZeros < 1 || req.TargetZeros > 32 {
		return minererr.New(minererr.ErrInvalidInput, "target zeros must be between 1 and 32", nil)
	}
	if req.RangeSpan == 0 {
		return minererr.New(minererr.ErrInvalidInput, "nonce range span must be nonzero", nil)
	}
	if len(req.Inputs) == 0 {
		return minererr.New(minererr.ErrInvalidInput, "at least one input is required", nil)
	}
	if req.FeeRate <= 0 {
		return minererr.New(minererr.ErrInvalidInput, "sats-per-vbyte fee rate must be positive", nil)
	}
	return nil
}
