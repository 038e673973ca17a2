// Package miner implements the CPU mining loop: iterating a nonce segment
// against a fixed transaction template, double-hashing each candidate
// without reallocating the concatenated buffer, and reporting progress at a
// steady cadence.
package miner

import (
	"context"
	"crypto/sha256"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lightningnetwork/lnd/ticker"

	"github.com/zeldhash/miner/hash"
	"github.com/zeldhash/miner/minererr"
	"github.com/zeldhash/miner/nonce"
	"github.com/zeldhash/miner/txplan"
)

// ProgressInterval is the cadence at which Progress events are emitted
// during a mining run, satisfying the ≥10Hz requirement this module's
// callers (the coordinator, and any UI layered on top of it) depend on.
const ProgressInterval = 80 * time.Millisecond

// Progress reports cumulative hash-rate statistics for an in-flight
// mining run.
type Progress struct {
	AttemptsHi uint64
	AttemptsLo uint64
	Elapsed    time.Duration
}

// Result is a successful match: the winning nonce and the resulting txid,
// plus the total attempt count it took to find it.
type Result struct {
	Nonce      uint64
	Txid       [32]byte
	AttemptsHi uint64
	AttemptsLo uint64
}

// Attempts returns the total attempt count as an arbitrary-precision
// integer, combining the two uint64 words kept separate on the hot path.
func (r Result) Attempts() *big.Int {
	hi := new(big.Int).SetUint64(r.AttemptsHi)
	hi.Lsh(hi, 64)
	return hi.Add(hi, new(big.Int).SetUint64(r.AttemptsLo))
}

func addAttempt(hi, lo *uint64) {
	if *lo == ^uint64(0) {
		*hi++
	}
	*lo++
}

// MineSegment sequentially tries every nonce in segment against tmpl,
// returning the first value whose txid meets targetZeros leading hex zero
// digits. progress, if non-nil, receives a Progress event roughly every
// ProgressInterval.
func MineSegment(
	ctx context.Context,
	tmpl txplan.Template,
	segment nonce.Segment,
	useCBOR bool,
	targetZeros uint8,
	progress chan<- Progress,
) (*Result, error) {
	t := ticker.New(ProgressInterval)
	t.Resume()
	defer t.Stop()

	h := sha256.New()
	start := time.Now()

	var attemptsHi, attemptsLo uint64

	for n := segment.Start; n < segment.Start+segment.Count; n++ {
		select {
		case <-ctx.Done():
			return nil, minererr.New(minererr.ErrMiningAborted, "mining canceled before a match was found", ctx.Err())
		case <-t.Ticks():
			if progress != nil {
				progress <- Progress{AttemptsHi: attemptsHi, AttemptsLo: attemptsLo, Elapsed: time.Since(start)}
			}
		default:
		}

		nonceBytes := encodeInto(n, segment.Len, useCBOR)

		h.Reset()
		h.Write(tmpl.Prefix)
		h.Write(nonceBytes)
		h.Write(tmpl.Suffix)
		first := h.Sum(nil)
		digest := sha256.Sum256(first)

		addAttempt(&attemptsHi, &attemptsLo)

		if hash.MeetsTarget(digest, targetZeros) {
			return &Result{
				Nonce:      n,
				Txid:       digest,
				AttemptsHi: attemptsHi,
				AttemptsLo: attemptsLo,
			}, nil
		}
	}

	return nil, minererr.New(minererr.ErrNoMatchingNonce, "exhausted nonce segment without a match", nil)
}

func encodeInto(n uint64, wantLen int, useCBOR bool) []byte {
	if useCBOR {
		return nonce.EncodeCBOR(n)
	}
	b := nonce.EncodeRaw(n)
	if len(b) == wantLen {
		return b
	}
	// Padded to the segment's fixed width when a caller requests a raw
	// encoding wider than the minimal one (only relevant at segment
	// boundaries shared with a template sized for the segment's class).
	out := make([]byte, wantLen)
	copy(out[wantLen-len(b):], b)
	return out
}

// MineParallel splits segment into workers contiguous, non-overlapping
// sub-segments and races them, returning the first match found. Once any
// worker finds a match, the others are signaled to stop via ctx
// cancellation of their derived contexts.
func MineParallel(
	ctx context.Context,
	tmpl txplan.Template,
	segment nonce.Segment,
	useCBOR bool,
	targetZeros uint8,
	workers int,
	progress chan<- Progress,
) (*Result, error) {
	if workers < 1 {
		workers = 1
	}
	if uint64(workers) > segment.Count {
		workers = int(segment.Count)
	}

	sub := splitEvenly(segment, workers)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winner  *Result
		found   atomic.Bool
		firstFn func(error)
		lastErr error
	)
	firstFn = func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if lastErr == nil {
			lastErr = err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, s := range sub {
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := MineSegment(runCtx, tmpl, s, useCBOR, targetZeros, progress)
			if err != nil {
				if found.Load() {
					return
				}
				firstFn(err)
				return
			}
			if found.CompareAndSwap(false, true) {
				mu.Lock()
				winner = res
				mu.Unlock()
				cancel()
			}
		}()
	}

	wg.Wait()

	if winner != nil {
		return winner, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, minererr.New(minererr.ErrNoMatchingNonce, "exhausted nonce segment without a match", nil)
}

func splitEvenly(segment nonce.Segment, workers int) []nonce.Segment {
	out := make([]nonce.Segment, 0, workers)
	base := segment.Count / uint64(workers)
	rem := segment.Count % uint64(workers)

	cur := segment.Start
	for i := 0; i < workers; i++ {
		count := base
		if uint64(i) < rem {
			count++
		}
		if count == 0 {
			continue
		}
		out = append(out, nonce.Segment{Start: cur, Count: count, Len: segment.Len})
		cur += count
	}
	return out
}
