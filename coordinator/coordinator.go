// Package coordinator orchestrates mining workers — CPU goroutines or a
// single GPU dispatch loop — across a nonce range, following the same
// quit-channel/WaitGroup/mutex lifecycle the teacher's chain.RPCClient uses
// to manage its own background goroutines.
package coordinator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zeldhash/miner/gpuminer"
	"github.com/zeldhash/miner/miner"
	"github.com/zeldhash/miner/minererr"
	"github.com/zeldhash/miner/nonce"
	"github.com/zeldhash/miner/txplan"
)

// State is one state in the coordinator's lifecycle.
type State int

const (
	Idle State = iota
	Spawning
	Running
	Paused
	Stopping
	Done
)

// Backend selects which hardware a Coordinator mines with. This is a
// sum-type tag switched on at dispatch time, not an interface table: the
// CPU and GPU code paths are different enough (stride-per-goroutine vs.
// one dispatch-loop-per-batch) that a shared interface would only paper
// over the difference.
type Backend int

const (
	BackendCPU Backend = iota
	BackendGPU
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	EventProgress EventKind = iota
	EventFallback
	EventFound
	EventExhausted
	EventError
)

// Event is a single notification emitted on the coordinator's event
// channel, following the enqueue/dequeue notification idiom of
// chain.RPCClient.
type Event struct {
	Kind     EventKind
	Progress miner.Progress
	Result   *miner.Result
	Err      error
}

// Config configures a single mining run.
type Config struct {
	Backend       Backend
	AllowFallback bool
	Workers       int
	BatchSize     uint64
	TargetZeros   uint8
	UseCBOR       bool
}

// Coordinator owns the worker lifecycle for one mining run. It is single
// use: create a new Coordinator per Mine call.
type Coordinator struct {
	cfg Config

	quitMtx sync.Mutex
	started bool
	quit    chan struct{}
	wg      sync.WaitGroup

	stateMtx sync.Mutex
	state    State

	pauseMu sync.Mutex
	paused  bool
	resumed chan struct{}

	events chan Event
}

// New returns a Coordinator ready to Run against tmpl/segment.
func New(cfg Config) *Coordinator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 1 << 16
	}
	return &Coordinator{
		cfg:     cfg,
		quit:    make(chan struct{}),
		resumed: make(chan struct{}),
		events:  make(chan Event, 64),
	}
}

// Pause halts worker progress after their current batch without tearing
// down the run; Resume continues it. Both are no-ops if called out of
// order (e.g. pausing an already-paused coordinator).
func (c *Coordinator) Pause() {
	c.pauseMu.Lock()
	defer c.pauseMu.Unlock()
	if c.paused {
		return
	}
	c.paused = true
	c.resumed = make(chan struct{})
	c.setState(Paused)
}

// Resume continues a paused run.
func (c *Coordinator) Resume() {
	c.pauseMu.Lock()
	defer c.pauseMu.Unlock()
	if !c.paused {
		return
	}
	c.paused = false
	close(c.resumed)
	c.setState(Running)
}

func (c *Coordinator) waitIfPaused(ctx context.Context) bool {
	c.pauseMu.Lock()
	paused := c.paused
	resumed := c.resumed
	c.pauseMu.Unlock()
	if !paused {
		return true
	}
	select {
	case <-resumed:
		return true
	case <-ctx.Done():
		return false
	case <-c.quit:
		return false
	}
}

// Events returns the channel on which this coordinator reports progress,
// fallback, completion and error notifications. Callers should drain it
// concurrently with Run.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

func (c *Coordinator) setState(s State) {
	c.stateMtx.Lock()
	c.state = s
	c.stateMtx.Unlock()
}

// State returns the coordinator's current lifecycle state.
func (c *Coordinator) State() State {
	c.stateMtx.Lock()
	defer c.stateMtx.Unlock()
	return c.state
}

// Run mines [rangeStart, rangeStart+rangeSpan) against tmpl using the
// backend configured in Config, returning the first match found or
// ErrNoMatchingNonce if the whole range is exhausted. It blocks until a
// match, exhaustion, cancellation, or Stop.
func (c *Coordinator) Run(ctx context.Context, tmpl txplan.Template, rangeStart, rangeSpan uint64) (*miner.Result, error) {
	c.quitMtx.Lock()
	if c.started {
		c.quitMtx.Unlock()
		return nil, minererr.New(minererr.ErrInvalidInput, "coordinator already running", nil)
	}
	c.started = true
	c.quitMtx.Unlock()

	c.setState(Spawning)
	defer c.setState(Done)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	backend := c.cfg.Backend
	if backend == BackendGPU {
		dispatcher, err := gpuminer.NewDispatcher()
		if err != nil {
			if !c.cfg.AllowFallback {
				return nil, err
			}
			c.emit(Event{Kind: EventFallback, Err: err})
			backend = BackendCPU
		} else {
			defer dispatcher.Close()
			c.setState(Running)
			return c.runGPU(runCtx, dispatcher, tmpl, rangeStart, rangeSpan)
		}
	}

	c.setState(Running)
	return c.runCPU(runCtx, tmpl, rangeStart, rangeSpan)
}

// Stop signals every worker to halt at the next opportunity.
func (c *Coordinator) Stop() {
	c.quitMtx.Lock()
	defer c.quitMtx.Unlock()
	if !c.started {
		return
	}
	c.setState(Stopping)
	select {
	case <-c.quit:
	default:
		close(c.quit)
	}
	c.wg.Wait()
}

func (c *Coordinator) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		// A full event channel means nobody is listening closely
		// enough to need a progress tick; drop rather than block the
		// mining loop.
	}
}

func (c *Coordinator) runCPU(ctx context.Context, tmpl txplan.Template, rangeStart, rangeSpan uint64) (*miner.Result, error) {
	workers := c.cfg.Workers
	batch := c.cfg.BatchSize
	stride := uint64(workers) * batch

	var found atomic.Bool
	var winner *miner.Result
	var winnerMu sync.Mutex

	progressCh := make(chan miner.Progress, 16)
	go func() {
		for p := range progressCh {
			c.emit(Event{Kind: EventProgress, Progress: p})
		}
	}()
	defer close(progressCh)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for w := 0; w < workers; w++ {
		w := w
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()

			for offset := uint64(w) * batch; offset < rangeSpan; offset += stride {
				if found.Load() {
					return
				}
				select {
				case <-c.quit:
					return
				case <-runCtx.Done():
					return
				default:
				}

				if !c.waitIfPaused(runCtx) {
					return
				}

				count := batch
				if offset+count > rangeSpan {
					count = rangeSpan - offset
				}
				if count == 0 {
					continue
				}

				seg := nonce.Segment{Start: rangeStart + offset, Count: count, Len: tmpl.NonceLen}
				res, err := miner.MineSegment(runCtx, tmpl, seg, c.cfg.UseCBOR, c.cfg.TargetZeros, progressCh)
				if err != nil {
					continue
				}
				if found.CompareAndSwap(false, true) {
					winnerMu.Lock()
					winner = res
					winnerMu.Unlock()
					cancel()
				}
				return
			}
		}()
	}

	c.wg.Wait()

	if winner != nil {
		c.emit(Event{Kind: EventFound, Result: winner})
		return winner, nil
	}

	select {
	case <-c.quit:
		return nil, minererr.New(minererr.ErrMiningAborted, "mining stopped before a match was found", nil)
	default:
	}

	if err := ctx.Err(); err != nil {
		return nil, minererr.New(minererr.ErrMiningAborted, "mining canceled before a match was found", err)
	}

	c.emit(Event{Kind: EventExhausted})
	return nil, minererr.New(minererr.ErrNoMatchingNonce, "exhausted nonce range without a match", nil)
}

func (c *Coordinator) runGPU(ctx context.Context, d *gpuminer.Dispatcher, tmpl txplan.Template, rangeStart, rangeSpan uint64) (*miner.Result, error) {
	batch := uint32(d.DefaultBatchSize())
	if c.cfg.BatchSize != 0 {
		batch = uint32(c.cfg.BatchSize)
	}

	c.wg.Add(1)
	defer c.wg.Done()

	for offset := uint64(0); offset < rangeSpan; offset += uint64(batch) {
		select {
		case <-c.quit:
			return nil, minererr.New(minererr.ErrMiningAborted, "mining stopped before a match was found", nil)
		case <-ctx.Done():
			return nil, minererr.New(minererr.ErrMiningAborted, "mining canceled before a match was found", ctx.Err())
		default:
		}

		remaining := rangeSpan - offset
		dispatchSize := uint64(batch)
		if dispatchSize > remaining {
			dispatchSize = remaining
		}

		matches, err := d.Dispatch(tmpl.Prefix, tmpl.Suffix, tmpl.NonceLen, rangeStart+offset, uint32(dispatchSize), c.cfg.TargetZeros)
		if err != nil {
			c.emit(Event{Kind: EventError, Err: err})
			return nil, err
		}

		if len(matches) > 0 {
			best := matches[0]
			for _, m := range matches[1:] {
				if m.Nonce < best.Nonce {
					best = m
				}
			}
			result := &miner.Result{Nonce: best.Nonce, Txid: best.Txid}
			c.emit(Event{Kind: EventFound, Result: result})
			return result, nil
		}
	}

	c.emit(Event{Kind: EventExhausted})
	return nil, minererr.New(minererr.ErrNoMatchingNonce, "exhausted nonce range without a match", nil)
}
