// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osprey-dcs/dp-jal-sub011/errs"
	"github.com/osprey-dcs/dp-jal-sub011/ingest/internal/convert"
	"github.com/osprey-dcs/dp-jal-sub011/ingest/internal/decompose"
	"github.com/osprey-dcs/dp-jal-sub011/internal/queue"
	"github.com/osprey-dcs/dp-jal-sub011/internal/stopper"
	"github.com/osprey-dcs/dp-jal-sub011/internal/telemetry"
	"github.com/osprey-dcs/dp-jal-sub011/table"
	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
	"github.com/osprey-dcs/dp-jal-sub011/transport"
)

// State is one of the Processor's four lifecycle states.
type State int

const (
	// Idle is the state before Activate; configuration may be set.
	Idle State = iota
	// Supplying accepts Submit calls and emits request messages.
	Supplying
	// Draining rejects Submit; Q_in and Q_dec finish emptying.
	Draining
	// Terminated means every worker has exited; Q_out may still hold
	// messages awaiting Poll/Take.
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Supplying:
		return "Supplying"
	case Draining:
		return "Draining"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Options configures a Processor. All fields may be changed only while
// the processor is Idle.
type Options struct {
	// ProviderUID is stamped on every emitted request.
	ProviderUID uint64
	// Concurrency is the number of decomposer and converter worker
	// tasks each. Concurrency <= 1 runs single-threaded: decomposition
	// and conversion happen synchronously inside Submit.
	Concurrency int
	// FrameDecomposition enables splitting frames whose AllocBytes
	// exceeds MaxFrameSize along the row axis.
	FrameDecomposition bool
	// MaxFrameSize is the split threshold in bytes; must be less than
	// the transport message-size cap when FrameDecomposition is set.
	MaxFrameSize int64
	// BackpressureCapacity bounds the output queue; <= 0 means
	// unbounded. Submit does not itself block on this bound in
	// multi-threaded mode (only converter workers do); in
	// single-threaded mode Submit blocks directly.
	BackpressureCapacity int
}

// Validate checks that Options describes a usable configuration.
func (o Options) Validate() error {
	if o.FrameDecomposition {
		if o.MaxFrameSize <= 0 {
			return errs.New(errs.Config, "ingest", "options", "maxFrameSize must be positive when frame decomposition is enabled")
		}
		if o.MaxFrameSize >= convert.TransportMessageCap {
			return errs.New(errs.Config, "ingest", "options", "maxFrameSize must be less than the transport message-size cap")
		}
	}
	if o.BackpressureCapacity < 0 {
		return errs.New(errs.Config, "ingest", "options", "backpressureCapacity must not be negative")
	}
	return nil
}

// subFrame is one decomposed, not-yet-converted piece of a Frame,
// carrying the attributes of the Frame it came from.
type subFrame struct {
	schedule   timeseries.Schedule
	columns    []table.Column
	attributes map[string]string
	rowOffset  int
}

// Processor orchestrates frame decomposition and conversion into
// request messages with a worker pool, input/output queues, and
// backpressure.
type Processor struct {
	mu    sync.Mutex
	state State
	opts  Options

	// stop is the cancelable handle every blocking queue operation below
	// is parked on; ShutdownNow cancels it once to abort all of them.
	stop *stopper.Context
	qIn  *queue.Queue[Frame]
	qDec *queue.Queue[subFrame]
	qOut *queue.Queue[*transport.IngestRequest]

	decGroup  *errgroup.Group
	convGroup *errgroup.Group

	pending  int64
	failures int64
}

// New constructs an Idle Processor with the given options.
func New(opts Options) (*Processor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Processor{opts: opts}, nil
}

// Activate transitions the processor from Idle to Supplying, starting
// its worker pool (if Concurrency > 1).
func (p *Processor) Activate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Idle {
		return errs.New(errs.State, "ingest", "activate", "processor is not idle")
	}

	p.stop = stopper.New(ctx)
	p.qIn = queue.New[Frame](0)
	p.qDec = queue.New[subFrame](0)
	outCap := 0
	if p.opts.BackpressureCapacity > 0 {
		outCap = p.opts.BackpressureCapacity
	}
	p.qOut = queue.New[*transport.IngestRequest](outCap)
	p.state = Supplying

	if p.opts.Concurrency <= 1 {
		return nil
	}
	p.decGroup, _ = errgroup.WithContext(p.stop)
	for i := 0; i < p.opts.Concurrency; i++ {
		p.decGroup.Go(p.decomposeWorker)
	}
	p.convGroup, _ = errgroup.WithContext(p.stop)
	for i := 0; i < p.opts.Concurrency; i++ {
		p.convGroup.Go(p.converterWorker)
	}
	return nil
}

// SetOptions replaces the processor's configuration. It fails with a
// State error unless the processor is Idle, per spec: "configuration
// mutation is forbidden while the processor is supplying" (generalized
// here to every state but Idle, since Draining/Terminated processors
// are not reusable).
func (p *Processor) SetOptions(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Idle {
		return errs.New(errs.State, "ingest", "setOptions", "options may only be changed while idle")
	}
	p.opts = opts
	return nil
}

// Submit enqueues one frame. It blocks if the processor is
// single-threaded and backpressure causes the output queue to be full;
// in multi-threaded mode it returns as soon as the frame is queued for
// decomposition.
func (p *Processor) Submit(frame Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	if p.state != Supplying {
		p.mu.Unlock()
		return errs.New(errs.State, "ingest", "submit", "processor is not supplying")
	}
	singleThreaded := p.opts.Concurrency <= 1
	p.mu.Unlock()

	telemetry.FramesSubmitted.Inc()
	if singleThreaded {
		return p.submitInline(frame)
	}
	return p.qIn.Push(p.stop, frame)
}

// SubmitAll enqueues frames atomically, in order: every frame is
// validated before any is queued, so a rejected batch leaves no frame
// partially submitted.
func (p *Processor) SubmitAll(frames []Frame) error {
	for _, f := range frames {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	p.mu.Lock()
	if p.state != Supplying {
		p.mu.Unlock()
		return errs.New(errs.State, "ingest", "submit", "processor is not supplying")
	}
	singleThreaded := p.opts.Concurrency <= 1
	p.mu.Unlock()

	for _, f := range frames {
		telemetry.FramesSubmitted.Inc()
		var err error
		if singleThreaded {
			err = p.submitInline(f)
		} else {
			err = p.qIn.Push(p.stop, f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// submitInline performs decomposition and conversion synchronously, the
// single-threaded mode. A transport-cap violation is returned to the
// caller immediately, since it indicates a configuration mistake rather
// than a per-piece data anomaly.
func (p *Processor) submitInline(frame Frame) error {
	pieces, err := decompose.Split(frame.Schedule, frame.Columns, p.opts.MaxFrameSize, p.opts.FrameDecomposition)
	if err != nil {
		p.recordFailure()
		return nil
	}
	for _, piece := range pieces {
		req, err := convert.ToRequest(p.opts.ProviderUID, piece.Schedule, piece.Columns, frame.Attributes, convert.TransportMessageCap)
		if err != nil {
			if errs.Is(err, errs.Config) {
				return err
			}
			p.recordFailure()
			continue
		}
		telemetry.RequestsEmitted.Inc()
		if err := p.qOut.Push(p.stop, req); err != nil {
			return err
		}
		telemetry.OutputQueueDepth.Set(float64(p.qOut.Len()))
	}
	return nil
}

// decomposeWorker drains qIn until it is closed and drained. It always
// returns nil; per-piece failures are recorded via recordFailure rather
// than propagated, since one bad frame should not fail the errgroup and
// cancel its siblings.
func (p *Processor) decomposeWorker() error {
	for {
		frame, ok, err := p.qIn.Pop(p.stop)
		if err != nil || !ok {
			return nil
		}
		atomic.AddInt64(&p.pending, 1)
		pieces, err := decompose.Split(frame.Schedule, frame.Columns, p.opts.MaxFrameSize, p.opts.FrameDecomposition)
		if err != nil {
			p.recordFailure()
			atomic.AddInt64(&p.pending, -1)
			continue
		}
		for _, piece := range pieces {
			sf := subFrame{
				schedule:   piece.Schedule,
				columns:    piece.Columns,
				attributes: frame.Attributes,
				rowOffset:  piece.RowOffset,
			}
			_ = p.qDec.Push(p.stop, sf)
		}
		atomic.AddInt64(&p.pending, -1)
	}
}

// converterWorker drains qDec until it is closed and drained, the same
// always-nil-return discipline as decomposeWorker.
func (p *Processor) converterWorker() error {
	for {
		sf, ok, err := p.qDec.Pop(p.stop)
		if err != nil || !ok {
			return nil
		}
		atomic.AddInt64(&p.pending, 1)
		req, err := convert.ToRequest(p.opts.ProviderUID, sf.schedule, sf.columns, sf.attributes, convert.TransportMessageCap)
		if err != nil {
			p.recordFailure()
			atomic.AddInt64(&p.pending, -1)
			continue
		}
		telemetry.RequestsEmitted.Inc()
		_ = p.qOut.Push(p.stop, req)
		telemetry.OutputQueueDepth.Set(float64(p.qOut.Len()))
		atomic.AddInt64(&p.pending, -1)
	}
}

func (p *Processor) recordFailure() {
	atomic.AddInt64(&p.failures, 1)
	telemetry.ProcessingFailures.Inc()
}

// Poll returns one request message immediately, or false if none is
// queued.
func (p *Processor) Poll() (*transport.IngestRequest, bool) {
	return p.qOut.TryPop()
}

// PollTimeout returns one request message, waiting up to timeout.
func (p *Processor) PollTimeout(timeout time.Duration) (*transport.IngestRequest, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	req, ok, err := p.qOut.Pop(ctx)
	if err != nil {
		return nil, false
	}
	return req, ok
}

// Take blocks until a request message is available, returning a State
// error if the processor has terminated with an empty output queue.
func (p *Processor) Take() (*transport.IngestRequest, error) {
	req, ok, err := p.qOut.Pop(p.stop)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.State, "ingest", "take", "processor has terminated with an empty output queue")
	}
	return req, nil
}

// IsSupplying reports whether the processor is Supplying, or Draining
// with a non-empty output queue still being delivered.
func (p *Processor) IsSupplying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Supplying {
		return true
	}
	return p.state == Draining && p.qOut.Len() > 0
}

// HasPendingTasks reports whether decomposition/conversion work is
// currently in progress.
func (p *Processor) HasPendingTasks() bool {
	return atomic.LoadInt64(&p.pending) > 0
}

// HasShutdown reports whether shutdown or shutdownNow has been called.
func (p *Processor) HasShutdown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == Draining || p.state == Terminated
}

// HasProcessingFailure reports whether any decomposition or conversion
// failure has been recorded.
func (p *Processor) HasProcessingFailure() bool {
	return atomic.LoadInt64(&p.failures) > 0
}

// FailureCount returns the number of recorded processing failures.
func (p *Processor) FailureCount() int64 {
	return atomic.LoadInt64(&p.failures)
}

// GetRequestQueueSize returns the current number of messages queued on
// the output queue.
func (p *Processor) GetRequestQueueSize() int {
	return p.qOut.Len()
}

// State returns the processor's current lifecycle state.
func (p *Processor) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Shutdown requests a soft stop: Submit is rejected immediately, and
// Shutdown returns once Q_in and Q_dec have drained. Q_out may still
// hold messages for Poll/Take to consume afterward.
func (p *Processor) Shutdown() error {
	p.mu.Lock()
	if p.state != Supplying {
		p.mu.Unlock()
		return errs.New(errs.State, "ingest", "shutdown", "processor is not supplying")
	}
	p.state = Draining
	singleThreaded := p.opts.Concurrency <= 1
	p.mu.Unlock()

	if !singleThreaded {
		p.qIn.Close()
		_ = p.decGroup.Wait()
		p.qDec.Close()
		_ = p.convGroup.Wait()
	}
	p.qOut.Close()

	p.mu.Lock()
	p.state = Terminated
	p.mu.Unlock()
	return nil
}

// ShutdownNow cancels every blocked operation immediately and abandons
// pending tasks; already-emitted messages remain available on Q_out.
func (p *Processor) ShutdownNow() error {
	p.mu.Lock()
	if p.state != Supplying && p.state != Draining {
		p.mu.Unlock()
		return errs.New(errs.State, "ingest", "shutdownNow", "processor is not active")
	}
	singleThreaded := p.opts.Concurrency <= 1
	p.state = Terminated
	p.mu.Unlock()

	if p.stop != nil {
		p.stop.Cancel()
	}
	if p.qIn != nil {
		p.qIn.Close()
	}
	if p.qDec != nil {
		p.qDec.Close()
	}
	if p.qOut != nil {
		p.qOut.Close()
	}
	if !singleThreaded {
		_ = p.decGroup.Wait()
		_ = p.convGroup.Wait()
	}
	return nil
}
