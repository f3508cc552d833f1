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

// Package query implements the query recovery driver: Channel
// decomposes a logical request, dispatches sub-requests in parallel
// over gRPC streams, and concentrates the fragments it receives into a
// shared Buffer for the correlator to consume.
package query

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/osprey-dcs/dp-jal-sub011/errs"
	"github.com/osprey-dcs/dp-jal-sub011/internal/telemetry"
	"github.com/osprey-dcs/dp-jal-sub011/query/internal/buffer"
	"github.com/osprey-dcs/dp-jal-sub011/query/internal/decompose"
	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
	"github.com/osprey-dcs/dp-jal-sub011/transport"
)

// StreamType selects the gRPC stream shape a sub-request is recovered
// over.
type StreamType int

const (
	// Forward is client-to-server unary-streamed.
	Forward StreamType = iota
	// Backward is server-to-client streamed.
	Backward
	// Bidirectional carries flow-control acknowledgements back to the
	// server after each fragment.
	Bidirectional
)

// Strategy selects how a logical request is decomposed into
// sub-requests.
type Strategy int

const (
	// None submits the request unsplit, on a single stream.
	None Strategy = iota
	// Horizontal partitions the source set.
	Horizontal
	// Vertical partitions the time interval.
	Vertical
	// Grid is the cartesian product of both.
	Grid
)

// Options configures a Channel.
type Options struct {
	StreamType                 StreamType
	StreamCount                int
	DecompositionStrategy      Strategy
	HorizontalPartitions       int
	VerticalPartitions         int
	MultiStreamDomainThreshold time.Duration
	FailFast                   bool
}

// Validate checks that Options describes a usable configuration.
func (o Options) Validate() error {
	if o.DecompositionStrategy == Horizontal && o.HorizontalPartitions <= 0 {
		return errs.New(errs.Config, "query", "options", "horizontalPartitions must be positive for horizontal decomposition")
	}
	if o.DecompositionStrategy == Vertical && o.VerticalPartitions <= 0 {
		return errs.New(errs.Config, "query", "options", "verticalPartitions must be positive for vertical decomposition")
	}
	if o.DecompositionStrategy == Grid && (o.HorizontalPartitions <= 0 || o.VerticalPartitions <= 0) {
		return errs.New(errs.Config, "query", "options", "horizontalPartitions and verticalPartitions must both be positive for grid decomposition")
	}
	if o.MultiStreamDomainThreshold < 0 {
		return errs.New(errs.Config, "query", "options", "multiStreamDomainThreshold must not be negative")
	}
	return nil
}

// Channel is the multi-stream gRPC data recovery driver.
type Channel struct {
	opts Options
}

// New constructs a Channel. StreamCount <= 0 is treated as 1.
func New(opts Options) *Channel {
	if opts.StreamCount <= 0 {
		opts.StreamCount = 1
	}
	return &Channel{opts: opts}
}

// Recover decomposes (sources, window) per the configured strategy,
// dispatches each sub-request in parallel (bounded by StreamCount) over
// conn, and pushes every recovered fragment onto buf. It returns the
// number of fragments recovered and, if any sub-request failed, a
// TransportError wrapping the first failure; sibling streams are left
// running unless FailFast is set.
func (c *Channel) Recover(
	ctx context.Context, conn transport.QueryConnection, sources []string, window timeseries.Interval, buf *buffer.Buffer,
) (int64, error) {
	subs := c.decomposeRequest(sources, window)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.StreamCount)

	var recovered int64
	var firstErr atomic.Value // stores error

	for _, sub := range subs {
		sub := sub
		workerCtx := ctx
		if c.opts.FailFast {
			workerCtx = gctx
		}
		g.Go(func() error {
			n, err := c.recoverOne(workerCtx, conn, sub, buf)
			atomic.AddInt64(&recovered, n)
			if err != nil {
				telemetry.StreamErrors.Inc()
				firstErr.CompareAndSwap(nil, err)
				if c.opts.FailFast {
					return err
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if v := firstErr.Load(); v != nil {
		return recovered, errs.Wrap(errs.Transport, "query", "recover", "one or more sub-request streams failed", v.(error))
	}
	return recovered, nil
}

func (c *Channel) decomposeRequest(sources []string, window timeseries.Interval) []transport.QueryRequest {
	if c.opts.MultiStreamDomainThreshold > 0 && window.Duration() < c.opts.MultiStreamDomainThreshold {
		return []transport.QueryRequest{{Sources: sources, Window: window}}
	}
	switch c.opts.DecompositionStrategy {
	case Horizontal:
		return decompose.Horizontal(sources, window, c.opts.HorizontalPartitions)
	case Vertical:
		return decompose.Vertical(sources, window, c.opts.VerticalPartitions)
	case Grid:
		return decompose.Grid(sources, window, c.opts.HorizontalPartitions, c.opts.VerticalPartitions)
	default:
		return []transport.QueryRequest{{Sources: sources, Window: window}}
	}
}

func (c *Channel) recoverOne(
	ctx context.Context, conn transport.QueryConnection, sub transport.QueryRequest, buf *buffer.Buffer,
) (int64, error) {
	switch c.opts.StreamType {
	case Forward:
		return c.recoverForward(ctx, conn, sub, buf)
	case Bidirectional:
		return c.recoverBidirectional(ctx, conn, sub, buf)
	default:
		return c.recoverBackward(ctx, conn, sub, buf)
	}
}

func (c *Channel) recoverForward(
	ctx context.Context, conn transport.QueryConnection, sub transport.QueryRequest, buf *buffer.Buffer,
) (int64, error) {
	frag, err := conn.UnaryQuery(ctx, &sub)
	if err != nil {
		return 0, wrapTransportErr(err)
	}
	if err := buf.Push(ctx, *frag); err != nil {
		return 0, err
	}
	telemetry.FragmentsRecovered.Inc()
	return 1, nil
}

func (c *Channel) recoverBackward(
	ctx context.Context, conn transport.QueryConnection, sub transport.QueryRequest, buf *buffer.Buffer,
) (int64, error) {
	stream, err := conn.ServerStreamQuery(ctx, &sub)
	if err != nil {
		return 0, wrapTransportErr(err)
	}
	defer stream.CloseSend()

	var n int64
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, wrapTransportErr(err)
		}
		if err := buf.Push(ctx, *frag); err != nil {
			return n, err
		}
		n++
		telemetry.FragmentsRecovered.Inc()
	}
}

func (c *Channel) recoverBidirectional(
	ctx context.Context, conn transport.QueryConnection, sub transport.QueryRequest, buf *buffer.Buffer,
) (int64, error) {
	stream, err := conn.BidiQuery(ctx, &sub)
	if err != nil {
		return 0, wrapTransportErr(err)
	}
	defer stream.CloseSend()

	var n int64
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, wrapTransportErr(err)
		}
		if err := buf.Push(ctx, *frag); err != nil {
			return n, err
		}
		n++
		telemetry.FragmentsRecovered.Inc()
		if err := stream.Send(&transport.QueryAck{FragmentsConsumed: n}); err != nil {
			return n, wrapTransportErr(err)
		}
	}
}

// wrapTransportErr classifies a connection-capability error via its
// gRPC status code (if any) into a TransportError.
func wrapTransportErr(err error) error {
	return errs.Wrap(errs.Transport, "query", "recover", status.Code(err).String(), err)
}

// IsCanceled reports whether err represents a gRPC-level cancellation,
// used by callers deciding whether a recovery failure was a deliberate
// shutdown rather than an anomaly.
func IsCanceled(err error) bool {
	return status.Code(err) == codes.Canceled
}
