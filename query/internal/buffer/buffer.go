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

// Package buffer is the shared message buffer the query
// channel's parallel streams push fragments into and the correlator
// drains: many concurrent producers, one or more consumers, with an
// activate/drain/shutdown lifecycle signaled through notify.Var so a
// consumer can wait for activation instead of polling.
package buffer

import (
	"context"

	"github.com/osprey-dcs/dp-jal-sub011/errs"
	"github.com/osprey-dcs/dp-jal-sub011/internal/notify"
	"github.com/osprey-dcs/dp-jal-sub011/internal/queue"
	"github.com/osprey-dcs/dp-jal-sub011/transport"
)

// Buffer is a bounded or unbounded FIFO of query data fragments.
type Buffer struct {
	active *notify.Var[bool]
	q      *queue.Queue[transport.QueryDataFragment]
}

// New constructs a Buffer with the given capacity (0 = unbounded), not
// yet active.
func New(capacity int) *Buffer {
	return &Buffer{
		active: notify.NewVar(false),
		q:      queue.New[transport.QueryDataFragment](capacity),
	}
}

// Activate marks the buffer ready to accept Push calls, waking any
// consumer blocked in WaitActive.
func (b *Buffer) Activate() {
	b.active.Set(true)
}

// WaitActive blocks until Activate has been called, or ctx is done.
// Lets a consumer that starts before the producer side is ready block
// on the transition instead of polling.
func (b *Buffer) WaitActive(ctx context.Context) error {
	for {
		active, ch := b.active.Get()
		if active {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Push inserts a fragment, blocking if the buffer is bounded and full.
// Concurrent callers (the query channel's parallel streams) are safe;
// within a single caller's sequence of calls, order is preserved.
func (b *Buffer) Push(ctx context.Context, frag transport.QueryDataFragment) error {
	active, _ := b.active.Get()
	if !active {
		return errs.New(errs.State, "buffer", "push", "buffer is not active")
	}
	return b.q.Push(ctx, frag)
}

// Take blocks until a fragment is available, or returns ok=false once
// the buffer has been shut down and drained.
func (b *Buffer) Take(ctx context.Context) (transport.QueryDataFragment, bool, error) {
	return b.q.Pop(ctx)
}

// TryTake returns a fragment without blocking, reporting false if none
// is currently queued.
func (b *Buffer) TryTake() (transport.QueryDataFragment, bool) {
	return b.q.TryPop()
}

// Shutdown stops accepting new fragments and lets outstanding Take
// calls drain whatever remains before returning ok=false.
func (b *Buffer) Shutdown() {
	b.active.Set(false)
	b.q.Close()
}

// Len returns the number of fragments currently buffered.
func (b *Buffer) Len() int {
	return b.q.Len()
}
