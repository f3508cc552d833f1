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

// Package stopper provides a small goroutine supervisor: a
// context.Context that additionally tracks a group of worker
// goroutines launched with Go, exposes a Stopping channel that is
// closed on a soft-stop request (before the context itself is
// canceled), and aggregates worker errors for Wait.
//
// The ingestion processor uses a Context as the cancelable handle its
// blocking queue operations are parked on, and as the single point
// ShutdownNow cancels to abort them immediately; its own worker pool is
// supervised with golang.org/x/sync/errgroup instead, the same as the
// query channel and the midstream correlator, so Go/Stopping/Wait below
// are exercised directly by this package's own tests rather than by
// another package's worker pool.
package stopper

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Context supervises a group of goroutines sharing a cancellation
// scope. It implements context.Context.
type Context struct {
	context.Context

	cancel context.CancelFunc

	stopOnce sync.Once
	stopCh   chan struct{}

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// New creates a Context deriving from parent.
func New(parent context.Context) *Context {
	ctx, cancel := context.WithCancel(parent)
	return &Context{
		Context: ctx,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}
}

// Go launches fn in its own goroutine, tracked by Wait. A non-nil
// return value is recorded and surfaced by Wait; it does not itself
// cancel the Context (callers that want fail-fast semantics should
// call Cancel from within fn).
func (c *Context) Go(fn func() error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := fn(); err != nil {
			c.mu.Lock()
			c.errs = append(c.errs, err)
			c.mu.Unlock()
		}
	}()
}

// Stopping returns a channel that is closed when Stop is called. Unlike
// Done, this fires on a soft-stop request, before any in-flight work is
// canceled, so that a worker can drain its current item and exit
// cleanly.
func (c *Context) Stopping() <-chan struct{} {
	return c.stopCh
}

// Stop requests a soft stop: Stopping's channel is closed, but the
// Context itself is not yet canceled. Idempotent.
func (c *Context) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Cancel immediately cancels the underlying context, aborting any
// worker blocked on a context-aware operation at its next suspension
// point. Also requests a soft stop.
func (c *Context) Cancel() {
	c.Stop()
	c.cancel()
}

// Wait blocks until every goroutine launched with Go has returned, then
// returns an aggregate of their errors (nil if none failed).
func (c *Context) Wait() error {
	c.wg.Wait()
	c.mu.Lock()
	defer c.mu.Unlock()
	switch len(c.errs) {
	case 0:
		return nil
	case 1:
		return c.errs[0]
	default:
		msgs := make([]string, len(c.errs))
		for i, e := range c.errs {
			msgs[i] = e.Error()
		}
		return errors.Errorf("%d worker errors: %v", len(c.errs), msgs)
	}
}
