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

// Package queue provides a generic many-producer, one-or-more-consumer
// FIFO with an optional bound on depth. It backs the ingestion
// processor's input/decomposition/output queues and the query
// pipeline's message buffer, so every many-producers-one-consumer
// contention point goes through the same blocking/closing semantics.
package queue

import (
	"container/list"
	"context"
	"sync"

	"github.com/osprey-dcs/dp-jal-sub011/errs"
)

// Queue is a FIFO of values of type T. A zero capacity means unbounded;
// a positive capacity causes Push to block once Len reaches it.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    *list.List
	capacity int
	closed   bool
}

// New constructs a Queue with the given capacity (0 = unbounded).
func New[T any](capacity int) *Queue[T] {
	q := &Queue[T]{items: list.New(), capacity: capacity}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Push appends value to the queue, blocking while the queue is at
// capacity. It returns an Interrupted error if ctx is canceled while
// waiting, or a State error if the queue has been closed.
func (q *Queue[T]) Push(ctx context.Context, value T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.capacity > 0 && q.items.Len() >= q.capacity && !q.closed {
		if done, err := waitOrCancel(ctx, &q.mu, q.notFull); done {
			return err
		}
	}
	if q.closed {
		return errs.New(errs.State, "queue", "push", "queue is closed")
	}
	q.items.PushBack(value)
	q.notEmpty.Signal()
	return nil
}

// TryPush appends value without blocking, reporting false if the queue
// is at capacity or closed.
func (q *Queue[T]) TryPush(value T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || (q.capacity > 0 && q.items.Len() >= q.capacity) {
		return false
	}
	q.items.PushBack(value)
	q.notEmpty.Signal()
	return true
}

// Pop blocks until a value is available or the queue is closed and
// drained, in which case it returns the zero value and false. It
// returns an Interrupted error if ctx is canceled while waiting.
func (q *Queue[T]) Pop(ctx context.Context) (T, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	for q.items.Len() == 0 && !q.closed {
		if done, err := waitOrCancel(ctx, &q.mu, q.notEmpty); done {
			return zero, false, err
		}
	}
	if q.items.Len() == 0 {
		return zero, false, nil
	}
	return q.popFront(), true, nil
}

// TryPop returns the front value without blocking, reporting false if
// the queue is currently empty.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if q.items.Len() == 0 {
		return zero, false
	}
	return q.popFront(), true
}

func (q *Queue[T]) popFront() T {
	front := q.items.Front()
	q.items.Remove(front)
	q.notFull.Signal()
	return front.Value.(T)
}

// Close marks the queue closed: pending and future Pop calls drain
// whatever remains and then return false instead of blocking forever,
// and Push returns a State error.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Len returns the current number of queued values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// waitOrCancel waits on cond, but also wakes when ctx is done. sync.Cond
// has no native context support, so a watcher goroutine broadcasts the
// condition when ctx finishes; done is true if the caller should return
// immediately (ctx canceled), in which case err is non-nil.
func waitOrCancel(ctx context.Context, mu *sync.Mutex, cond *sync.Cond) (done bool, err error) {
	if ctx.Done() == nil {
		cond.Wait()
		return false, nil
	}
	select {
	case <-ctx.Done():
		return true, errs.Wrap(errs.Interrupted, "queue", "wait", "context canceled", ctx.Err())
	default:
	}
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			mu.Lock()
			cond.Broadcast()
			mu.Unlock()
		case <-stop:
		}
	}()
	cond.Wait()
	close(stop)
	select {
	case <-ctx.Done():
		return true, errs.Wrap(errs.Interrupted, "queue", "wait", "context canceled", ctx.Err())
	default:
		return false, nil
	}
}
