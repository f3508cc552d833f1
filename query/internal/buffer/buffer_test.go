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

package buffer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/osprey-dcs/dp-jal-sub011/errs"
	"github.com/osprey-dcs/dp-jal-sub011/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushBeforeActivateFails(t *testing.T) {
	b := New(0)
	err := b.Push(context.Background(), transport.QueryDataFragment{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.State))
}

func TestConcurrentProducersSingleConsumer(t *testing.T) {
	b := New(0)
	b.Activate()

	const producers, perProducer = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				require.NoError(t, b.Push(context.Background(), transport.QueryDataFragment{}))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, producers*perProducer, b.Len())

	count := 0
	for {
		_, ok, err := b.Take(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
		if count == producers*perProducer {
			b.Shutdown()
		}
	}
	assert.Equal(t, producers*perProducer, count)
}

func TestWaitActiveBlocksUntilActivated(t *testing.T) {
	b := New(0)

	done := make(chan error, 1)
	go func() {
		done <- b.WaitActive(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("WaitActive returned before Activate was called")
	case <-time.After(20 * time.Millisecond):
	}

	b.Activate()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitActive did not return after Activate")
	}
}

func TestWaitActiveRespectsContextCancellation(t *testing.T) {
	b := New(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.WaitActive(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestShutdownDrainsThenReturnsFalse(t *testing.T) {
	b := New(0)
	b.Activate()
	require.NoError(t, b.Push(context.Background(), transport.QueryDataFragment{}))
	b.Shutdown()

	_, ok, err := b.Take(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = b.Take(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
