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
	"testing"
	"time"

	"github.com/osprey-dcs/dp-jal-sub011/errs"
	"github.com/osprey-dcs/dp-jal-sub011/table"
	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActiveProcessor(t *testing.T, opts Options) *Processor {
	t.Helper()
	p, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, p.Activate(context.Background()))
	return p
}

// Scenario 1: single frame, no decomposition.
func TestScenarioSingleFrameNoDecomposition(t *testing.T) {
	p := newActiveProcessor(t, Options{ProviderUID: 1, Concurrency: 1})

	values := make([]float64, 10)
	for i := range values {
		values[i] = float64(i)
	}
	clock := timeseries.SamplingClock{Start: timeseries.Unix(1704067200, 0), Count: 10, Period: time.Second}
	frame := Frame{
		Schedule: clock,
		Columns:  []table.Column{{Name: "pv1", Type: table.Float64, Values: values}},
	}
	require.NoError(t, p.Submit(frame))
	require.NoError(t, p.Shutdown())

	msg, err := p.Take()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), msg.ProviderUID)
	assert.True(t, clock.Equal(msg.DataTimestamps))
	require.Len(t, msg.DataColumns, 1)
	assert.Equal(t, values, msg.DataColumns[0].Values)

	_, err = p.Take()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.State))
}

// Scenario 2: decomposition by half.
func TestScenarioDecompositionByHalf(t *testing.T) {
	const n = 1000
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	clock := timeseries.SamplingClock{Start: timeseries.Unix(1704067200, 0), Count: n, Period: time.Second}
	frame := Frame{
		Schedule: clock,
		Columns:  []table.Column{{Name: "pv1", Type: table.Float64, Values: values}},
	}
	maxSize := frame.AllocBytes() / 8

	p := newActiveProcessor(t, Options{
		ProviderUID: 1, Concurrency: 1, FrameDecomposition: true, MaxFrameSize: maxSize,
	})
	require.NoError(t, p.Submit(frame))
	require.NoError(t, p.Shutdown())

	var reassembled []float64
	count := 0
	for {
		msg, err := p.Take()
		if err != nil {
			break
		}
		count++
		assert.LessOrEqual(t, msg.DataColumns[0].AllocBytes(), maxSize)
		reassembled = append(reassembled, msg.DataColumns[0].Values.([]float64)...)
	}
	assert.GreaterOrEqual(t, count, 2)
	assert.Equal(t, values, reassembled)
}

// Scenario 3: backpressure.
func TestScenarioBackpressure(t *testing.T) {
	p := newActiveProcessor(t, Options{ProviderUID: 1, Concurrency: 1, BackpressureCapacity: 2})

	clock := timeseries.SamplingClock{Start: timeseries.Unix(0, 0), Count: 1, Period: time.Second}
	frame := func() Frame {
		return Frame{Schedule: clock, Columns: []table.Column{{Name: "pv1", Type: table.Float64, Values: []float64{1}}}}
	}

	var wg sync.WaitGroup
	start := time.Now()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			require.NoError(t, p.Submit(frame()))
		}
	}()

	for i := 0; i < 5; i++ {
		time.Sleep(10 * time.Millisecond)
		_, err := p.Take()
		require.NoError(t, err)
	}
	wg.Wait()
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)

	require.NoError(t, p.Shutdown())
}

func TestEmptySubmitThenShutdownTerminatesWithZeroMessages(t *testing.T) {
	p := newActiveProcessor(t, Options{ProviderUID: 1, Concurrency: 1})
	require.NoError(t, p.SubmitAll(nil))
	require.NoError(t, p.Shutdown())
	_, err := p.Take()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.State))
}

func TestSingleRowFrameSurvivesDecomposition(t *testing.T) {
	clock := timeseries.SamplingClock{Start: timeseries.Unix(0, 0), Count: 1, Period: time.Second}
	frame := Frame{Schedule: clock, Columns: []table.Column{{Name: "pv1", Type: table.Float64, Values: []float64{42}}}}

	p := newActiveProcessor(t, Options{ProviderUID: 1, Concurrency: 1, FrameDecomposition: true, MaxFrameSize: 1})
	require.NoError(t, p.Submit(frame))
	require.NoError(t, p.Shutdown())

	msg, err := p.Take()
	require.NoError(t, err)
	assert.Equal(t, []float64{42}, msg.DataColumns[0].Values)
}

func TestSubmitRejectedOutsideSupplying(t *testing.T) {
	p, err := New(Options{ProviderUID: 1, Concurrency: 1})
	require.NoError(t, err)
	clock := timeseries.SamplingClock{Start: timeseries.Unix(0, 0), Count: 1, Period: time.Second}
	frame := Frame{Schedule: clock, Columns: []table.Column{{Name: "pv1", Type: table.Float64, Values: []float64{1}}}}

	err = p.Submit(frame)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.State))
}

func TestMultiThreadedOrderingWithinOneFrame(t *testing.T) {
	const n = 400
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	clock := timeseries.SamplingClock{Start: timeseries.Unix(0, 0), Count: n, Period: time.Millisecond}
	frame := Frame{Schedule: clock, Columns: []table.Column{{Name: "pv1", Type: table.Float64, Values: values}}}
	maxSize := frame.AllocBytes() / 16

	p := newActiveProcessor(t, Options{
		ProviderUID: 1, Concurrency: 4, FrameDecomposition: true, MaxFrameSize: maxSize,
	})
	require.NoError(t, p.Submit(frame))
	require.NoError(t, p.Shutdown())

	var reassembled []float64
	for {
		msg, err := p.Take()
		if err != nil {
			break
		}
		reassembled = append(reassembled, msg.DataColumns[0].Values.([]float64)...)
	}
	assert.Equal(t, values, reassembled)
}

func TestShutdownNowAbandonsPendingWork(t *testing.T) {
	p := newActiveProcessor(t, Options{ProviderUID: 1, Concurrency: 2})
	clock := timeseries.SamplingClock{Start: timeseries.Unix(0, 0), Count: 1, Period: time.Second}
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Submit(Frame{Schedule: clock, Columns: []table.Column{{Name: "pv1", Type: table.Float64, Values: []float64{float64(i)}}}}))
	}
	require.NoError(t, p.ShutdownNow())
	assert.True(t, p.HasShutdown())
}
