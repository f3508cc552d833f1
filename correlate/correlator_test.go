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

package correlate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osprey-dcs/dp-jal-sub011/query/internal/buffer"
	"github.com/osprey-dcs/dp-jal-sub011/transport"
)

func TestCorrelatorRunSimpleCorrelation(t *testing.T) {
	c := New(Options{})
	sched := clock(0, 3, time.Second)
	c.Run([]transport.QueryDataFragment{
		{DataBuckets: []transport.SampleBucket{bucket(sched, "A", 3)}},
		{DataBuckets: []transport.SampleBucket{bucket(sched, "B", 3)}},
	})

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 2, snap[0].ColumnCount())
	assert.True(t, VerifyColumnSizes(snap))
	assert.True(t, VerifySourceUniqueness(snap))
	assert.True(t, VerifyTimeDomains(snap))
}

func TestCorrelatorRunRejectsSplitScheduleDuplicate(t *testing.T) {
	c := New(Options{})
	// Two distinct SamplingClock values describing the same instants
	// still fingerprint identically, so a duplicate source name across
	// them must be rejected exactly like a duplicate within one bucket.
	schedA := clock(0, 3, time.Second)
	schedB := clock(0, 3, time.Second)
	c.Run([]transport.QueryDataFragment{
		{DataBuckets: []transport.SampleBucket{bucket(schedA, "A", 3)}},
		{DataBuckets: []transport.SampleBucket{bucket(schedB, "A", 3)}},
	})

	snap := c.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 1, snap[0].ColumnCount())
	assert.EqualValues(t, 1, c.RejectedDuplicates())
}

func TestCorrelatorRunStreamingDeterministicRegardlessOfArrivalOrder(t *testing.T) {
	frags := []transport.QueryDataFragment{
		{DataBuckets: []transport.SampleBucket{bucket(clock(0, 3, time.Second), "A", 3)}},
		{DataBuckets: []transport.SampleBucket{bucket(clock(0, 3, time.Second), "B", 3)}},
		{DataBuckets: []transport.SampleBucket{bucket(clock(10, 2, time.Second), "C", 2)}},
		{DataBuckets: []transport.SampleBucket{bucket(clock(10, 2, time.Second), "D", 2)}},
	}

	run := func(order []int) []*Block {
		c := New(Options{Concurrency: 4})
		buf := buffer.New(0)
		buf.Activate()
		for _, i := range order {
			require.NoError(t, buf.Push(context.Background(), frags[i]))
		}
		buf.Shutdown()
		require.NoError(t, c.RunStreaming(context.Background(), buf))
		return c.Snapshot()
	}

	a := run([]int{0, 1, 2, 3})
	b := run([]int{3, 2, 1, 0})

	require.Len(t, a, 2)
	require.Len(t, b, 2)
	for i := range a {
		assert.Equal(t, a[i].ColumnCount(), b[i].ColumnCount())
		assert.Equal(t, a[i].sortedSourceNames(), b[i].sortedSourceNames())
		assert.True(t, Compare(a[i], b[i]) == 0)
	}
}

func TestCorrelatorResetThenRefeedIsEquivalent(t *testing.T) {
	sched := clock(0, 3, time.Second)
	frags := []transport.QueryDataFragment{
		{DataBuckets: []transport.SampleBucket{bucket(sched, "A", 3)}},
		{DataBuckets: []transport.SampleBucket{bucket(sched, "B", 3)}},
	}

	c := New(Options{})
	c.Run(frags)
	first := c.Snapshot()

	c.Reset()
	assert.Empty(t, c.Snapshot())

	c.Run(frags)
	second := c.Snapshot()

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ColumnCount(), second[0].ColumnCount())
	assert.Equal(t, first[0].sortedSourceNames(), second[0].sortedSourceNames())
}

func TestCorrelatorShardingDistributesAcrossWorkers(t *testing.T) {
	c := New(Options{Concurrency: 8})
	for i := 0; i < 50; i++ {
		sched := clock(int64(i), 1, time.Second)
		c.Run([]transport.QueryDataFragment{
			{DataBuckets: []transport.SampleBucket{bucket(sched, "S", 1)}},
		})
	}
	snap := c.Snapshot()
	require.Len(t, snap, 50)
	assert.True(t, VerifyOrdering(snap))

	populated := 0
	for _, s := range c.shards {
		if len(s.Snapshot()) > 0 {
			populated++
		}
	}
	assert.Greater(t, populated, 1)
}
