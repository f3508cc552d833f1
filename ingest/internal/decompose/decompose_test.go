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

package decompose

import (
	"testing"
	"time"

	"github.com/osprey-dcs/dp-jal-sub011/table"
	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clockColumns(count int) (timeseries.Schedule, []table.Column) {
	values := make([]float64, count)
	for i := range values {
		values[i] = float64(i)
	}
	sched := timeseries.SamplingClock{
		Start:  timeseries.Unix(1704067200, 0),
		Count:  count,
		Period: time.Second,
	}
	return sched, []table.Column{{Name: "pv1", Type: table.Float64, Values: values}}
}

func TestSplitDisabledReturnsSinglePiece(t *testing.T) {
	sched, cols := clockColumns(1000)
	pieces, err := Split(sched, cols, 10, false)
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	assert.Equal(t, 1000, pieces[0].Schedule.SampleCount())
}

func TestSplitFittingFrameReturnsSinglePiece(t *testing.T) {
	sched, cols := clockColumns(10)
	pieces, err := Split(sched, cols, 1<<20, true)
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	assert.Equal(t, 0, pieces[0].RowOffset)
}

func TestSplitByHalfReproducesValuesInRowOrder(t *testing.T) {
	const n = 1000
	sched, cols := clockColumns(n)
	maxBytes := AllocBytes(cols) / 8

	pieces, err := Split(sched, cols, maxBytes, true)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(pieces), 2)

	var reassembled []float64
	for i, p := range pieces {
		assert.LessOrEqual(t, AllocBytes(p.Columns), maxBytes)
		col := p.Columns[0]
		reassembled = append(reassembled, col.Values.([]float64)...)
		if i > 0 {
			prevEnd := pieces[i-1].RowOffset + pieces[i-1].Schedule.SampleCount()
			assert.Equal(t, prevEnd, p.RowOffset, "pieces must be contiguous")
		}
	}
	want := make([]float64, n)
	for i := range want {
		want[i] = float64(i)
	}
	assert.Equal(t, want, reassembled)
}

func TestSplitSingleRowFrameStopsRecursion(t *testing.T) {
	sched, cols := clockColumns(1)
	pieces, err := Split(sched, cols, 0, true)
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	assert.Equal(t, 1, pieces[0].Schedule.SampleCount())
}

func TestSplitClocksAreContiguous(t *testing.T) {
	const n = 64
	sched, cols := clockColumns(n)
	maxBytes := AllocBytes(cols) / 16

	pieces, err := Split(sched, cols, maxBytes, true)
	require.NoError(t, err)

	start0 := sched.At(0)
	offset := 0
	for _, p := range pieces {
		want := start0.Add(time.Duration(offset) * time.Second)
		assert.True(t, want.Equal(p.Schedule.At(0)))
		offset += p.Schedule.SampleCount()
	}
	assert.Equal(t, n, offset)
}
