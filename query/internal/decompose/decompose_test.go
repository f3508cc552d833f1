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

	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window60s() timeseries.Interval {
	begin := timeseries.Unix(1704067200, 0)
	end := begin.Add(60 * time.Second)
	iv, _ := timeseries.NewInterval(begin, end)
	return iv
}

func TestHorizontalPartitionsSourcesExactlyOnce(t *testing.T) {
	sources := []string{"A", "B", "C", "D", "E"}
	reqs := Horizontal(sources, window60s(), 2)
	require.Len(t, reqs, 2)

	var union []string
	for _, r := range reqs {
		union = append(union, r.Sources...)
		assert.True(t, window60s().Begin.Equal(r.Window.Begin))
	}
	assert.ElementsMatch(t, sources, union)
}

func TestVerticalPartitionsWindowContiguously(t *testing.T) {
	w := window60s()
	reqs := Vertical([]string{"A"}, w, 4)
	require.Len(t, reqs, 4)

	assert.True(t, reqs[0].Window.Begin.Equal(w.Begin))
	assert.True(t, reqs[len(reqs)-1].Window.End.Equal(w.End))
	for i := 1; i < len(reqs); i++ {
		assert.True(t, reqs[i-1].Window.End.Equal(reqs[i].Window.Begin), "sub-intervals must be contiguous")
	}
}

func TestGridIsCartesianProduct(t *testing.T) {
	sources := []string{"A", "B", "C", "D"}
	reqs := Grid(sources, window60s(), 2, 3)
	assert.Len(t, reqs, 6)
}

func TestPartitionCountsNeverExceedSourceCount(t *testing.T) {
	reqs := Horizontal([]string{"A", "B"}, window60s(), 10)
	assert.Len(t, reqs, 2)
}
