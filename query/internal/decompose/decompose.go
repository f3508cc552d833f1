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

// Package decompose partitions a logical (source set, time interval)
// request into a composite list of sub-requests that covers the
// original domain exactly once: horizontally by source set, vertically
// by time interval, or as the grid (cartesian product) of both.
package decompose

import (
	"time"

	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
	"github.com/osprey-dcs/dp-jal-sub011/transport"
)

// Horizontal partitions sources into up to n disjoint, contiguous
// subsets, pairing each with the full window unchanged.
func Horizontal(sources []string, window timeseries.Interval, n int) []transport.QueryRequest {
	parts := partitionSources(sources, n)
	out := make([]transport.QueryRequest, 0, len(parts))
	for _, s := range parts {
		out = append(out, transport.QueryRequest{Sources: s, Window: window})
	}
	return out
}

// Vertical partitions window into up to n contiguous, non-overlapping
// sub-intervals, pairing each with the full source set unchanged.
func Vertical(sources []string, window timeseries.Interval, n int) []transport.QueryRequest {
	parts := partitionInterval(window, n)
	out := make([]transport.QueryRequest, 0, len(parts))
	for _, iv := range parts {
		out = append(out, transport.QueryRequest{Sources: sources, Window: iv})
	}
	return out
}

// Grid is the cartesian product of a horizontal partition into hCount
// source subsets and a vertical partition into vCount sub-intervals.
func Grid(sources []string, window timeseries.Interval, hCount, vCount int) []transport.QueryRequest {
	sourceParts := partitionSources(sources, hCount)
	windowParts := partitionInterval(window, vCount)
	out := make([]transport.QueryRequest, 0, len(sourceParts)*len(windowParts))
	for _, s := range sourceParts {
		for _, iv := range windowParts {
			out = append(out, transport.QueryRequest{Sources: s, Window: iv})
		}
	}
	return out
}

// partitionSources splits sources into min(n, len(sources)) contiguous,
// non-empty, disjoint subsets whose union is sources.
func partitionSources(sources []string, n int) [][]string {
	if n <= 0 {
		n = 1
	}
	if n > len(sources) {
		n = len(sources)
	}
	if n == 0 {
		return nil
	}
	out := make([][]string, n)
	base, rem := len(sources)/n, len(sources)%n
	idx := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		out[i] = append([]string(nil), sources[idx:idx+size]...)
		idx += size
	}
	return out
}

// partitionInterval splits window into n contiguous sub-intervals whose
// union is window and which do not overlap except at shared boundary
// instants.
func partitionInterval(window timeseries.Interval, n int) []timeseries.Interval {
	if n <= 0 {
		n = 1
	}
	step := window.Duration() / time.Duration(n)
	out := make([]timeseries.Interval, n)
	cur := window.Begin
	for i := 0; i < n; i++ {
		end := cur.Add(step)
		if i == n-1 {
			end = window.End
		}
		out[i] = timeseries.Interval{Begin: cur, End: end}
		cur = end
	}
	return out
}
