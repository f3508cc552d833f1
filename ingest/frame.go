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

// Package ingest implements the ingestion frame pipeline: Frame, the
// Processor that decomposes and converts frames into wire requests
// under backpressure, and the providers that wire a Processor up.
package ingest

import (
	"github.com/osprey-dcs/dp-jal-sub011/errs"
	"github.com/osprey-dcs/dp-jal-sub011/table"
	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
)

// Frame is a client-authored tabular unit submitted to a Processor. The
// client must not mutate a Frame after Submit; the processor may
// decompose or otherwise consume it.
type Frame struct {
	// Label optionally names the frame for diagnostics.
	Label string
	// HasLabel reports whether Label was set.
	HasLabel bool
	// Timestamp optionally stamps the frame's creation instant.
	Timestamp timeseries.Instant
	// HasTimestamp reports whether Timestamp was set.
	HasTimestamp bool
	// Attributes is a snapshot of string attributes carried onto every
	// request message derived from this frame.
	Attributes map[string]string
	// Schedule is the frame's timing axis: a SamplingClock or a
	// TimestampList, never both.
	Schedule timeseries.Schedule
	// Columns holds the frame's data columns, all sharing
	// Schedule.SampleCount() as their length.
	Columns []table.Column
}

// Validate checks that a schedule is present, every column's length
// equals the schedule's sample count, and column names are unique
// within the frame.
func (f Frame) Validate() error {
	if f.Schedule == nil {
		return errs.New(errs.Input, "ingest", "validate", "frame has no timestamp schedule")
	}
	want := f.Schedule.SampleCount()
	seen := make(map[string]struct{}, len(f.Columns))
	for _, c := range f.Columns {
		if c.Len() != want {
			return errs.New(errs.Input, "ingest", "validate",
				"column "+c.Name+" size does not match schedule sample count")
		}
		if _, dup := seen[c.Name]; dup {
			return errs.New(errs.Input, "ingest", "validate",
				"duplicate column name "+c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// AllocBytes estimates the frame's total allocation footprint as the
// sum of its columns' AllocBytes.
func (f Frame) AllocBytes() int64 {
	var total int64
	for _, c := range f.Columns {
		total += c.AllocBytes()
	}
	return total
}

// RowCount returns the frame's sample count, i.e. Schedule.SampleCount().
func (f Frame) RowCount() int {
	if f.Schedule == nil {
		return 0
	}
	return f.Schedule.SampleCount()
}
