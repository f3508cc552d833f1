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

// Package decompose splits a schedule plus column set into size-bounded
// pieces along the row axis, recursively halving until every piece's
// estimated allocation fits under the caller's limit. It operates on
// primitive (schedule, columns) pairs rather than ingest.Frame directly
// so that it can be imported by the ingest package without a cycle.
package decompose

import (
	"github.com/osprey-dcs/dp-jal-sub011/table"
	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
)

// Piece is one row-range slice of a larger schedule/column set. RowOffset
// is the piece's starting row within the original, retained for
// debugging.
type Piece struct {
	Schedule  timeseries.Schedule
	Columns   []table.Column
	RowOffset int
}

// Split decomposes (schedule, columns) into one or more Pieces. If
// enabled is false or the whole allocation already fits under maxBytes,
// a single Piece covering every row is returned. Otherwise the row
// range is halved recursively until each half fits, or until a half
// covers a single row (which is always returned as-is: no further
// split is possible).
func Split(schedule timeseries.Schedule, columns []table.Column, maxBytes int64, enabled bool) ([]Piece, error) {
	if !enabled || AllocBytes(columns) <= maxBytes {
		return []Piece{{Schedule: schedule, Columns: columns, RowOffset: 0}}, nil
	}
	return splitRange(schedule, columns, 0, schedule.SampleCount(), maxBytes)
}

func splitRange(
	schedule timeseries.Schedule, columns []table.Column, offset, count int, maxBytes int64,
) ([]Piece, error) {
	sliced := sliceColumns(columns, offset, count)
	if count <= 1 || AllocBytes(sliced) <= maxBytes {
		sub, err := timeseries.SliceSchedule(schedule, offset, count)
		if err != nil {
			return nil, err
		}
		return []Piece{{Schedule: sub, Columns: sliced, RowOffset: offset}}, nil
	}

	half := count / 2
	left, err := splitRange(schedule, columns, offset, half, maxBytes)
	if err != nil {
		return nil, err
	}
	right, err := splitRange(schedule, columns, offset+half, count-half, maxBytes)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}

// AllocBytes sums the per-column allocation estimate across columns.
func AllocBytes(columns []table.Column) int64 {
	var total int64
	for _, c := range columns {
		total += c.AllocBytes()
	}
	return total
}

func sliceColumns(columns []table.Column, offset, count int) []table.Column {
	out := make([]table.Column, len(columns))
	for i, c := range columns {
		out[i] = c.Slice(offset, count)
	}
	return out
}
