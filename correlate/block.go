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

// Package correlate implements the query data correlator: Block, the
// ordered Set of blocks, and the Correlator that consumes buffered
// fragments and builds the set of correlated blocks from them.
package correlate

import "github.com/osprey-dcs/dp-jal-sub011/table"
import "github.com/osprey-dcs/dp-jal-sub011/timeseries"

// Block is a correlated view over a single schedule: every column
// shares the schedule's sample count and no two columns share a name.
// Block implements table.DataTable.
type Block struct {
	schedule timeseries.Schedule
	columns  []table.Column
	names    map[string]int
}

var _ table.DataTable = (*Block)(nil)

// NewBlock seeds an empty Block for the given schedule.
func NewBlock(schedule timeseries.Schedule) *Block {
	return &Block{schedule: schedule, names: make(map[string]int)}
}

// ColumnCount implements table.DataTable.
func (b *Block) ColumnCount() int { return len(b.columns) }

// ColumnAt implements table.DataTable.
func (b *Block) ColumnAt(i int) table.Column { return b.columns[i] }

// Timestamps implements table.DataTable.
func (b *Block) Timestamps() timeseries.Schedule { return b.schedule }

// Domain returns the schedule's closed time domain.
func (b *Block) Domain() timeseries.Interval { return b.schedule.Domain() }

// insert appends col if its name is not already present, reporting
// false (an I2 violation) otherwise. Not safe for concurrent use; the
// Set holding the Block serializes access.
func (b *Block) insert(col table.Column) bool {
	if _, dup := b.names[col.Name]; dup {
		return false
	}
	b.names[col.Name] = len(b.columns)
	b.columns = append(b.columns, col)
	return true
}

// sortedSourceNames returns the block's column names in ascending
// order, used by Compare's tie-break.
func (b *Block) sortedSourceNames() []string {
	names := make([]string, len(b.columns))
	for i, c := range b.columns {
		names[i] = c.Name
	}
	insertionSort(names)
	return names
}

// insertionSort sorts small string slices in place. Block column counts
// are typically small (tens to low hundreds of sources), so this avoids
// pulling in sort.Strings' interface-dispatch overhead for a hot path
// exercised once per block per snapshot.
func insertionSort(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Compare orders two Blocks ascending by start instant; ties are
// broken by sample count, then by the full lexicographically-ordered
// list of source names (see DESIGN.md for why the full list rather
// than just the minimum name is used as the final tie-break).
func Compare(a, b *Block) int {
	if c := a.schedule.Domain().Begin.Compare(b.schedule.Domain().Begin); c != 0 {
		return c
	}
	if a.schedule.SampleCount() != b.schedule.SampleCount() {
		if a.schedule.SampleCount() < b.schedule.SampleCount() {
			return -1
		}
		return 1
	}
	return compareStringSlices(a.sortedSourceNames(), b.sortedSourceNames())
}

func compareStringSlices(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
