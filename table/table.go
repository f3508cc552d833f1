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

package table

import "github.com/osprey-dcs/dp-jal-sub011/timeseries"

// DataTable is the minimal capability set a correlated view must
// implement; everything else (column lookup by name, allocation
// estimate) is derived from it by the free functions below. Column
// ordering is implementation-chosen but must be stable within a table.
type DataTable interface {
	ColumnCount() int
	ColumnAt(i int) Column
	Timestamps() timeseries.Schedule
}

// ColumnByName returns the column with the given name and true, or the
// zero Column and false if no such column exists. Table implementations
// are not required to support O(1) lookup; this is a linear scan over
// the minimal capability set.
func ColumnByName(t DataTable, name string) (Column, bool) {
	for i := 0; i < t.ColumnCount(); i++ {
		if c := t.ColumnAt(i); c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the names of every column in t, in table order.
func ColumnNames(t DataTable) []string {
	names := make([]string, t.ColumnCount())
	for i := range names {
		names[i] = t.ColumnAt(i).Name
	}
	return names
}

// AllocBytes estimates the table's total allocation footprint: the sum
// of each column's AllocBytes.
func AllocBytes(t DataTable) int64 {
	var total int64
	for i := 0; i < t.ColumnCount(); i++ {
		total += t.ColumnAt(i).AllocBytes()
	}
	return total
}

// Static is a simple slice-backed DataTable implementation.
type Static struct {
	Schedule timeseries.Schedule
	Columns  []Column
}

var _ DataTable = Static{}

// ColumnCount implements DataTable.
func (s Static) ColumnCount() int { return len(s.Columns) }

// ColumnAt implements DataTable.
func (s Static) ColumnAt(i int) Column { return s.Columns[i] }

// Timestamps implements DataTable.
func (s Static) Timestamps() timeseries.Schedule { return s.Schedule }
