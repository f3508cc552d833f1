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

// Package table contains the opaque typed-sequence view the core
// consumes and emits columns and correlated tables as: Column and the
// minimal DataTable capability set, plus free helper functions derived
// from it.
package table

// ElementType enumerates the wire-level element types a Column may
// hold.
type ElementType int

// The supported element types.
const (
	Unsupported ElementType = iota
	Boolean
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	String
	Timestamp
	Bytes
	Array
	Structure
	Image
)

// byteCost is the per-element allocation estimate used by AllocBytes.
// Variable-length types (String, Bytes, Array, Structure, Image) use a
// conservative flat estimate since their true cost depends on content
// the core does not introspect.
var byteCost = map[ElementType]int{
	Unsupported: 0,
	Boolean:     1,
	Int8:        1,
	Int16:       2,
	Int32:       4,
	Int64:       8,
	Uint8:       1,
	Uint16:      2,
	Uint32:      4,
	Uint64:      8,
	Float32:     4,
	Float64:     8,
	String:      32,
	Timestamp:   12,
	Bytes:       32,
	Array:       64,
	Structure:   64,
	Image:       256,
}

// Column is a named, typed, ordered sequence of values. Values is
// homogeneous in Type; the core treats it as an opaque typed sequence
// and never inspects individual elements.
type Column struct {
	Name   string
	Type   ElementType
	Values any // a slice of the Go type corresponding to Type
}

// Len returns the number of values in the column, using reflection-free
// type switches over the concrete slice kinds the core produces.
func (c Column) Len() int {
	return sliceLen(c.Values)
}

// AllocBytes estimates the column's allocation footprint as
// len(values) * per-type byte cost.
func (c Column) AllocBytes() int64 {
	return int64(c.Len()) * int64(byteCost[c.Type])
}

// Slice returns a new Column holding values[offset:offset+count],
// preserving Name and Type.
func (c Column) Slice(offset, count int) Column {
	return Column{Name: c.Name, Type: c.Type, Values: sliceSlice(c.Values, offset, count)}
}

func sliceLen(v any) int {
	switch vv := v.(type) {
	case []bool:
		return len(vv)
	case []int8:
		return len(vv)
	case []int16:
		return len(vv)
	case []int32:
		return len(vv)
	case []int64:
		return len(vv)
	case []uint8:
		return len(vv)
	case []uint16:
		return len(vv)
	case []uint32:
		return len(vv)
	case []uint64:
		return len(vv)
	case []float32:
		return len(vv)
	case []float64:
		return len(vv)
	case []string:
		return len(vv)
	case [][]byte:
		return len(vv)
	case []any:
		return len(vv)
	default:
		return 0
	}
}

func sliceSlice(v any, offset, count int) any {
	switch vv := v.(type) {
	case []bool:
		return append([]bool(nil), vv[offset:offset+count]...)
	case []int8:
		return append([]int8(nil), vv[offset:offset+count]...)
	case []int16:
		return append([]int16(nil), vv[offset:offset+count]...)
	case []int32:
		return append([]int32(nil), vv[offset:offset+count]...)
	case []int64:
		return append([]int64(nil), vv[offset:offset+count]...)
	case []uint8:
		return append([]uint8(nil), vv[offset:offset+count]...)
	case []uint16:
		return append([]uint16(nil), vv[offset:offset+count]...)
	case []uint32:
		return append([]uint32(nil), vv[offset:offset+count]...)
	case []uint64:
		return append([]uint64(nil), vv[offset:offset+count]...)
	case []float32:
		return append([]float32(nil), vv[offset:offset+count]...)
	case []float64:
		return append([]float64(nil), vv[offset:offset+count]...)
	case []string:
		return append([]string(nil), vv[offset:offset+count]...)
	case [][]byte:
		return append([][]byte(nil), vv[offset:offset+count]...)
	case []any:
		return append([]any(nil), vv[offset:offset+count]...)
	default:
		return nil
	}
}
