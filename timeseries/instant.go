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

// Package timeseries holds the time-domain primitives shared by the
// ingestion and query pipelines: instants, intervals, and the two
// sampling schedules (uniform clock and explicit timestamp list).
package timeseries

import (
	"time"
)

// Instant is a point in time with second and nanosecond components. It
// is comparable and intended to round-trip bytewise over the wire.
type Instant struct {
	Sec   int64
	Nanos int32
}

// Unix constructs an Instant from a Unix timestamp.
func Unix(sec int64, nanos int32) Instant {
	return Instant{Sec: sec, Nanos: nanos}.normalize()
}

// FromTime constructs an Instant from a standard library time.Time.
func FromTime(t time.Time) Instant {
	return Instant{Sec: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time converts the Instant back to a standard library time.Time (UTC).
func (i Instant) Time() time.Time {
	return time.Unix(i.Sec, int64(i.Nanos)).UTC()
}

func (i Instant) normalize() Instant {
	const billion = int32(1e9)
	for i.Nanos >= billion {
		i.Nanos -= billion
		i.Sec++
	}
	for i.Nanos < 0 {
		i.Nanos += billion
		i.Sec--
	}
	return i
}

// Compare returns -1, 0, or 1 as i is before, equal to, or after o.
func (i Instant) Compare(o Instant) int {
	switch {
	case i.Sec < o.Sec:
		return -1
	case i.Sec > o.Sec:
		return 1
	case i.Nanos < o.Nanos:
		return -1
	case i.Nanos > o.Nanos:
		return 1
	default:
		return 0
	}
}

// Before reports whether i is strictly before o.
func (i Instant) Before(o Instant) bool { return i.Compare(o) < 0 }

// After reports whether i is strictly after o.
func (i Instant) After(o Instant) bool { return i.Compare(o) > 0 }

// Equal reports whether i and o represent the same instant.
func (i Instant) Equal(o Instant) bool { return i.Compare(o) == 0 }

// Add returns the Instant offset by d, normalizing nanosecond overflow.
func (i Instant) Add(d time.Duration) Instant {
	sec := i.Sec + int64(d/time.Second)
	nanos := i.Nanos + int32(d%time.Second)
	return Instant{Sec: sec, Nanos: nanos}.normalize()
}

// Sub returns the duration between i and o (i - o).
func (i Instant) Sub(o Instant) time.Duration {
	return time.Duration(i.Sec-o.Sec)*time.Second + time.Duration(i.Nanos-o.Nanos)
}
