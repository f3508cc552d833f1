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

package timeseries

import (
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
)

// Fingerprint identifies a Schedule's wire representation for grouping
// purposes: schedule equality is bytewise on the wire form. Two
// schedules with the same Fingerprint are required to be Equal, and
// vice versa.
type Fingerprint [sha256.Size]byte

// Schedule is the timing axis of a bucket or frame: either a
// SamplingClock or a TimestampList, never both.
type Schedule interface {
	// IsUniform reports whether the schedule is a SamplingClock.
	IsUniform() bool
	// SampleCount returns the number of timestamps in the schedule.
	SampleCount() int
	// Domain returns the closed interval [first, last] implied by the
	// schedule. Panics if SampleCount() == 0.
	Domain() Interval
	// At returns the i'th timestamp, 0 <= i < SampleCount().
	At(i int) Instant
	// Fingerprint returns a content hash of the schedule's wire bytes.
	Fingerprint() Fingerprint
	// Equal reports bytewise equality against another Schedule.
	Equal(Schedule) bool
}

// SamplingClock is a uniform timestamp schedule: t_i = Start + i*Period
// for i in [0, Count).
type SamplingClock struct {
	Start  Instant
	Count  int
	Period time.Duration
}

var _ Schedule = SamplingClock{}

// IsUniform implements Schedule.
func (c SamplingClock) IsUniform() bool { return true }

// SampleCount implements Schedule.
func (c SamplingClock) SampleCount() int { return c.Count }

// Domain implements Schedule.
func (c SamplingClock) Domain() Interval {
	if c.Count == 0 {
		panic("timeseries: Domain of an empty SamplingClock is undefined")
	}
	return Interval{Begin: c.Start, End: c.At(c.Count - 1)}
}

// At implements Schedule.
func (c SamplingClock) At(i int) Instant {
	if i < 0 || i >= c.Count {
		panic("timeseries: SamplingClock.At index out of range")
	}
	return c.Start.Add(time.Duration(i) * c.Period)
}

// Fingerprint implements Schedule.
func (c SamplingClock) Fingerprint() Fingerprint {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(c.Start.Sec))
	binary.BigEndian.PutUint32(buf[8:12], uint32(c.Start.Nanos))
	binary.BigEndian.PutUint64(buf[12:20], uint64(c.Period))
	binary.BigEndian.PutUint32(buf[20:24], uint32(c.Count))
	return sha256.Sum256(buf[:])
}

// Equal implements Schedule. Two SamplingClocks are equal iff start,
// period, and count all match; a SamplingClock is never equal to a
// TimestampList even if their expanded timestamps coincide, per I1's
// bytewise-on-the-wire-representation rule.
func (c SamplingClock) Equal(o Schedule) bool {
	oc, ok := o.(SamplingClock)
	if !ok {
		return false
	}
	return c.Start.Equal(oc.Start) && c.Period == oc.Period && c.Count == oc.Count
}

// Slice returns the sub-clock covering samples [offset, offset+count),
// recomputing Start so that the schedule remains a valid uniform clock.
func (c SamplingClock) Slice(offset, count int) SamplingClock {
	if offset < 0 || count < 0 || offset+count > c.Count {
		panic("timeseries: SamplingClock.Slice out of range")
	}
	return SamplingClock{
		Start:  c.Start.Add(time.Duration(offset) * c.Period),
		Count:  count,
		Period: c.Period,
	}
}

// TimestampList is an explicit ordered sequence of instants with no
// required uniformity.
type TimestampList struct {
	Instants []Instant
}

var _ Schedule = TimestampList{}

// IsUniform implements Schedule.
func (l TimestampList) IsUniform() bool { return false }

// SampleCount implements Schedule.
func (l TimestampList) SampleCount() int { return len(l.Instants) }

// Domain implements Schedule.
func (l TimestampList) Domain() Interval {
	if len(l.Instants) == 0 {
		panic("timeseries: Domain of an empty TimestampList is undefined")
	}
	return Interval{Begin: l.Instants[0], End: l.Instants[len(l.Instants)-1]}
}

// At implements Schedule.
func (l TimestampList) At(i int) Instant { return l.Instants[i] }

// Fingerprint implements Schedule.
func (l TimestampList) Fingerprint() Fingerprint {
	h := sha256.New()
	// A leading kind tag keeps a list's hash input from ever matching
	// a SamplingClock's 24-byte layout.
	_, _ = h.Write([]byte{'L'})
	var buf [12]byte
	for _, inst := range l.Instants {
		binary.BigEndian.PutUint64(buf[0:8], uint64(inst.Sec))
		binary.BigEndian.PutUint32(buf[8:12], uint32(inst.Nanos))
		_, _ = h.Write(buf[:])
	}
	var out Fingerprint
	copy(out[:], h.Sum(nil))
	return out
}

// Equal implements Schedule. Two TimestampLists are equal iff their
// sequences are pointwise equal.
func (l TimestampList) Equal(o Schedule) bool {
	ol, ok := o.(TimestampList)
	if !ok || len(l.Instants) != len(ol.Instants) {
		return false
	}
	for i, inst := range l.Instants {
		if !inst.Equal(ol.Instants[i]) {
			return false
		}
	}
	return true
}

// Slice returns the sub-list covering samples [offset, offset+count).
func (l TimestampList) Slice(offset, count int) TimestampList {
	if offset < 0 || count < 0 || offset+count > len(l.Instants) {
		panic("timeseries: TimestampList.Slice out of range")
	}
	out := make([]Instant, count)
	copy(out, l.Instants[offset:offset+count])
	return TimestampList{Instants: out}
}

// SliceSchedule slices a Schedule of either kind along the row axis,
// preserving its kind. It is the single choke point frame decomposition
// uses so that the "schedule case is one of two, never both" invariant
// can never be violated by a caller handling one kind and forgetting
// the other.
func SliceSchedule(s Schedule, offset, count int) (Schedule, error) {
	switch v := s.(type) {
	case SamplingClock:
		return v.Slice(offset, count), nil
	case TimestampList:
		return v.Slice(offset, count), nil
	default:
		return nil, errors.Errorf("timeseries: unsupported schedule type %T", s)
	}
}
