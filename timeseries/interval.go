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
	"time"

	"github.com/pkg/errors"
)

// Interval is a pair (Begin, End) with the invariant Begin <= End.
type Interval struct {
	Begin Instant
	End   Instant
}

// NewInterval constructs an Interval, returning an error if begin > end.
func NewInterval(begin, end Instant) (Interval, error) {
	if begin.After(end) {
		return Interval{}, errors.Errorf("interval begin %v is after end %v", begin, end)
	}
	return Interval{Begin: begin, End: end}, nil
}

// Duration returns End - Begin.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Begin)
}

// ContainsClosed reports whether t lies in [Begin, End].
func (iv Interval) ContainsClosed(t Instant) bool {
	return !t.Before(iv.Begin) && !t.After(iv.End)
}

// ContainsOpen reports whether t lies in (Begin, End).
func (iv Interval) ContainsOpen(t Instant) bool {
	return t.After(iv.Begin) && t.Before(iv.End)
}

// IntersectClosed returns the closed intersection of iv and o, and
// false if the intervals do not overlap.
func (iv Interval) IntersectClosed(o Interval) (Interval, bool) {
	begin := iv.Begin
	if o.Begin.After(begin) {
		begin = o.Begin
	}
	end := iv.End
	if o.End.Before(end) {
		end = o.End
	}
	if begin.After(end) {
		return Interval{}, false
	}
	return Interval{Begin: begin, End: end}, true
}

// UnionClosed returns the closed union of iv and o. The two intervals
// need not overlap; the result is their smallest enclosing interval,
// which is the same as Support for two intervals.
func (iv Interval) UnionClosed(o Interval) Interval {
	begin := iv.Begin
	if o.Begin.Before(begin) {
		begin = o.Begin
	}
	end := iv.End
	if o.End.After(end) {
		end = o.End
	}
	return Interval{Begin: begin, End: end}
}

// IntersectOpen returns the open intersection of iv and o: the overlap
// excluding any shared boundary instant. Two closed intervals that only
// touch at a single point (e.g. [0,5] and [5,10]) have a non-empty
// IntersectClosed but no open intersection, so this returns false in
// that case even though IntersectClosed would not.
func (iv Interval) IntersectOpen(o Interval) (Interval, bool) {
	begin := iv.Begin
	if o.Begin.After(begin) {
		begin = o.Begin
	}
	end := iv.End
	if o.End.Before(end) {
		end = o.End
	}
	if !begin.Before(end) {
		return Interval{}, false
	}
	return Interval{Begin: begin, End: end}, true
}

// UnionOpen returns the smallest interval enclosing both iv and o. The
// open/closed distinction only changes how an interval's own boundary
// instants are tested for membership (see ContainsOpen/ContainsClosed);
// the enclosing interval itself is the same set of boundary instants
// either way, so UnionOpen is defined identically to UnionClosed.
func (iv Interval) UnionOpen(o Interval) Interval {
	return iv.UnionClosed(o)
}

// Difference returns iv minus o as 0, 1, or 2 disjoint intervals.
func (iv Interval) Difference(o Interval) []Interval {
	inter, ok := iv.IntersectClosed(o)
	if !ok {
		return []Interval{iv}
	}
	var out []Interval
	if iv.Begin.Before(inter.Begin) {
		out = append(out, Interval{Begin: iv.Begin, End: inter.Begin})
	}
	if inter.End.Before(iv.End) {
		out = append(out, Interval{Begin: inter.End, End: iv.End})
	}
	return out
}

// Contains reports whether o is entirely contained within iv.
func (iv Interval) Contains(o Interval) bool {
	return !o.Begin.Before(iv.Begin) && !o.End.After(iv.End)
}

// Support returns the smallest interval enclosing all of the given
// intervals. Panics if called with no arguments.
func Support(ivs ...Interval) Interval {
	if len(ivs) == 0 {
		panic("timeseries: Support requires at least one interval")
	}
	ret := ivs[0]
	for _, iv := range ivs[1:] {
		ret = ret.UnionClosed(iv)
	}
	return ret
}

// ByBegin orders intervals ascending by Begin instant.
func ByBegin(a, b Interval) int { return a.Begin.Compare(b.Begin) }

// ByDuration orders intervals ascending by Duration.
func ByDuration(a, b Interval) int {
	da, db := a.Duration(), b.Duration()
	switch {
	case da < db:
		return -1
	case da > db:
		return 1
	default:
		return 0
	}
}
