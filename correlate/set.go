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

package correlate

import (
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/osprey-dcs/dp-jal-sub011/errs"
	"github.com/osprey-dcs/dp-jal-sub011/internal/telemetry"
	"github.com/osprey-dcs/dp-jal-sub011/internal/util/msort"
	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
	"github.com/osprey-dcs/dp-jal-sub011/transport"
)

// unboundedCacheSize is used when a Set is created without an explicit
// block-cache bound; golang-lru requires a positive size, so this
// stands in for "no eviction in practice".
const unboundedCacheSize = 1 << 30

// Set is the ordered collection of in-progress and completed Blocks
// built by a Correlator shard. Buckets are ingested one at a time;
// Snapshot returns them ordered per the I4 comparator.
//
// The in-progress block map is an LRU cache rather than a plain map so
// that a caller running under high schedule cardinality can bound its
// memory footprint (BlockCacheSize in Options). Blocks evicted from the
// cache are moved into a finalized list rather than discarded, so
// completeness holds even under a bound. A schedule whose buckets span
// an eviction is held in two Blocks until Snapshot, which merges them
// back into one; a source name present in both is dropped by that merge
// without being counted in RejectedDuplicates. With the default
// unbounded size this never happens.
type Set struct {
	mu                 sync.Mutex
	cache              *lru.Cache[timeseries.Fingerprint, *Block]
	finalized          []*Block
	rejectedDuplicates int64
	malformedBuckets   int64
}

// NewSet constructs a Set with no block-cache bound.
func NewSet() *Set { return NewBoundedSet(0) }

// NewBoundedSet constructs a Set whose in-progress block cache holds at
// most cacheSize schedules before evicting the least-recently-touched
// one into the finalized list. cacheSize <= 0 means unbounded.
func NewBoundedSet(cacheSize int) *Set {
	if cacheSize <= 0 {
		cacheSize = unboundedCacheSize
	}
	s := &Set{}
	cache, err := lru.NewWithEvict[timeseries.Fingerprint, *Block](cacheSize, func(_ timeseries.Fingerprint, blk *Block) {
		s.finalized = append(s.finalized, blk)
	})
	if err != nil {
		// Only returned for cacheSize <= 0, already excluded above.
		panic(err)
	}
	s.cache = cache
	return s
}

// Ingest folds one sample bucket into the set, creating a new Block for
// its schedule on first sight. A bucket whose schedule is empty, whose
// column size disagrees with its schedule's sample count, or whose
// source name duplicates one already present in its Block's schedule is
// dropped, tallied, and reported with a Data error; these are
// server-side anomalies, not a correlator fault, and the Correlator
// discards the returned error after the tally.
func (s *Set) Ingest(bucket transport.SampleBucket) error {
	if bucket.DataTimestamps == nil || bucket.DataTimestamps.SampleCount() == 0 {
		s.mu.Lock()
		s.malformedBuckets++
		s.mu.Unlock()
		return errs.New(errs.Data, "correlate", "ingest", "bucket has an empty schedule")
	}
	if bucket.DataColumn.Len() != bucket.DataTimestamps.SampleCount() {
		s.mu.Lock()
		s.malformedBuckets++
		s.mu.Unlock()
		return errs.New(errs.Data, "correlate", "ingest", "column size does not match the bucket's schedule sample count")
	}

	fp := bucket.DataTimestamps.Fingerprint()

	s.mu.Lock()
	defer s.mu.Unlock()

	blk, ok := s.cache.Get(fp)
	if !ok {
		blk = NewBlock(bucket.DataTimestamps)
		s.cache.Add(fp, blk)
		telemetry.BlocksProduced.Inc()
	}
	if !blk.insert(bucket.DataColumn) {
		s.rejectedDuplicates++
		telemetry.RejectedDuplicates.Inc()
		return errs.New(errs.Data, "correlate", "ingest", "duplicate source name "+bucket.DataColumn.Name+" within schedule")
	}
	return nil
}

// Snapshot returns every Block the set holds, ordered per Compare.
func (s *Set) Snapshot() []*Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Block, 0, len(s.finalized)+s.cache.Len())
	out = append(out, s.finalized...)
	for _, fp := range s.cache.Keys() {
		if blk, ok := s.cache.Peek(fp); ok {
			out = append(out, blk)
		}
	}

	// Under a bounded cache, a schedule whose buckets straddle an
	// eviction can appear twice: once in finalized, once still active.
	// Coalesce those back into one Block before sorting.
	out = msort.CoalesceByKey(out, blockFingerprintKey, mergeBlocks)

	sort.Slice(out, func(i, j int) bool { return Compare(out[i], out[j]) < 0 })
	return out
}

func blockFingerprintKey(b *Block) string {
	fp := b.schedule.Fingerprint()
	return string(fp[:])
}

func mergeBlocks(dst, src *Block) *Block {
	for _, col := range src.columns {
		dst.insert(col)
	}
	return dst
}

// RejectedDuplicates returns the number of buckets dropped for I2
// violations since the last Reset.
func (s *Set) RejectedDuplicates() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejectedDuplicates
}

// MalformedBuckets returns the number of buckets dropped for an empty
// schedule or a column/schedule size mismatch since the last Reset.
func (s *Set) MalformedBuckets() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.malformedBuckets
}

// Reset clears every Block and counter, returning the Set to its
// just-constructed state.
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
	s.finalized = nil
	s.rejectedDuplicates = 0
	s.malformedBuckets = 0
}
