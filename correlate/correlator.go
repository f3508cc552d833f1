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
	"context"
	"encoding/binary"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osprey-dcs/dp-jal-sub011/errs"
	"github.com/osprey-dcs/dp-jal-sub011/internal/telemetry"
	"github.com/osprey-dcs/dp-jal-sub011/query/internal/buffer"
	"github.com/osprey-dcs/dp-jal-sub011/transport"
)

// Options configures a Correlator.
type Options struct {
	// Concurrency is the number of shard workers a midstream correlation
	// runs fragment ingestion across. <= 1 runs single-threaded.
	Concurrency int
	// BlockCacheSize bounds each shard's in-progress block cache. <= 0
	// is unbounded.
	BlockCacheSize int
}

// Validate checks that Options describes a usable configuration.
func (o Options) Validate() error {
	if o.Concurrency < 0 {
		return errs.New(errs.Config, "correlate", "options", "concurrency must not be negative")
	}
	if o.BlockCacheSize < 0 {
		return errs.New(errs.Config, "correlate", "options", "blockCacheSize must not be negative")
	}
	return nil
}

// Correlator builds a correlated Set from recovered query-data
// fragments. It can run a single pass over a fixed slice
// of fragments after recovery completes, or consume a shared buffer
// concurrently with a Channel's recovery.
//
// Fragments are sharded by schedule fingerprint so that every bucket
// for a given schedule lands on the same shard's Set. Each shard has one
// mutex, so lock contention is limited to buckets whose schedules hash
// to the same shard; with Concurrency <= 1 there is a single shard and
// a single mutex.
type Correlator struct {
	opts   Options
	shards []*Set
}

// New constructs a Correlator.
func New(opts Options) *Correlator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	shards := make([]*Set, opts.Concurrency)
	for i := range shards {
		shards[i] = NewBoundedSet(opts.BlockCacheSize)
	}
	return &Correlator{opts: opts, shards: shards}
}

func (c *Correlator) shardFor(fp [32]byte) *Set {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	h := binary.BigEndian.Uint64(fp[:8])
	return c.shards[h%uint64(len(c.shards))]
}

func (c *Correlator) ingestFragment(frag transport.QueryDataFragment) {
	for _, bucket := range frag.DataBuckets {
		if bucket.DataTimestamps == nil {
			_ = c.shards[0].Ingest(bucket)
			continue
		}
		shard := c.shardFor(bucket.DataTimestamps.Fingerprint())
		_ = shard.Ingest(bucket)
	}
}

// Run executes a single sequential pass over fragments, the
// post-recovery mode used once a Channel's Recover has fully drained.
func (c *Correlator) Run(fragments []transport.QueryDataFragment) {
	start := time.Now()
	defer func() { telemetry.CorrelationDuration.Observe(time.Since(start).Seconds()) }()

	for _, f := range fragments {
		c.ingestFragment(f)
	}
}

// RunStreaming consumes buf concurrently with whatever producer is
// filling it (typically a Channel's in-flight Recover), terminating
// once buf reports no more fragments are coming (buf.Shutdown was
// called and it has drained) or ctx is canceled.
func (c *Correlator) RunStreaming(ctx context.Context, buf *buffer.Buffer) error {
	start := time.Now()
	defer func() { telemetry.CorrelationDuration.Observe(time.Since(start).Seconds()) }()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.opts.Concurrency; i++ {
		g.Go(func() error {
			for {
				frag, ok, err := buf.Take(gctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				c.ingestFragment(frag)
			}
		})
	}
	return g.Wait()
}

// Snapshot merges every shard's Set into one ordered slice of Blocks.
func (c *Correlator) Snapshot() []*Block {
	out := make([]*Block, 0)
	for _, s := range c.shards {
		out = append(out, s.Snapshot()...)
	}
	sort.Slice(out, func(i, j int) bool { return Compare(out[i], out[j]) < 0 })
	return out
}

// RejectedDuplicates sums the duplicate-source-rejection counter
// across all shards.
func (c *Correlator) RejectedDuplicates() int64 {
	var total int64
	for _, s := range c.shards {
		total += s.RejectedDuplicates()
	}
	return total
}

// MalformedBuckets sums the malformed-bucket counter across all shards.
func (c *Correlator) MalformedBuckets() int64 {
	var total int64
	for _, s := range c.shards {
		total += s.MalformedBuckets()
	}
	return total
}

// Reset clears every shard, returning the Correlator to its
// just-constructed state.
func (c *Correlator) Reset() {
	for _, s := range c.shards {
		s.Reset()
	}
}
