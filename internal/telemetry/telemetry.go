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

// Package telemetry declares the prometheus metrics shared by the
// ingestion processor, query channel, and correlator.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LatencyBuckets is the shared histogram bucket scheme for per-component
// duration metrics, in seconds.
var LatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

var (
	// FramesSubmitted counts frames accepted by Processor.Submit.
	FramesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dp_ingest_frames_submitted_total",
		Help: "the number of ingestion frames accepted by submit",
	})
	// RequestsEmitted counts request messages placed on the output queue.
	RequestsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dp_ingest_requests_emitted_total",
		Help: "the number of ingestion request messages emitted",
	})
	// ProcessingFailures counts dropped decomposition/conversion pieces.
	ProcessingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dp_ingest_processing_failures_total",
		Help: "the number of decomposition or conversion failures",
	})
	// OutputQueueDepth tracks the current size of the output queue.
	OutputQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dp_ingest_output_queue_depth",
		Help: "the current number of request messages queued for delivery",
	})

	// FragmentsRecovered counts query-data fragments pushed into the
	// message buffer by a Channel recovery.
	FragmentsRecovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dp_query_fragments_recovered_total",
		Help: "the number of response fragments recovered across all streams",
	})
	// StreamErrors counts sub-request streams that errored.
	StreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dp_query_stream_errors_total",
		Help: "the number of sub-request streams that terminated with an error",
	})

	// BlocksProduced counts correlated blocks created by the correlator.
	BlocksProduced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dp_correlate_blocks_total",
		Help: "the number of correlated blocks produced",
	})
	// RejectedDuplicates counts buckets dropped for violating source
	// uniqueness within a schedule.
	RejectedDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dp_correlate_rejected_duplicates_total",
		Help: "the number of buckets rejected for duplicate source names within a schedule",
	})
	// CorrelationDuration observes the wall time of a correlation pass.
	CorrelationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dp_correlate_duration_seconds",
		Help:    "the length of time a correlation pass took",
		Buckets: LatencyBuckets,
	})
)
