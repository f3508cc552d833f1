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

// Package transport declares the wire-level message schemas and the
// connection capabilities the core consumes from its environment.
// Protocol-buffer message definitions for the Data Platform, the gRPC
// wire codec, and the connection factory are all external
// collaborators; this package is the seam the core programs against.
package transport

import (
	"github.com/osprey-dcs/dp-jal-sub011/table"
	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
)

// IngestRequest is the wire record submitted to the ingestion service.
// Its serialized size is bounded by the transport message-size cap
// (typically 4 MiB).
type IngestRequest struct {
	ProviderUID     uint64
	ClientRequestID string
	DataTimestamps  timeseries.Schedule
	DataColumns     []table.Column
	Attributes      map[string]string
}

// IngestResult is either an Ack or an Error; exactly one of the two
// fields is meaningful, mirroring the wire schema's tagged union.
type IngestResult struct {
	Acked bool
	Error *IngestError
}

// IngestError describes a server-reported ingestion failure.
type IngestError struct {
	Message string
	Cause   error
}

func (e *IngestError) Error() string { return e.Message }
func (e *IngestError) Unwrap() error { return e.Cause }

// IngestResponse is the wire record returned for a submitted
// IngestRequest, correlated back to it by ClientRequestID.
type IngestResponse struct {
	ProviderUID     uint64
	ClientRequestID string
	Result          IngestResult
}

// SampleBucket is a (schedule, one column) pair arriving on the query
// stream.
type SampleBucket struct {
	DataTimestamps timeseries.Schedule
	DataColumn     table.Column
}

// QueryDataFragment is the wire record delivered on the query stream,
// containing zero or more sample buckets.
type QueryDataFragment struct {
	DataBuckets []SampleBucket
}
