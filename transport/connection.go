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

package transport

import (
	"context"

	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
)

// QueryRequest is the wire form of one (possibly decomposed)
// sub-request: a source set over a time interval.
type QueryRequest struct {
	Sources []string
	Window  timeseries.Interval
}

// FragmentStream is satisfied by a server-streaming or bidirectional
// gRPC stream of QueryDataFragment: Recv returns io.EOF when the server
// has sent its terminal signal.
type FragmentStream interface {
	Recv() (*QueryDataFragment, error)
	CloseSend() error
}

// AckSendStream additionally allows the client to push flow-control
// acknowledgements back to the server, used only on Bidirectional
// streams.
type AckSendStream interface {
	FragmentStream
	Send(ack *QueryAck) error
}

// QueryAck is a flow-control acknowledgement sent by the client after
// consuming a fragment on a Bidirectional stream.
type QueryAck struct {
	FragmentsConsumed int64
}

// QueryConnection is the capability the query pipeline consumes from
// its environment. Implementations are expected to be backed by a gRPC
// channel; dialing, TLS, and retry/backoff around the channel itself
// are the connection factory's concern, not the core's.
type QueryConnection interface {
	// UnaryQuery issues a single non-streamed request (Forward).
	UnaryQuery(ctx context.Context, req *QueryRequest) (*QueryDataFragment, error)
	// ServerStreamQuery opens a server-to-client stream (Backward).
	ServerStreamQuery(ctx context.Context, req *QueryRequest) (FragmentStream, error)
	// BidiQuery opens a bidirectional stream (Bidirectional) for req;
	// the caller then alternates Recv with a Send of a QueryAck for
	// flow control.
	BidiQuery(ctx context.Context, req *QueryRequest) (AckSendStream, error)
	// ShutdownSoft requests a graceful shutdown of the connection.
	ShutdownSoft(ctx context.Context) error
	// AwaitTermination blocks until the connection has fully closed.
	AwaitTermination(ctx context.Context) error
}

// IngestSendStream is a client-to-server stream of ingestion requests,
// used by Forward ingestion.
type IngestSendStream interface {
	Send(req *IngestRequest) error
	CloseAndRecv() (*IngestResponse, error)
}

// IngestBidiStream additionally allows reading per-request responses
// as they arrive, used by Bidirectional ingestion. Whether responses
// back-fill by request id or arrive in arbitrary order is a question
// for the transport layer, not the core.
type IngestBidiStream interface {
	Send(req *IngestRequest) error
	Recv() (*IngestResponse, error)
	CloseSend() error
}

// IngestionConnection is the capability the ingestion pipeline consumes
// from its environment.
type IngestionConnection interface {
	// RegisterProvider registers (or looks up) a provider by name,
	// returning its uid and whether the registration was newly
	// created.
	RegisterProvider(ctx context.Context, name string, attrs map[string]string) (providerUID uint64, isNew bool, err error)
	// IngestStream opens a client-streaming (Forward) ingestion
	// stream.
	IngestStream(ctx context.Context) (IngestSendStream, error)
	// IngestBidi opens a bidirectional ingestion stream.
	IngestBidi(ctx context.Context) (IngestBidiStream, error)
	// ShutdownSoft requests a graceful shutdown of the connection.
	ShutdownSoft(ctx context.Context) error
	// AwaitTermination blocks until the connection has fully closed.
	AwaitTermination(ctx context.Context) error
}
