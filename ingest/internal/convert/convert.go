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

// Package convert turns one decomposed sub-frame into a wire
// IngestRequest, stamping it with a fresh client request id.
package convert

import (
	"github.com/google/uuid"

	"github.com/osprey-dcs/dp-jal-sub011/errs"
	"github.com/osprey-dcs/dp-jal-sub011/table"
	"github.com/osprey-dcs/dp-jal-sub011/timeseries"
	"github.com/osprey-dcs/dp-jal-sub011/transport"
)

// TransportMessageCap is the default transport message-size cap (4
// MiB) a maxFrameSize configuration must stay under.
const TransportMessageCap int64 = 4 << 20

// ToRequest builds an IngestRequest for one sub-frame. It returns a
// ConfigError if the piece's estimated size already exceeds cap: that
// indicates the caller configured maxFrameSize above the transport
// cap, a fatal configuration error rather than a per-message failure.
func ToRequest(
	providerUID uint64, schedule timeseries.Schedule, columns []table.Column,
	attributes map[string]string, cap int64,
) (*transport.IngestRequest, error) {
	size := columnsAllocBytes(columns)
	if size > cap {
		return nil, errs.New(errs.Config, "ingest", "convert",
			"converted request exceeds the transport message-size cap")
	}
	return &transport.IngestRequest{
		ProviderUID:     providerUID,
		ClientRequestID: uuid.NewString(),
		DataTimestamps:  schedule,
		DataColumns:     columns,
		Attributes:      attributes,
	}, nil
}

func columnsAllocBytes(columns []table.Column) int64 {
	var total int64
	for _, c := range columns {
		total += c.AllocBytes()
	}
	return total
}
