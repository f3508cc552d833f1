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

package query

import (
	"github.com/google/wire"

	"github.com/osprey-dcs/dp-jal-sub011/query/internal/buffer"
)

// Set is the wire provider set for the query recovery pipeline.
var Set = wire.NewSet(ProvideChannel, ProvideBuffer)

// ProvideChannel is the wire provider for Channel.
func ProvideChannel(opts Options) *Channel {
	return New(opts)
}

// BufferCapacity configures the shared message buffer's bound (0 means
// unbounded).
type BufferCapacity int

// ProvideBuffer is the wire provider for the shared message buffer.
func ProvideBuffer(capacity BufferCapacity) *buffer.Buffer {
	b := buffer.New(int(capacity))
	b.Activate()
	return b
}
