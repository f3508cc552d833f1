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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osprey-dcs/dp-jal-sub011/correlate"
	"github.com/osprey-dcs/dp-jal-sub011/ingest"
	"github.com/osprey-dcs/dp-jal-sub011/query"
)

func validConfig() Config {
	return Config{
		Ingest:    ingest.Options{},
		Query:     query.Options{DecompositionStrategy: query.None},
		Correlate: correlate.Options{},
	}
}

func TestPreflightAcceptsDefaultConfig(t *testing.T) {
	c := validConfig()
	assert.NoError(t, c.Preflight())
}

func TestPreflightRejectsInvalidIngestOptions(t *testing.T) {
	c := validConfig()
	c.Ingest.FrameDecomposition = true
	c.Ingest.MaxFrameSize = 0
	require.Error(t, c.Preflight())
}

func TestPreflightRejectsInvalidQueryOptions(t *testing.T) {
	c := validConfig()
	c.Query.DecompositionStrategy = query.Horizontal
	c.Query.HorizontalPartitions = 0
	require.Error(t, c.Preflight())
}

func TestPreflightRejectsInvalidCorrelateOptions(t *testing.T) {
	c := validConfig()
	c.Correlate.Concurrency = -1
	require.Error(t, c.Preflight())
}

func TestPreflightRejectsNegativeBufferCapacity(t *testing.T) {
	c := validConfig()
	c.BufferCapacity = -1
	require.Error(t, c.Preflight())
}
