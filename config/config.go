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

// Package config aggregates the ingest, query, and correlate component
// options into one value a caller assembles before wiring the three
// packages together, and preflight-checks them as a unit.
package config

import (
	"github.com/pkg/errors"

	"github.com/osprey-dcs/dp-jal-sub011/correlate"
	"github.com/osprey-dcs/dp-jal-sub011/ingest"
	"github.com/osprey-dcs/dp-jal-sub011/query"
)

// Config is the user-visible configuration for running the ingestion
// processor, query channel, and correlator as one pipeline. Binding
// these fields from a flag set or file is the embedding application's
// concern, not this package's.
type Config struct {
	Ingest    ingest.Options
	Query     query.Options
	Correlate correlate.Options

	// BufferCapacity bounds the shared message buffer between Query and
	// Correlate; 0 means unbounded.
	BufferCapacity int
}

// Preflight validates every component's Options, wrapping the first
// failure with which component rejected it.
func (c *Config) Preflight() error {
	if err := c.Ingest.Validate(); err != nil {
		return errors.WithMessage(err, "ingest")
	}
	if err := c.Query.Validate(); err != nil {
		return errors.WithMessage(err, "query")
	}
	if err := c.Correlate.Validate(); err != nil {
		return errors.WithMessage(err, "correlate")
	}
	if c.BufferCapacity < 0 {
		return errors.New("bufferCapacity must not be negative")
	}
	return nil
}
