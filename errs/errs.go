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

// Package errs defines the error taxonomy shared by the ingestion and
// query pipelines. Every terminal error names the component, the
// operation, and the condition that produced it, and chains its cause.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the seven error categories produced by the core.
type Kind int

const (
	// Config indicates an invalid knob value or a mutation attempted
	// after activation.
	Config Kind = iota
	// State indicates an operation called outside its expected
	// lifecycle state.
	State
	// Input indicates a malformed frame or request.
	Input
	// Transport indicates a failure raised by a connection capability.
	Transport
	// Data indicates a server-side anomaly detected during correlation.
	Data
	// Interrupted indicates a blocking operation aborted by
	// cancellation.
	Interrupted
	// Resource indicates a bounded queue was exhausted with no
	// timeout progress.
	Resource
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "ConfigError"
	case State:
		return "StateError"
	case Input:
		return "InputError"
	case Transport:
		return "TransportError"
	case Data:
		return "DataError"
	case Interrupted:
		return "Interrupted"
	case Resource:
		return "ResourceError"
	default:
		return "UnknownError"
	}
}

// E is the concrete error type carrying a Kind plus the component and
// operation that raised it. Callers should not construct E directly;
// use the New/Wrap helpers below.
type E struct {
	Kind      Kind
	Component string
	Operation string
	Condition string
	cause     error
}

// Error implements error.
func (e *E) Error() string {
	msg := fmt.Sprintf("%s: %s.%s: %s", e.Kind, e.Component, e.Operation, e.Condition)
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes the chained cause to errors.Is/errors.As.
func (e *E) Unwrap() error { return e.cause }

// New constructs a terminal error with no chained cause.
func New(kind Kind, component, operation, condition string) error {
	return errors.WithStack(&E{Kind: kind, Component: component, Operation: operation, Condition: condition})
}

// Wrap constructs a terminal error chaining the given cause.
func Wrap(kind Kind, component, operation, condition string, cause error) error {
	if cause == nil {
		return New(kind, component, operation, condition)
	}
	return errors.WithStack(&E{Kind: kind, Component: component, Operation: operation, Condition: condition, cause: cause})
}

// Is reports whether err is an *E of the given Kind, unwrapping any
// stack-trace or cause wrapping applied by pkg/errors along the way.
func Is(err error, kind Kind) bool {
	var e *E
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// As extracts the *E from err, if any, following wrapped causes.
func As(err error) (*E, bool) {
	var e *E
	ok := errors.As(err, &e)
	return e, ok
}
