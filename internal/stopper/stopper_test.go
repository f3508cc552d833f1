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

package stopper

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoTracksGoroutinesForWait(t *testing.T) {
	c := New(context.Background())
	done := make(chan struct{})

	c.Go(func() error {
		close(done)
		return nil
	})

	require.NoError(t, c.Wait())
	select {
	case <-done:
	default:
		t.Fatal("Go's function did not run before Wait returned")
	}
}

func TestWaitAggregatesWorkerErrors(t *testing.T) {
	c := New(context.Background())
	c.Go(func() error { return errors.New("first") })
	c.Go(func() error { return errors.New("second") })

	err := c.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 worker errors")
}

func TestStoppingClosesBeforeCancel(t *testing.T) {
	c := New(context.Background())

	c.Stop()
	select {
	case <-c.Stopping():
	default:
		t.Fatal("Stopping channel not closed after Stop")
	}
	assert.NoError(t, c.Err())
}

func TestCancelClosesStoppingAndContext(t *testing.T) {
	c := New(context.Background())
	c.Cancel()

	select {
	case <-c.Stopping():
	default:
		t.Fatal("Stopping channel not closed after Cancel")
	}
	select {
	case <-c.Done():
	default:
		t.Fatal("Context not canceled after Cancel")
	}
}
