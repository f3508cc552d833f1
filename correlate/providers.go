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

import "github.com/google/wire"

// ProviderSet is the wire provider set for the correlator. Named to
// avoid colliding with the package's own Set type.
var ProviderSet = wire.NewSet(ProvideCorrelator)

// ProvideCorrelator is the wire provider for Correlator.
func ProvideCorrelator(opts Options) *Correlator {
	return New(opts)
}
