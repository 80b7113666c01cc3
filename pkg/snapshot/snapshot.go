// Copyright (c) 2026, GroundCtl Authors.  All rights reserved.
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

package snapshot

import (
	"sync/atomic"

	"github.com/groundctl/mavmon/pkg/telemetry"
)

// Store holds the single most recent accepted telemetry sample.
//
// It is a replace-only slot: each accepted sample overwrites the previous
// one unconditionally and no history is kept. Readers always observe a
// complete sample, never a torn one. Safe for one writer and any number
// of concurrent readers; Replace calls are expected from a single
// goroutine (the ingest loop) but are safe regardless.
type Store struct {
	current atomic.Pointer[telemetry.Sample]
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Replace stores s as the latest sample, discarding the previous one.
func (st *Store) Replace(s telemetry.Sample) {
	st.current.Store(&s)
}

// Latest returns the most recent sample. The second return value is false
// until the first Replace.
func (st *Store) Latest() (telemetry.Sample, bool) {
	p := st.current.Load()
	if p == nil {
		return telemetry.Sample{}, false
	}
	return *p, true
}
