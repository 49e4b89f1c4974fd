// Copyright 2026 Poiesic Systems
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


// Package storage defines the error taxonomy shared by storage backends.
//
// The only backend shipped with embd is the single-file append-only format
// in the embfile subpackage. Errors live here, one level up, so callers can
// classify failures with errors.Is without importing format internals:
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // key was never written
//	}
//
// A missing store file is not corruption: Get reports ErrNotFound and Search
// returns an empty result, since pointing an engine at an unwritten path is a
// legitimate first-use state. Format errors (bad magic, truncated header,
// footer mismatch) always surface to the caller; they are never coerced into
// an empty result.
package storage
