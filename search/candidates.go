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


package search

import (
	"math"
	"slices"

	"github.com/poiesic/embd/core"
)

// DefaultCapacity is the candidate capacity used when none is given.
const DefaultCapacity = 5

// CandidateSet retains the K highest-scoring (key, score) pairs from an
// unbounded stream in one pass, using O(K) memory. At capacity each
// insertion scans the held entries for the minimum (O(K)) and replaces it
// only if strictly beaten, so N insertions cost O(N*K) — favorable against
// full sorting whenever K is much smaller than N.
type CandidateSet struct {
	capacity int
	items    []core.Candidate
}

// NewCandidateSet creates a set holding at most capacity candidates.
// A non-positive capacity falls back to DefaultCapacity.
func NewCandidateSet(capacity int) *CandidateSet {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &CandidateSet{
		capacity: capacity,
		items:    make([]core.Candidate, 0, capacity),
	}
}

// Add offers a candidate to the set. A score of exactly 0 is valid input:
// a zero-similarity match is a legitimate result, not an unset value.
// Only empty keys and NaN scores are rejected.
func (cs *CandidateSet) Add(key string, score float32) error {
	if key == "" {
		return core.ErrEmptyKey
	}
	if math.IsNaN(float64(score)) {
		return ErrInvalidScore
	}

	if len(cs.items) < cs.capacity {
		cs.items = append(cs.items, core.Candidate{Key: key, Score: score})
		return nil
	}

	minIdx := 0
	for i := 1; i < len(cs.items); i++ {
		if cs.items[i].Score < cs.items[minIdx].Score {
			minIdx = i
		}
	}

	if score > cs.items[minIdx].Score {
		cs.items[minIdx] = core.Candidate{Key: key, Score: score}
	}
	return nil
}

// Entries returns the held candidates sorted by score, highest first.
// The returned slice is a copy; mutating it does not affect the set.
func (cs *CandidateSet) Entries() []core.Candidate {
	out := slices.Clone(cs.items)
	slices.SortFunc(out, func(a, b core.Candidate) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
	return out
}

// Keys returns the held keys in the same order as Entries.
func (cs *CandidateSet) Keys() []string {
	entries := cs.Entries()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// Len returns the current occupancy, at most the configured capacity.
func (cs *CandidateSet) Len() int {
	return len(cs.items)
}
