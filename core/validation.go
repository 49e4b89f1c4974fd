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


package core

import "fmt"

// MaxKeyLength is the maximum key size in bytes. The binary format stores
// key lengths as uint16, so keys cannot exceed 65535 bytes.
const MaxKeyLength = 65535

// ValidateKey validates a record key according to domain rules.
//
// Validation rules:
//   - Key must not be empty
//   - Key must not exceed MaxKeyLength bytes (UTF-8 encoded)
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("%w: %d bytes", ErrKeyTooLong, len(key))
	}
	return nil
}

// ValidateSearchParams validates the parameters of a similarity search.
//
// Validation rules:
//   - Query must not be empty
//   - Limit must be positive
//   - MinSimilarity must be within [0, 1]
func ValidateSearchParams(query string, limit int, minSimilarity float32) error {
	if query == "" {
		return ErrEmptyQuery
	}
	if limit <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if minSimilarity < 0 || minSimilarity > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidThreshold, minSimilarity)
	}
	return nil
}
