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

import "errors"

// Domain validation errors
var (
	// ErrEmptyKey indicates an empty record key.
	ErrEmptyKey = errors.New("key cannot be empty")

	// ErrKeyTooLong indicates a key longer than the format allows (65535 bytes).
	ErrKeyTooLong = errors.New("key exceeds maximum length")

	// ErrEmptyQuery indicates an empty search query.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmptyBatch indicates a batch operation was given no items.
	ErrEmptyBatch = errors.New("batch cannot be empty")

	// ErrInvalidLimit indicates a non-positive result limit.
	ErrInvalidLimit = errors.New("limit must be greater than zero")

	// ErrInvalidThreshold indicates a similarity threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("similarity threshold must be between 0 and 1")

	// ErrDimensionMismatch indicates vectors of unequal length were compared.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmbeddingCountMismatch indicates the embedding provider returned a
	// different number of vectors than texts it was given.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match text count")
)
