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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidFormat indicates the file does not carry the expected magic bytes.
	ErrInvalidFormat = errors.New("invalid file format")

	// ErrUnsupportedVersion indicates a format version newer than this
	// implementation understands.
	ErrUnsupportedVersion = errors.New("unsupported format version")

	// ErrTruncatedData indicates that data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")

	// ErrCorruptRecord indicates a record whose trailing length footer does
	// not match its computed size.
	ErrCorruptRecord = errors.New("corrupt record")
)
