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


package embfile

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/poiesic/embd/core"
)

// DefaultChunkSize is the default size of the backward read window.
const DefaultChunkSize = 64 * 1024

// ReverseScanner yields stored entries newest-first, deduplicated by key.
// It scans the file backward in bounded windows, so memory stays
// proportional to the window size plus the set of unique keys, never to the
// file size. Because iteration runs newest-first, the first occurrence of a
// key is its effective (latest) value; older versions of the same key are
// skipped.
//
// Usage follows the bufio.Scanner idiom:
//
//	sc, err := embfile.NewReverseScanner(path)
//	if err != nil { ... }
//	defer sc.Close()
//	for sc.Scan() {
//	    entry := sc.Entry()
//	    ...
//	}
//	if err := sc.Err(); err != nil { ... }
//
// Each scanner owns its file handle and seen-key set, so concurrent
// scanners over the same file are independent and safe.
type ReverseScanner struct {
	f         *os.File
	header    Header
	chunkSize int

	pos         int64 // absolute offset just past the next record to parse
	window      []byte
	windowStart int64

	seen  map[string]struct{}
	entry core.StoredEntry
	err   error
	done  bool
}

// ScannerOption configures a ReverseScanner.
type ScannerOption func(*ReverseScanner) error

// WithChunkSize sets the backward window size in bytes.
// Default is DefaultChunkSize (64 KiB). Records larger than the window are
// still decoded correctly via a direct read, at the cost of one extra read
// per such record.
func WithChunkSize(size int) ScannerOption {
	return func(s *ReverseScanner) error {
		if size < footerSize {
			return fmt.Errorf("chunk size must be at least %d bytes, got %d", footerSize, size)
		}
		s.chunkSize = size
		return nil
	}
}

// NewReverseScanner opens the file at path and positions the scan at
// end-of-file. The header is read eagerly so format errors surface here
// rather than on the first Scan call.
func NewReverseScanner(path string, opts ...ScannerOption) (*ReverseScanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	header, err := readHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	s := &ReverseScanner{
		f:         f,
		header:    header,
		chunkSize: DefaultChunkSize,
		pos:       info.Size(),
		seen:      make(map[string]struct{}),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			f.Close()
			return nil, err
		}
	}

	return s, nil
}

// Header returns the file header read during setup.
func (s *ReverseScanner) Header() Header {
	return s.header
}

// Scan advances to the next deduplicated entry, newest-first.
// It returns false when the header boundary is reached, when the trailing
// record is partially written, or on error; Err distinguishes the cases.
func (s *ReverseScanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}

	for {
		// Fewer than 4 bytes remain before the header boundary: done.
		if s.pos < HeaderSize+footerSize {
			s.done = true
			return false
		}

		if s.pos-footerSize < s.windowStart || s.pos > s.windowEnd() {
			if err := s.loadWindow(s.pos); err != nil {
				s.err = err
				return false
			}
		}

		rel := s.pos - s.windowStart
		length := int64(binary.LittleEndian.Uint32(s.window[rel-footerSize : rel]))
		start := s.pos - length

		if length < int64(RecordLength(0, int(s.header.Dimension))) || start < HeaderSize {
			// The stated length cannot be satisfied. This is the
			// signature of a crash mid-append: the partial trailing
			// record is treated as absent, not as corruption.
			s.done = true
			return false
		}

		var buf []byte
		if start >= s.windowStart {
			buf = s.window[start-s.windowStart : rel]
		} else {
			// Record straddles the window edge. One precisely sized
			// direct read handles any record size, including records
			// larger than the window itself.
			buf = make([]byte, length)
			if _, err := s.f.ReadAt(buf, start); err != nil {
				s.err = err
				return false
			}
		}

		entry, err := decodeRecord(buf, s.header.Dimension)
		if err != nil {
			s.err = err
			return false
		}

		s.pos = start

		if _, dup := s.seen[entry.Key]; dup {
			// Superseded older version of a key already yielded.
			continue
		}
		s.seen[entry.Key] = struct{}{}
		s.entry = entry
		return true
	}
}

// Entry returns the entry produced by the last successful Scan.
func (s *ReverseScanner) Entry() core.StoredEntry {
	return s.entry
}

// Err returns the first error encountered during scanning, if any.
// A partially written trailing record is not an error.
func (s *ReverseScanner) Err() error {
	return s.err
}

// Close releases the underlying file handle.
func (s *ReverseScanner) Close() error {
	return s.f.Close()
}

func (s *ReverseScanner) windowEnd() int64 {
	return s.windowStart + int64(len(s.window))
}

// loadWindow fills the window with up to chunkSize bytes ending at end,
// never crossing below the header boundary.
func (s *ReverseScanner) loadWindow(end int64) error {
	start := end - int64(s.chunkSize)
	if start < HeaderSize {
		start = HeaderSize
	}

	n := int(end - start)
	if cap(s.window) < n {
		s.window = make([]byte, n)
	} else {
		s.window = s.window[:n]
	}

	if _, err := s.f.ReadAt(s.window, start); err != nil {
		return err
	}
	s.windowStart = start
	return nil
}
