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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/poiesic/embd/core"
	"github.com/poiesic/embd/storage"
)

// On-disk layout, little-endian throughout:
//
//	Header (16 bytes):
//	  [0..4)   magic "EMBD"
//	  [4..6)   version   uint16
//	  [6..10)  dimension uint32
//	  [10..16) reserved  6 zero bytes
//
//	Record (variable):
//	  [0..2)           key length uint16
//	  [2..2+keyLen)    key, UTF-8
//	  [...]            dimension x float32
//	  [last 4 bytes]   record length footer uint32
//
// The trailing footer repeats the record's total byte length, which is what
// makes backward parsing possible.
const (
	// HeaderSize is the fixed byte length of the file header.
	HeaderSize = 16

	// FormatVersion is the current on-disk format version.
	FormatVersion = 1

	keyLenSize = 2
	floatSize  = 4
	footerSize = 4
)

var magic = [4]byte{'E', 'M', 'B', 'D'}

// Header describes a store file: the format version and the vector
// dimension shared by every record in the file.
type Header struct {
	Version   uint16
	Dimension uint32
}

// RecordLength returns the total encoded size in bytes of a record with the
// given key length and vector dimension. It is the single source of truth
// for record sizing, shared by the writer and both readers.
func RecordLength(keyLen, dimension int) int {
	return keyLenSize + keyLen + dimension*floatSize + footerSize
}

// WriteHeader creates the file at path and writes the 16-byte header.
// The file must not already exist; the header is written once and is
// immutable thereafter.
func WriteHeader(path string, dimension uint32) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	buf := make([]byte, HeaderSize)
	copy(buf[0:4], magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], FormatVersion)
	binary.LittleEndian.PutUint32(buf[6:10], dimension)
	// buf[10:16] reserved

	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	return f.Close()
}

// ReadHeader reads and validates the header of the file at path.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	return readHeader(f)
}

func readHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, fmt.Errorf("%w: header shorter than %d bytes", storage.ErrTruncatedData, HeaderSize)
		}
		return Header{}, err
	}

	if !bytes.Equal(buf[0:4], magic[:]) {
		return Header{}, fmt.Errorf("%w: bad magic bytes", storage.ErrInvalidFormat)
	}

	version := binary.LittleEndian.Uint16(buf[4:6])
	if version > FormatVersion {
		return Header{}, fmt.Errorf("%w: %d", storage.ErrUnsupportedVersion, version)
	}

	return Header{
		Version:   version,
		Dimension: binary.LittleEndian.Uint32(buf[6:10]),
	}, nil
}

// AppendRecord encodes one record and appends it to the file at path in a
// single write call.
func AppendRecord(path, key string, vector []float32) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}

	buf := appendRecord(make([]byte, 0, RecordLength(len(key), len(vector))), key, vector)
	return appendBytes(path, buf)
}

// AppendRecords encodes every entry into one contiguous buffer and appends
// it to the file at path with a single write call, turning N potential I/O
// operations into one.
func AppendRecords(path string, entries []core.StoredEntry) error {
	if len(entries) == 0 {
		return nil
	}

	size := 0
	for _, e := range entries {
		if err := core.ValidateKey(e.Key); err != nil {
			return err
		}
		size += RecordLength(len(e.Key), len(e.Vector))
	}

	buf := make([]byte, 0, size)
	for _, e := range entries {
		buf = appendRecord(buf, e.Key, e.Vector)
	}
	return appendBytes(path, buf)
}

func appendRecord(dst []byte, key string, vector []float32) []byte {
	total := RecordLength(len(key), len(vector))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(key)))
	dst = append(dst, key...)
	for _, v := range vector {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return binary.LittleEndian.AppendUint32(dst, uint32(total))
}

func appendBytes(path string, buf []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to append record: %w", err)
	}
	return f.Close()
}

// ReadRecordForward decodes the record starting at offset in the file at
// path. It first reads the 2-byte key length to size the record, then reads
// exactly that many bytes and validates the trailing footer. Returns the
// decoded entry and the record's byte length, so sequential consumers can
// advance their cursor.
func ReadRecordForward(path string, dimension uint32, offset int64) (core.StoredEntry, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.StoredEntry{}, 0, err
	}
	defer f.Close()

	var lenBuf [keyLenSize]byte
	if _, err := f.ReadAt(lenBuf[:], offset); err != nil {
		if errors.Is(err, io.EOF) {
			return core.StoredEntry{}, 0, fmt.Errorf("%w: record at offset %d", storage.ErrTruncatedData, offset)
		}
		return core.StoredEntry{}, 0, err
	}

	keyLen := int(binary.LittleEndian.Uint16(lenBuf[:]))
	total := RecordLength(keyLen, int(dimension))

	buf := make([]byte, total)
	if _, err := f.ReadAt(buf, offset); err != nil {
		if errors.Is(err, io.EOF) {
			return core.StoredEntry{}, 0, fmt.Errorf("%w: record at offset %d", storage.ErrTruncatedData, offset)
		}
		return core.StoredEntry{}, 0, err
	}

	entry, err := decodeRecord(buf, dimension)
	if err != nil {
		return core.StoredEntry{}, 0, err
	}
	return entry, total, nil
}

// decodeRecord decodes a complete record from buf. The buffer must hold
// exactly one record; the footer and the key-length-derived size must agree.
func decodeRecord(buf []byte, dimension uint32) (core.StoredEntry, error) {
	if len(buf) < RecordLength(0, int(dimension)) {
		return core.StoredEntry{}, fmt.Errorf("%w: record shorter than minimum", storage.ErrCorruptRecord)
	}

	keyLen := int(binary.LittleEndian.Uint16(buf[0:2]))
	if RecordLength(keyLen, int(dimension)) != len(buf) {
		return core.StoredEntry{}, fmt.Errorf("%w: key length %d inconsistent with record size %d", storage.ErrCorruptRecord, keyLen, len(buf))
	}

	footer := binary.LittleEndian.Uint32(buf[len(buf)-footerSize:])
	if int(footer) != len(buf) {
		return core.StoredEntry{}, fmt.Errorf("%w: footer declares %d bytes, record has %d", storage.ErrCorruptRecord, footer, len(buf))
	}

	vector := make([]float32, dimension)
	off := keyLenSize + keyLen
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[off+i*floatSize:]))
	}

	return core.StoredEntry{
		Key:    string(buf[keyLenSize : keyLenSize+keyLen]),
		Vector: vector,
	}, nil
}
