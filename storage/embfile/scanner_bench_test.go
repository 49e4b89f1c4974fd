package embfile

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/poiesic/embd/core"
)

// benchStore writes n records of the given dimension and returns the path.
func benchStore(b *testing.B, n, dimension int) string {
	b.Helper()
	path := filepath.Join(b.TempDir(), "bench.embd")
	if err := WriteHeader(path, uint32(dimension)); err != nil {
		b.Fatal(err)
	}

	entries := make([]core.StoredEntry, n)
	vector := make([]float32, dimension)
	for i := range vector {
		vector[i] = float32(i)
	}
	for i := range entries {
		entries[i] = core.StoredEntry{Key: fmt.Sprintf("key-%06d", i), Vector: vector}
	}
	if err := AppendRecords(path, entries); err != nil {
		b.Fatal(err)
	}
	return path
}

func benchScan(b *testing.B, path string, chunkSize int) {
	b.Helper()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sc, err := NewReverseScanner(path, WithChunkSize(chunkSize))
		if err != nil {
			b.Fatal(err)
		}
		count := 0
		for sc.Scan() {
			count++
		}
		if err := sc.Err(); err != nil {
			b.Fatal(err)
		}
		sc.Close()
	}
}

func BenchmarkReverseScanDefaultChunk(b *testing.B) {
	path := benchStore(b, 1000, 384)
	benchScan(b, path, DefaultChunkSize)
}

// BenchmarkReverseScanChunkSmallerThanRecord measures the degenerate case
// where every record exceeds the window and triggers one direct read each:
// a 384-dim record is 1546+ bytes against a 1 KiB window.
func BenchmarkReverseScanChunkSmallerThanRecord(b *testing.B) {
	path := benchStore(b, 1000, 384)
	benchScan(b, path, 1024)
}

func BenchmarkReverseScanLargeRecords(b *testing.B) {
	path := benchStore(b, 200, 3072)
	benchScan(b, path, DefaultChunkSize)
}

func BenchmarkAppendRecordsBatch(b *testing.B) {
	vector := make([]float32, 384)
	entries := make([]core.StoredEntry, 100)
	for i := range entries {
		entries[i] = core.StoredEntry{Key: fmt.Sprintf("key-%06d", i), Vector: vector}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		path := filepath.Join(b.TempDir(), "append.embd")
		if err := WriteHeader(path, 384); err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		if err := AppendRecords(path, entries); err != nil {
			b.Fatal(err)
		}
	}
}
