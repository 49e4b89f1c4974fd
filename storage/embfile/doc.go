// Package embfile implements embd's single-file append-only store format.
//
// A store file is a fixed 16-byte header followed by a strictly append-only
// sequence of records, each carrying a key, a fixed-dimension float32 vector
// and a trailing length footer. There is no index and no deletion: the
// effective value for a key is the physically last record with that key,
// resolved during the backward scan, never at write time.
//
// The package has two halves: the codec (WriteHeader, AppendRecord,
// AppendRecords, ReadRecordForward) and the ReverseScanner, which produces
// the newest-first deduplicated view the engine builds Get and Search on.
//
// Writers are not synchronized. A single append call is atomic at the OS
// level, but interleaved appends from multiple writers can misalign records;
// serializing writers is the caller's responsibility.
package embfile
