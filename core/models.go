package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// StoredEntry is the logical view of one stored document.
// When materialized from the binary store format, Text and StoredAt are
// zero values: the on-disk encoding keeps only the key and the vector.
type StoredEntry struct {
	Key      string
	Text     string
	Vector   []float32
	StoredAt time.Time
}

// Candidate is a (key, similarity) pair considered during a search pass.
// Candidates are transient; they exist only between scoring and ranking.
type Candidate struct {
	Key   string
	Score float32
}

// KeyFromContent derives a deterministic key from document content using
// BLAKE2b hashing. Identical content always produces the identical key,
// so re-ingesting the same document supersedes its previous record rather
// than adding a duplicate.
func KeyFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
