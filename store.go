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


package embd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/poiesic/embd/ai"
	"github.com/poiesic/embd/ai/openai"
	"github.com/poiesic/embd/core"
	"github.com/poiesic/embd/search"
	"github.com/poiesic/embd/storage"
	"github.com/poiesic/embd/storage/embfile"
)

// Search defaults.
const (
	DefaultSearchLimit   = 10
	DefaultMinSimilarity = 0.5
)

// Item pairs a key with the text to embed and store under it.
type Item struct {
	Key  string
	Text string
}

// StoreInfo summarizes a store file.
type StoreInfo struct {
	Version   uint16
	Dimension uint32
	Entries   int // unique keys after dedup
}

// Store is the storage engine over one append-only store file.
//
// Reads (Get, Search, Info) open independent read-only handles and may run
// concurrently. Writes (StoreText, StoreBatch, StoreEmbedded) are not
// synchronized: the engine assumes at most one writer per file path, and
// serializing writers is the caller's responsibility.
//
// The embedding provider is created lazily on first use and memoized;
// Close releases it.
type Store struct {
	path      string
	chunkSize int
	logger    *slog.Logger

	newProvider func() (ai.AIProvider, error)

	mu       sync.Mutex // guards the memoized provider only
	provider ai.AIProvider
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithChunkSize sets the backward window size used by read-side scans.
// Default is embfile.DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(s *Store) error {
		if size <= 0 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}
		s.chunkSize = size
		return nil
	}
}

// WithAIConfig sets the configuration used to build the OpenAI-compatible
// embedding provider on first use.
func WithAIConfig(cfg *ai.Config) Option {
	return func(s *Store) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.newProvider = func() (ai.AIProvider, error) {
			return openai.NewProvider(cfg)
		}
		return nil
	}
}

// WithProvider installs an already-constructed provider, bypassing lazy
// initialization. Used by tests and callers that manage provider lifecycle
// themselves.
func WithProvider(provider ai.AIProvider) Option {
	return func(s *Store) error {
		s.provider = provider
		return nil
	}
}

// NewStore creates an engine for the store file at path. The file itself is
// created lazily on the first write; pointing an engine at a path that does
// not exist yet is the normal first-use state.
func NewStore(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:      path,
		chunkSize: embfile.DefaultChunkSize,
		logger:    slog.Default(),
		newProvider: func() (ai.AIProvider, error) {
			return openai.NewProvider(ai.DefaultConfig())
		},
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// embedder returns the memoized embedding service, constructing the
// provider on first use.
func (s *Store) embedder() (ai.Embedder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.provider == nil {
		provider, err := s.newProvider()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ai.ErrProvider, err)
		}
		s.logger.Debug("initialized embedding provider")
		s.provider = provider
	}
	return s.provider.Embedder(), nil
}

// Close releases the embedding provider, if one was initialized.
// The store file itself holds no open state between operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.provider == nil {
		return nil
	}
	err := s.provider.Close()
	s.provider = nil
	return err
}

// StoreText embeds text and appends one record under key. If the store file
// does not exist yet, the header is written first using the embedding's
// dimension.
func (s *Store) StoreText(ctx context.Context, key, text string) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}

	embedder, err := s.embedder()
	if err != nil {
		return err
	}

	vector, err := embedder.EmbedText(ctx, text)
	if err != nil {
		return fmt.Errorf("%w: %w", ai.ErrProvider, err)
	}

	if err := s.ensureHeader(uint32(len(vector))); err != nil {
		return err
	}

	s.logger.Debug("storing record", "key", key, "dimension", len(vector))
	return embfile.AppendRecord(s.path, key, vector)
}

// StoreBatch embeds all items with a single provider call and appends all
// records with a single write.
func (s *Store) StoreBatch(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return core.ErrEmptyBatch
	}

	texts := make([]string, len(items))
	for i, item := range items {
		if err := core.ValidateKey(item.Key); err != nil {
			return err
		}
		texts[i] = item.Text
	}

	embedder, err := s.embedder()
	if err != nil {
		return err
	}

	vectors, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %w", ai.ErrProvider, err)
	}
	if len(vectors) != len(items) {
		return fmt.Errorf("%w: got %d vectors for %d texts", core.ErrEmbeddingCountMismatch, len(vectors), len(items))
	}

	entries := make([]core.StoredEntry, len(items))
	for i, item := range items {
		entries[i] = core.StoredEntry{Key: item.Key, Text: item.Text, Vector: vectors[i]}
	}
	return s.StoreEmbedded(entries)
}

// StoreEmbedded appends records whose vectors were computed elsewhere, e.g.
// by a bulk loader that parallelizes embedding. All entries must share one
// dimension, and it must match the file's header dimension when the file
// already exists.
func (s *Store) StoreEmbedded(entries []core.StoredEntry) error {
	if len(entries) == 0 {
		return core.ErrEmptyBatch
	}

	dimension := len(entries[0].Vector)
	for _, e := range entries {
		if err := core.ValidateKey(e.Key); err != nil {
			return err
		}
		if len(e.Vector) != dimension {
			return fmt.Errorf("%w: batch mixes dimensions %d and %d", core.ErrDimensionMismatch, dimension, len(e.Vector))
		}
	}

	if err := s.ensureHeader(uint32(dimension)); err != nil {
		return err
	}

	s.logger.Debug("storing batch", "count", len(entries), "dimension", dimension)
	return embfile.AppendRecords(s.path, entries)
}

// Get returns the latest entry stored under key. Because the scan runs
// newest-first, the first match is the effective value; no timestamp
// comparison is involved. A store file that does not exist yet reports
// ErrNotFound, the same as a key that was never written.
func (s *Store) Get(ctx context.Context, key string) (core.StoredEntry, error) {
	if err := core.ValidateKey(key); err != nil {
		return core.StoredEntry{}, err
	}

	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return core.StoredEntry{}, fmt.Errorf("%w: key %q", storage.ErrNotFound, key)
		}
		return core.StoredEntry{}, err
	}

	sc, err := embfile.NewReverseScanner(s.path, embfile.WithChunkSize(s.chunkSize))
	if err != nil {
		return core.StoredEntry{}, err
	}
	defer sc.Close()

	for sc.Scan() {
		if entry := sc.Entry(); entry.Key == key {
			return entry, nil
		}
	}
	if err := sc.Err(); err != nil {
		return core.StoredEntry{}, err
	}

	return core.StoredEntry{}, fmt.Errorf("%w: key %q", storage.ErrNotFound, key)
}

// SearchOption configures a Search call.
type SearchOption func(*searchConfig)

type searchConfig struct {
	limit         int
	minSimilarity float32
}

// WithLimit sets the maximum number of results.
// Default is DefaultSearchLimit.
func WithLimit(limit int) SearchOption {
	return func(c *searchConfig) {
		c.limit = limit
	}
}

// WithMinSimilarity sets the similarity threshold below which entries are
// discarded. Default is DefaultMinSimilarity.
func WithMinSimilarity(min float32) SearchOption {
	return func(c *searchConfig) {
		c.minSimilarity = min
	}
}

// Search embeds the query, scores every deduplicated entry with cosine
// similarity, and returns up to the configured limit of candidates,
// highest similarity first. A store file that does not exist yet produces
// an empty result, not an error; format errors always surface, so "no
// matches" and "unreadable store" stay distinguishable.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]core.Candidate, error) {
	cfg := searchConfig{
		limit:         DefaultSearchLimit,
		minSimilarity: DefaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := core.ValidateSearchParams(query, cfg.limit, cfg.minSimilarity); err != nil {
		return nil, err
	}

	embedder, err := s.embedder()
	if err != nil {
		return nil, err
	}

	queryVector, err := embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrProvider, err)
	}

	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return []core.Candidate{}, nil
		}
		return nil, err
	}

	sc, err := embfile.NewReverseScanner(s.path, embfile.WithChunkSize(s.chunkSize))
	if err != nil {
		return nil, err
	}
	defer sc.Close()

	candidates := search.NewCandidateSet(cfg.limit)
	for sc.Scan() {
		entry := sc.Entry()
		similarity, err := core.CosineSimilarity(queryVector, entry.Vector)
		if err != nil {
			return nil, err
		}
		if similarity < cfg.minSimilarity {
			continue
		}
		if err := candidates.Add(entry.Key, similarity); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return candidates.Entries(), nil
}

// Info reads the header and counts unique entries with one reverse scan.
// Reports ErrNotFound if the store file has not been created yet.
func (s *Store) Info(ctx context.Context) (StoreInfo, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return StoreInfo{}, fmt.Errorf("%w: store file %q", storage.ErrNotFound, s.path)
		}
		return StoreInfo{}, err
	}

	sc, err := embfile.NewReverseScanner(s.path, embfile.WithChunkSize(s.chunkSize))
	if err != nil {
		return StoreInfo{}, err
	}
	defer sc.Close()

	count := 0
	for sc.Scan() {
		count++
	}
	if err := sc.Err(); err != nil {
		return StoreInfo{}, err
	}

	header := sc.Header()
	return StoreInfo{
		Version:   header.Version,
		Dimension: header.Dimension,
		Entries:   count,
	}, nil
}

// Count returns the number of unique keys in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return 0, err
	}
	return info.Entries, nil
}

// ensureHeader writes the header if the file does not exist, and otherwise
// verifies the file's dimension against the incoming one. Dimension is
// constant for the lifetime of a file.
func (s *Store) ensureHeader(dimension uint32) error {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("creating store file", "path", s.path, "dimension", dimension)
			return embfile.WriteHeader(s.path, dimension)
		}
		return err
	}

	header, err := embfile.ReadHeader(s.path)
	if err != nil {
		return err
	}
	if header.Dimension != dimension {
		return fmt.Errorf("%w: file dimension %d, embedding dimension %d", core.ErrDimensionMismatch, header.Dimension, dimension)
	}
	return nil
}
