package loader

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/embd/ai"
	"github.com/poiesic/embd/core"
)

const (
	// DefaultBatchSize is the number of texts embedded per provider call.
	DefaultBatchSize = 32

	// DefaultMaxAttempts is the number of embedding attempts per batch.
	DefaultMaxAttempts = 3

	// DefaultRetryBaseDelay is the base delay for embedding retries.
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// Sink receives batches of pre-embedded entries. *embd.Store satisfies it.
// Implementations are not required to be safe for concurrent use; the loader
// serializes calls.
type Sink interface {
	StoreEmbedded(entries []core.StoredEntry) error
}

// Loader bulk-loads texts into a sink. Batches are embedded concurrently on a
// worker pool while writes to the sink stay serialized, preserving the
// append-only single-writer discipline of the underlying file.
//
// Keys are derived from content, so reloading the same corpus overwrites
// rather than duplicates.
type Loader struct {
	sink           Sink
	embedder       ai.Embedder
	pool           *ants.Pool
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
	progress       *ProgressTracker
	logger         *slog.Logger

	writeMu sync.Mutex
}

// Option configures a Loader.
type Option func(*Loader) error

// WithBatchSize sets the number of texts embedded per provider call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}
		l.batchSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}

		if l.pool != nil {
			l.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		l.pool = pool
		return nil
	}
}

// WithRetry configures retry behavior for embedding calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(l *Loader) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		l.maxAttempts = maxAttempts
		l.retryBaseDelay = baseDelay
		return nil
	}
}

// WithProgress attaches a progress tracker, updated as batches land.
func WithProgress(tracker *ProgressTracker) Option {
	return func(l *Loader) error {
		l.progress = tracker
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a new bulk loader.
func NewLoader(sink Sink, embedder ai.Embedder, opts ...Option) (*Loader, error) {
	if sink == nil {
		return nil, ErrSinkRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		sink:           sink,
		embedder:       embedder,
		pool:           pool,
		batchSize:      DefaultBatchSize,
		maxAttempts:    DefaultMaxAttempts,
		retryBaseDelay: DefaultRetryBaseDelay,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(l); optErr != nil {
			l.Release()
			return nil, optErr
		}
	}

	return l, nil
}

// Load embeds texts in batches and stores the resulting entries. It returns
// the number of entries written. Batches run concurrently; writes are
// serialized. The first error stops submission of further work, but batches
// already in flight complete.
func (l *Loader) Load(ctx context.Context, texts []string) (int, error) {
	if len(texts) == 0 {
		return 0, nil
	}

	l.logger.Info("loading texts", "count", len(texts), "batchSize", l.batchSize)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		loaded   int
		firstErr error
	)

	for start := 0; start < len(texts); start += l.batchSize {
		end := min(start+l.batchSize, len(texts))
		batch := texts[start:end]

		mu.Lock()
		stop := firstErr != nil
		mu.Unlock()
		if stop || ctx.Err() != nil {
			break
		}

		wg.Add(1)
		submitErr := l.pool.Submit(func() {
			defer wg.Done()

			n, err := l.loadBatch(ctx, batch)

			mu.Lock()
			defer mu.Unlock()
			loaded += n
			if err != nil && firstErr == nil {
				firstErr = err
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	return loaded, firstErr
}

// loadBatch embeds one batch and writes it to the sink.
func (l *Loader) loadBatch(ctx context.Context, texts []string) (int, error) {
	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = l.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, l.maxAttempts, l.retryBaseDelay)
	if err != nil {
		l.logger.Error("error embedding batch", "size", len(texts), "err", err)
		return 0, err
	}

	if len(vectors) != len(texts) {
		return 0, core.ErrEmbeddingCountMismatch
	}

	entries := make([]core.StoredEntry, len(texts))
	for i, text := range texts {
		entries[i] = core.StoredEntry{
			Key:    core.KeyFromContent(text),
			Text:   text,
			Vector: vectors[i],
		}
	}

	l.writeMu.Lock()
	err = l.sink.StoreEmbedded(entries)
	l.writeMu.Unlock()
	if err != nil {
		return 0, err
	}

	if l.progress != nil {
		l.progress.Increment(len(entries))
	}
	return len(entries), nil
}

// Release releases the worker pool.
// The loader should not be used after calling Release.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}
