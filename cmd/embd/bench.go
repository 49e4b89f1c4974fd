package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/poiesic/embd"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func benchCommand(c *cli.Context) error {
	queries := c.Int("queries")
	concurrency := c.Int("concurrency")
	if queries < 1 {
		return fmt.Errorf("queries must be greater than 0")
	}
	if concurrency < 1 {
		return fmt.Errorf("concurrency must be greater than 0")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Count(context.Background())
	if err != nil {
		return fmt.Errorf("store is not readable: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("store is empty, run seed first")
	}

	var matched atomic.Int64

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(concurrency)

	start := time.Now()
	for i := 0; i < queries; i++ {
		query := sentences[i%len(sentences)]
		g.Go(func() error {
			results, err := store.Search(ctx, query,
				embd.WithLimit(c.Int("limit")),
				embd.WithMinSimilarity(0),
			)
			if err != nil {
				return err
			}
			matched.Add(int64(len(results)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}
	elapsed := time.Since(start)

	fmt.Fprintf(os.Stderr, "entries: %d\nqueries: %d\nconcurrency: %d\nresults: %d\nelapsed: %s\nthroughput: %.1f searches/s\n",
		count, queries, concurrency, matched.Load(), elapsed.Round(time.Millisecond),
		float64(queries)/elapsed.Seconds())
	return nil
}
