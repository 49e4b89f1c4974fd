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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/embd"
	"github.com/poiesic/embd/ai"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "embd",
		Usage: "Append-only semantic vector store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Path to the store file",
				Value:   "./store.embd",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "store",
				Usage:     "Embed a text and store it under a key",
				ArgsUsage: "<key> <text>",
				Action:    storeCommand,
			},
			{
				Name:      "get",
				Usage:     "Retrieve the latest vector stored under a key",
				ArgsUsage: "<key>",
				Action:    getCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "vector",
						Usage: "Print the full vector instead of a summary",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Find keys whose vectors are most similar to a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   embd.DefaultSearchLimit,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum cosine similarity for a match",
						Value: embd.DefaultMinSimilarity,
					},
				},
			},
			{
				Name:   "info",
				Usage:  "Show store file format version, dimension and entry count",
				Action: infoCommand,
			},
			{
				Name:   "seed",
				Usage:  "Bulk-load sample or file-sourced texts into the store",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "src",
						Usage: "File of seed texts, one per line (built-in samples if omitted)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of texts to embed per provider call",
						Value: 16,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent embedding workers",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N texts",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "bench",
				Usage:  "Run concurrent searches against the store and report throughput",
				Action: benchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "queries",
						Usage: "Total number of searches to run",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of searches in flight at once",
						Value: 4,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Result limit per search",
						Value:   embd.DefaultSearchLimit,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openStore builds a store from the global flags.
func openStore(c *cli.Context) (*embd.Store, error) {
	cfg := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	return embd.NewStore(c.String("file"), embd.WithAIConfig(cfg))
}

func storeCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: store <key> <text>")
	}
	key, text := c.Args().Get(0), c.Args().Get(1)

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.StoreText(context.Background(), key, text); err != nil {
		return err
	}

	fmt.Printf("stored %q\n", key)
	return nil
}

func getCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: get <key>")
	}
	key := c.Args().Get(0)

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.Get(context.Background(), key)
	if err != nil {
		return err
	}

	fmt.Printf("key: %s\ndimension: %d\n", entry.Key, len(entry.Vector))
	if c.Bool("vector") {
		fmt.Printf("vector: %v\n", entry.Vector)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: search <query>")
	}
	query := c.Args().Get(0)

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(context.Background(), query,
		embd.WithLimit(c.Int("limit")),
		embd.WithMinSimilarity(float32(c.Float64("min-similarity"))),
	)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}

	for _, result := range results {
		fmt.Printf("%.4f  %s\n", result.Score, result.Key)
	}
	return nil
}

func infoCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	info, err := store.Info(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("file: %s\nformat version: %d\ndimension: %d\nentries: %d\n",
		c.String("file"), info.Version, info.Dimension, info.Entries)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
