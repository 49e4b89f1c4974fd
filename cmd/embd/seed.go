package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/poiesic/embd"
	"github.com/poiesic/embd/ai"
	"github.com/poiesic/embd/ai/openai"
	"github.com/poiesic/embd/loader"
	"github.com/urfave/cli/v2"
)

// Built-in seed corpus, used when no source file is given.
var sentences = []string{
	"The quick brown fox jumps over the lazy dog.",
	"A lighthouse keeper counted ships until the fog swallowed the horizon.",
	"Machine learning models improve with more training data.",
	"The ferry crossed the strait twice a day, rain or shine.",
	"Fresh basil transforms an ordinary tomato sauce.",
	"The observatory tracked the comet for eleven consecutive nights.",
	"Cyclists climbed the mountain pass before the morning heat.",
	"The orchestra tuned to a single sustained note.",
	"Compilers translate source code into machine instructions.",
	"The tide pools held starfish, anemones and tiny darting crabs.",
	"A well-placed index can turn a slow query into a fast one.",
	"The baker started the sourdough long before sunrise.",
	"Glaciers carve valleys over tens of thousands of years.",
	"The chess match ended in a hard-fought draw.",
	"Caching trades memory for latency.",
	"The violinist practiced the same passage forty times.",
	"Monarch butterflies navigate thousands of miles by instinct.",
	"A good error message names the thing that went wrong.",
	"The harbor smelled of salt, diesel and fresh paint.",
	"Distributed systems fail in ways single machines never do.",
	"The archivist catalogued letters from three centuries.",
	"Rainwater collected in the old stone cistern.",
	"Binary search needs sorted input to work.",
	"The vineyard terraces followed the curve of the hillside.",
	"Honeybees communicate direction through dance.",
	"The night train rolled through towns with unlit stations.",
	"Hash functions map arbitrary data to fixed-size values.",
	"The potter centered the clay before pulling the walls.",
	"Migrating geese fly in a ragged, shifting vee.",
	"Load testing revealed the bottleneck in the session layer.",
	"The climbers roped up before crossing the ice field.",
	"An append-only log makes recovery straightforward.",
	"The market stalls sold figs, olives and rounds of cheese.",
	"Latency hides in the tail of the distribution.",
	"The librarian knew the shelves better than the catalog did.",
	"Wind turbines turned slowly on the distant ridge.",
	"Immutable snapshots simplify backup strategies.",
	"The fisherman mended his nets on the quay.",
	"A schema migration should be reversible when possible.",
	"The desert bloomed for one week after the rains.",
	"Connection pools limit pressure on the database.",
	"The carpenter measured twice and cut once.",
	"Checksums catch corruption that silence would hide.",
	"The kite surfer waited all morning for the wind to build.",
	"Log rotation keeps disks from filling overnight.",
	"The stone bridge had outlasted every wooden one before it.",
	"Vector similarity turns meaning into geometry.",
	"The last bus left the square at midnight exactly.",
}

func seedCommand(c *cli.Context) error {
	texts, err := seedTexts(c.String("src"))
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no seed texts to load")
	}

	cfg := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
	)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid embedding configuration: %w", err)
	}

	provider, err := openai.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	store, err := embd.NewStore(c.String("file"), embd.WithProvider(provider))
	if err != nil {
		return err
	}
	defer store.Close()

	progress := loader.NewProgressTracker(os.Stderr, len(texts), c.Int("report-interval"))

	ldr, err := loader.NewLoader(store, provider.Embedder(),
		loader.WithBatchSize(c.Int("batch-size")),
		loader.WithPoolSize(c.Int("pool-size")),
		loader.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		loader.WithProgress(progress),
	)
	if err != nil {
		return err
	}
	defer ldr.Release()

	progress.Start()
	loaded, err := ldr.Load(context.Background(), texts)
	progress.Finish()
	if err != nil {
		return fmt.Errorf("seeding failed after %d entries: %w", loaded, err)
	}

	fmt.Fprintf(os.Stderr, "loaded %d entries in %s\n", loaded, progress.Elapsed().Round(time.Millisecond))
	return nil
}

// seedTexts returns lines from the source file, or the built-in corpus when
// src is empty. Blank lines are skipped.
func seedTexts(src string) ([]string, error) {
	if src == "" {
		return sentences, nil
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return texts, nil
}
