// Command pricefeed-ingest loads supplier ingredient price feeds into the
// database. Feeds are large gzipped files of pipe-separated lines:
//
//	<ingredient-id>|<name>|<unit>|<price>|<supplier-id>
//
// Suppliers re-export full dumps, so the same ingredient appears in many
// files. Files are streamed concurrently; a bloom filter drops IDs that were
// already written so only the first occurrence of each ingredient is kept.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mealkart/mealkart/internal/storage/postgres"
)

const (
	bloomCapacity = 50_000_000
	bloomFPR      = 0.001
	batchSize     = 1000
	progressEvery = 1_000_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.gz price feed files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("price feed ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("price feed ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no .gz feed files in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewPriceFeedRepository(pool)

	slog.Info("ingesting feeds", slog.Int("files", len(files)))

	// Readers parse lines concurrently; a single writer deduplicates and
	// batches, so the bloom filter needs no locking.
	entries := make(chan postgres.IngredientPrice, 4*batchSize)

	g, ctx := errgroup.WithContext(ctx)

	readers, readCtx := errgroup.WithContext(ctx)
	for _, path := range files {
		readers.Go(readFeed(readCtx, path, entries))
	}
	g.Go(func() error {
		defer close(entries)
		return readers.Wait()
	})
	g.Go(writeEntries(ctx, repo, entries))

	return g.Wait()
}

func readFeed(ctx context.Context, path string, out chan<- postgres.IngredientPrice) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		name := filepath.Base(path)
		var lines, parsed uint64

		scanner := bufio.NewScanner(gz)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}

			lines++
			if lines%progressEvery == 0 {
				slog.Info("read progress", slog.String("file", name), slog.Uint64("lines", lines))
			}

			entry, ok := parseLine(scanner.Text())
			if !ok {
				continue
			}
			parsed++

			select {
			case out <- entry:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("file complete",
			slog.String("file", name),
			slog.Uint64("lines", lines),
			slog.Uint64("parsed", parsed),
		)
		return nil
	}
}

// parseLine splits one feed line into an entry, rejecting malformed rows.
func parseLine(line string) (postgres.IngredientPrice, bool) {
	fields := strings.Split(line, "|")
	if len(fields) != 5 {
		return postgres.IngredientPrice{}, false
	}

	id := strings.TrimSpace(fields[0])
	if id == "" {
		return postgres.IngredientPrice{}, false
	}

	price, err := decimal.NewFromString(strings.TrimSpace(fields[3]))
	if err != nil || price.IsNegative() {
		return postgres.IngredientPrice{}, false
	}

	return postgres.IngredientPrice{
		ID:       id,
		Name:     strings.TrimSpace(fields[1]),
		Unit:     strings.TrimSpace(fields[2]),
		Price:    price,
		Supplier: strings.TrimSpace(fields[4]),
	}, true
}

func writeEntries(ctx context.Context, repo *postgres.PriceFeedRepository, entries <-chan postgres.IngredientPrice) func() error {
	return func() error {
		seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		batch := make([]postgres.IngredientPrice, 0, batchSize)
		var written uint64

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := repo.UpsertBatch(ctx, batch); err != nil {
				return errors.Wrap(err, "upsert batch")
			}
			written += uint64(len(batch))
			batch = batch[:0]
			return nil
		}

		for entry := range entries {
			// A bloom positive may be false, so a duplicate skip can drop a
			// genuinely new row at the configured false positive rate. For
			// price feeds that error margin is acceptable.
			if seen.TestAndAddString(entry.ID) {
				continue
			}

			batch = append(batch, entry)
			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return err
				}
				if written%progressEvery < batchSize {
					slog.Info("write progress", slog.Uint64("written", written))
				}
			}
		}

		if err := flush(); err != nil {
			return err
		}

		slog.Info("write complete", slog.Uint64("written", written))
		return nil
	}
}
