// Command pricelist-ingest applies supplier price list exports to the service
// catalog. Exports are gzip-compressed CSV files with one "item_id,price" row
// per line; suppliers often ship overlapping files, so rows for an item that
// was already priced in this run are skipped.
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
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/freshfold/laundrokart/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
)

type priceUpdate struct {
	itemID string
	price  decimal.Decimal
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.csv.gz price list files")
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
		slog.Error("price list ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("price list ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "list price list files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.csv.gz files in %s", dataDir)
	}

	slog.Info("scanning price lists", slog.Int("files", len(files)))

	updates, err := collectUpdates(ctx, files)
	if err != nil {
		return errors.Wrap(err, "collect price updates")
	}

	slog.Info("distinct item prices found", slog.Int("count", len(updates)))

	if len(updates) == 0 {
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return writePrices(ctx, repository.NewCatalogRepository(pool), updates)
}

// collectUpdates streams all files concurrently. The first row seen for an
// item wins; the bloom filter short-circuits the vast majority of repeats
// before touching the shared map.
func collectUpdates(ctx context.Context, files []string) ([]priceUpdate, error) {
	var (
		mu      sync.Mutex
		seen    = bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		applied = make(map[string]struct{})
		updates []priceUpdate
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(func() error {
			var count uint64
			err := streamGzFile(ctx, f, func(line string) error {
				count++
				if count%progressEvery == 0 {
					slog.Info("scan progress", slog.String("file", f), slog.Uint64("rows", count))
				}

				itemID, priceStr, ok := strings.Cut(line, ",")
				if !ok {
					return nil
				}
				price, err := decimal.NewFromString(strings.TrimSpace(priceStr))
				if err != nil || price.IsNegative() {
					return nil
				}
				itemID = strings.TrimSpace(itemID)
				if itemID == "" {
					return nil
				}

				mu.Lock()
				defer mu.Unlock()
				if seen.TestString(itemID) {
					// Possible bloom false positive: confirm against the map.
					if _, dup := applied[itemID]; dup {
						return nil
					}
				}
				seen.AddString(itemID)
				applied[itemID] = struct{}{}
				updates = append(updates, priceUpdate{itemID: itemID, price: price})
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "scan %s", f)
			}

			slog.Info("scan complete", slog.String("file", f), slog.Uint64("rows", count))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return updates, nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string) error) error {
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

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// writePrices applies the collected updates to the catalog.
func writePrices(ctx context.Context, catalog *repository.CatalogRepository, updates []priceUpdate) error {
	slog.Info("writing prices to database", slog.Int("count", len(updates)))

	for i, u := range updates {
		if err := catalog.UpdateItemPrice(ctx, u.itemID, u.price); err != nil {
			return errors.Wrapf(err, "update price of item %s", u.itemID)
		}

		if (i+1)%100 == 0 || i+1 == len(updates) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(updates)))
		}
	}

	return nil
}
