package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/storage/postgres"
)

func main() {
	var (
		dataDir     string
		databaseURL string
		cfg         ingestConfig
		dryRun      bool
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz coupon batches")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.UintVar(&cfg.Capacity, "bloom-capacity", 1_000_000, "expected codes per file")
	flag.Float64Var(&cfg.FPRate, "bloom-fp-rate", 0.001, "bloom filter false positive rate")
	flag.IntVar(&cfg.BatchSize, "batch-size", 500, "coupons per upsert")
	flag.BoolVar(&dryRun, "dry-run", false, "report without writing to the database")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" && !dryRun {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, dataDir, databaseURL, dryRun); err != nil {
		slog.Error("coupon ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon ingest completed successfully")
}

func run(ctx context.Context, cfg ingestConfig, dataDir, databaseURL string, dryRun bool) error {
	files, err := batchFiles(dataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no %s files in %s", batchPattern, dataDir)
	}

	slog.Info("planning ingest", slog.Int("files", len(files)))
	r, err := plan(ctx, cfg, files)
	if err != nil {
		return err
	}
	for _, code := range r.Duplicates {
		slog.Warn("code defined in more than one file, skipping", slog.String("code", code))
	}
	slog.Info("plan complete",
		slog.Int("lines", r.Lines),
		slog.Int("invalid", r.Invalid),
		slog.Int("duplicates", len(r.Duplicates)),
		slog.Int("coupons", len(r.Coupons)),
	)

	if dryRun || len(r.Coupons) == 0 {
		return nil
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

	if err := writeCoupons(ctx, postgres.NewCouponRepository(pool), r.Coupons, cfg.BatchSize); err != nil {
		return errors.Wrap(err, "write coupons")
	}
	return nil
}
