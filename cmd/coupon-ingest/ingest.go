package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/bits"
	"path/filepath"
	"slices"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/couponfile"
	"github.com/xenking/storefront/internal/domain/coupon"
)

const (
	batchPattern  = "*.jsonl.gz"
	maxBatchFiles = bits.UintSize
	progressEvery = 100_000
)

type ingestConfig struct {
	Capacity  uint
	FPRate    float64
	BatchSize int
}

// report is the outcome of planning an ingest.
type report struct {
	Files      int
	Lines      int
	Invalid    int
	Coupons    []coupon.Coupon
	Duplicates []string
}

// batchFiles lists the batch files in dir in name order.
func batchFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, batchPattern))
	if err != nil {
		return nil, errors.Wrap(err, "glob batch files")
	}
	if len(files) > maxBatchFiles {
		return nil, errors.Errorf("too many batch files: %d (max %d)", len(files), maxBatchFiles)
	}
	slices.Sort(files)
	return files, nil
}

// plan reads every file twice. Pass 1 builds a bloom filter of the codes in
// each file. Pass 2 decodes the definitions and marks codes that another
// file's filter may contain; a code is a duplicate once at least two files
// mark it.
func plan(ctx context.Context, cfg ingestConfig, files []string) (*report, error) {
	filters, err := buildFilters(ctx, cfg, files)
	if err != nil {
		return nil, errors.Wrap(err, "build filters")
	}

	scans := make([]fileScan, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			s, err := scanDefinitions(gctx, i, path, filters)
			if err != nil {
				return errors.Wrapf(err, "scan %s", path)
			}
			scans[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, s := range scans {
		for code, mask := range s.candidates {
			merged[code] |= mask
		}
	}

	r := &report{Files: len(files)}
	dup := make(map[string]bool)
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			dup[code] = true
			r.Duplicates = append(r.Duplicates, code)
		}
	}
	for _, s := range scans {
		r.Lines += s.lines
		r.Invalid += s.invalid
		for code, c := range s.coupons {
			if !dup[code] {
				r.Coupons = append(r.Coupons, c)
			}
		}
	}
	slices.Sort(r.Duplicates)
	slices.SortFunc(r.Coupons, func(a, b coupon.Coupon) int {
		switch {
		case a.Code < b.Code:
			return -1
		case a.Code > b.Code:
			return 1
		}
		return 0
	})
	return r, nil
}

func buildFilters(ctx context.Context, cfg ingestConfig, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(cfg.Capacity, cfg.FPRate)
			var count int
			err := couponfile.ScanGzipFile(gctx, path, func(l couponfile.Line) error {
				var head struct {
					Code string `json:"code"`
				}
				if json.Unmarshal(l.Data, &head) != nil {
					return nil
				}
				if code := coupon.NormalizeCode(head.Code); code != "" {
					filter.AddString(code)
					count++
				}
				return nil
			})
			if err != nil {
				return err
			}
			slog.Info("pass 1 complete", slog.String("file", path), slog.Int("codes", count))
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

type fileScan struct {
	lines      int
	invalid    int
	coupons    map[string]coupon.Coupon
	candidates map[string]uint
}

func scanDefinitions(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) (fileScan, error) {
	s := fileScan{
		coupons:    make(map[string]coupon.Coupon),
		candidates: make(map[string]uint),
	}
	fileBit := uint(1) << uint(idx)

	err := couponfile.ScanGzipFile(ctx, path, func(l couponfile.Line) error {
		s.lines++
		if s.lines%progressEvery == 0 {
			slog.Info("pass 2 progress", slog.String("file", path), slog.Int("lines", s.lines))
		}
		c, err := couponfile.ParseLine(l.Data)
		if err != nil {
			s.invalid++
			slog.Warn("skipping invalid definition",
				slog.String("file", path),
				slog.Int("line", l.Number),
				slog.String("error", err.Error()),
			)
			return nil
		}
		if _, seen := s.coupons[c.Code]; seen {
			slog.Warn("code repeated within file, keeping last",
				slog.String("file", path),
				slog.String("code", c.Code),
			)
		}
		s.coupons[c.Code] = c

		for j, f := range filters {
			if j != idx && f.TestString(c.Code) {
				s.candidates[c.Code] |= fileBit
				break
			}
		}
		return nil
	})
	return s, err
}

type couponWriter interface {
	Upsert(ctx context.Context, coupons []coupon.Coupon) error
}

// writeCoupons upserts coupons in batches of size.
func writeCoupons(ctx context.Context, w couponWriter, coupons []coupon.Coupon, size int) error {
	if size <= 0 {
		size = len(coupons)
	}
	for start := 0; start < len(coupons); start += size {
		end := min(start+size, len(coupons))
		if err := w.Upsert(ctx, coupons[start:end]); err != nil {
			return errors.Wrapf(err, "upsert coupons %d-%d", start, end)
		}
		slog.Info("write progress", slog.Int("written", end), slog.Int("total", len(coupons)))
	}
	return nil
}
