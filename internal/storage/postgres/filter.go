package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/coupon"
)

// CodeSource lists every known coupon code.
type CodeSource interface {
	Codes(ctx context.Context) ([]string, error)
}

// CodeFilter answers FindByCode for codes that certainly do not exist
// without touching the database. Codes that may exist are passed through.
//
// The filter is rebuilt by Load and grows with every List, so a code that
// was ever listed is never ruled out. Other codes stored in between are
// invisible until the next Load.
type CodeFilter struct {
	coupon.Repository

	source   CodeSource
	capacity uint
	fpRate   float64

	mu     sync.RWMutex
	filter *bloom.BloomFilter // nil until loaded
}

var _ coupon.Repository = (*CodeFilter)(nil)

// NewCodeFilter wraps repo. Until Load succeeds every lookup is passed through.
func NewCodeFilter(repo coupon.Repository, source CodeSource, capacity uint, fpRate float64) *CodeFilter {
	return &CodeFilter{
		Repository: repo,
		source:     source,
		capacity:   capacity,
		fpRate:     fpRate,
	}
}

// Load rebuilds the filter from the code source.
func (f *CodeFilter) Load(ctx context.Context) error {
	codes, err := f.source.Codes(ctx)
	if err != nil {
		return errors.Wrap(err, "load coupon codes")
	}
	filter := bloom.NewWithEstimates(max(f.capacity, uint(len(codes))), f.fpRate)
	for _, code := range codes {
		filter.AddString(coupon.NormalizeCode(code))
	}

	f.mu.Lock()
	f.filter = filter
	f.mu.Unlock()
	return nil
}

// MayContain reports whether code might be a stored coupon.
func (f *CodeFilter) MayContain(code string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.filter == nil {
		return true
	}
	return f.filter.TestString(coupon.NormalizeCode(code))
}

// FindByCode returns coupon.ErrNotFound for codes the filter rules out.
func (f *CodeFilter) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	if !f.MayContain(code) {
		return nil, coupon.ErrNotFound
	}
	return f.Repository.FindByCode(ctx, code)
}

// List returns every coupon and adds their codes to the loaded filter.
func (f *CodeFilter) List(ctx context.Context) ([]coupon.Coupon, error) {
	coupons, err := f.Repository.List(ctx)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filter != nil {
		for _, c := range coupons {
			f.filter.AddString(coupon.NormalizeCode(c.Code))
		}
	}
	return coupons, nil
}

// Run reloads the filter every interval until ctx is done.
func (f *CodeFilter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Load(ctx); err != nil && ctx.Err() == nil {
				zctx.From(ctx).Warn("Coupon code filter reload failed", zap.Error(err))
			}
		}
	}
}
