// Package couponfile decodes coupon definitions as written by merchandisers:
// one JSON object per coupon, in seed files or gzip'd JSONL batches.
package couponfile

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/coupon"
)

// Definition is the file representation of a coupon.
type Definition struct {
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	DiscountType    string          `json:"discountType"`
	DiscountValue   decimal.Decimal `json:"discountValue"`
	MinOrderValue   int64           `json:"minOrderValue"`
	MaxUsage        *int64          `json:"maxUsage"`
	MaxUsagePerUser *int64          `json:"maxUsagePerUser"`
	StartDate       *time.Time      `json:"startDate"`
	ExpiryDate      time.Time       `json:"expiryDate"`
	IsActive        *bool           `json:"isActive"`
	Scope           string          `json:"scope"`
	ApplicableIDs   []string        `json:"applicableIds"`
}

// Coupon converts d to a validated coupon. The code is normalized, scope
// defaults to all, activity to true and the per-user cap to 1.
func (d Definition) Coupon() (coupon.Coupon, error) {
	c := coupon.Coupon{
		Code:            coupon.NormalizeCode(d.Code),
		Description:     d.Description,
		DiscountType:    coupon.DiscountType(d.DiscountType),
		DiscountValue:   d.DiscountValue,
		MinOrderValue:   d.MinOrderValue,
		MaxUsage:        d.MaxUsage,
		MaxUsagePerUser: 1,
		StartDate:       d.StartDate,
		ExpiryDate:      d.ExpiryDate,
		IsActive:        true,
		Scope:           coupon.Scope(d.Scope),
		ApplicableIDs:   coupon.NewIDSet(d.ApplicableIDs...),
	}
	if d.MaxUsagePerUser != nil {
		c.MaxUsagePerUser = *d.MaxUsagePerUser
	}
	if d.IsActive != nil {
		c.IsActive = *d.IsActive
	}
	if c.Scope == "" {
		c.Scope = coupon.ScopeAll
	}
	if err := c.Validate(); err != nil {
		return c, errors.Wrapf(err, "coupon %s", c.Code)
	}
	return c, nil
}

// ParseLine decodes a single JSONL line.
func ParseLine(line []byte) (coupon.Coupon, error) {
	var d Definition
	if err := json.Unmarshal(line, &d); err != nil {
		return coupon.Coupon{}, errors.Wrap(err, "decode definition")
	}
	return d.Coupon()
}

// Line is one non-empty line of a batch file.
type Line struct {
	Number int
	Data   []byte
}

// Scan calls fn for each non-empty line of r. Data is only valid during
// the call.
func Scan(ctx context.Context, r io.Reader, fn func(Line) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	n := 0
	for scanner.Scan() {
		n++
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := fn(Line{Number: n, Data: scanner.Bytes()}); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scan")
	}
	return nil
}

// ScanGzipFile streams a gzip'd JSONL file through Scan.
func ScanGzipFile(ctx context.Context, path string, fn func(Line) error) error {
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

	if err := Scan(ctx, gz, fn); err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	return nil
}
