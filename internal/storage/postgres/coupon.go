package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/coupon"
)

const (
	couponColumns = `code, description, discount_type, discount_value, min_order_value,
		max_usage, usage_count, max_usage_per_user, start_date, expiry_date,
		is_active, applicable_scope, applicable_ids`

	listCouponsSQL = `SELECT ` + couponColumns + ` FROM coupons ORDER BY code`

	getCouponByCodeSQL = `SELECT ` + couponColumns + ` FROM coupons WHERE code = UPPER($1)`

	listCouponCodesSQL = `SELECT code FROM coupons`

	upsertCouponSQL = `INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description, discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value, min_order_value = EXCLUDED.min_order_value,
			max_usage = EXCLUDED.max_usage, max_usage_per_user = EXCLUDED.max_usage_per_user,
			start_date = EXCLUDED.start_date, expiry_date = EXCLUDED.expiry_date,
			is_active = EXCLUDED.is_active, applicable_scope = EXCLUDED.applicable_scope,
			applicable_ids = EXCLUDED.applicable_ids`

	deactivateCouponSQL = `UPDATE coupons SET is_active = FALSE WHERE code = UPPER($1)`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
// It returns inactive and expired coupons too; callers re-check lifecycle.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// List returns every coupon ordered by code.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// FindByCode looks up a coupon by its code (case-insensitive).
// Returns coupon.ErrNotFound when no coupon has that code.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}
	return &c, nil
}

// Codes returns every stored coupon code.
func (r *CouponRepository) Codes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listCouponCodesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list coupon codes")
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Upsert inserts or replaces coupon definitions in one batch. Usage
// counters of existing coupons are preserved.
func (r *CouponRepository) Upsert(ctx context.Context, coupons []coupon.Coupon) error {
	batch := &pgx.Batch{}
	for _, c := range coupons {
		batch.Queue(upsertCouponSQL,
			coupon.NormalizeCode(c.Code), c.Description, string(c.DiscountType), c.DiscountValue,
			c.MinOrderValue, c.MaxUsage, c.UsageCount, c.MaxUsagePerUser,
			c.StartDate, c.ExpiryDate, c.IsActive, string(c.Scope), idList(c.ApplicableIDs),
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upsert coupons")
	}
	return nil
}

// Deactivate switches a coupon off. Returns coupon.ErrNotFound for unknown codes.
func (r *CouponRepository) Deactivate(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, deactivateCouponSQL, code)
	if err != nil {
		return errors.Wrapf(err, "deactivate coupon %q", code)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c            coupon.Coupon
		discountType string
		scope        string
		ids          []string
	)
	err := row.Scan(
		&c.Code, &c.Description, &discountType, &c.DiscountValue, &c.MinOrderValue,
		&c.MaxUsage, &c.UsageCount, &c.MaxUsagePerUser, &c.StartDate, &c.ExpiryDate,
		&c.IsActive, &scope, &ids,
	)
	c.DiscountType = coupon.DiscountType(discountType)
	c.Scope = coupon.Scope(scope)
	c.ApplicableIDs = coupon.NewIDSet(ids...)
	return c, err
}

func idList(s coupon.IDSet) []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}
