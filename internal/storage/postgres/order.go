package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, user_id, items, subtotal, discount, total, coupon_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	// The UPDATE locks the coupon row until commit, which serializes all
	// redemptions of one coupon and makes the per-user count below exact.
	redeemCouponSQL = `UPDATE coupons SET usage_count = usage_count + 1
		WHERE code = $1 AND (max_usage IS NULL OR usage_count < max_usage)
		RETURNING max_usage_per_user`

	countUserRedemptionsSQL = `SELECT COUNT(*) FROM coupon_redemptions WHERE code = $1 AND user_id = $2`

	insertRedemptionSQL = `INSERT INTO coupon_redemptions (order_id, code, user_id, redeemed_at)
		VALUES ($1, $2, $3, $4)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and its coupon redemption in one transaction.
// The order items are serialized to JSON for storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, rd *order.Redemption) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if rd != nil {
		if err := redeem(ctx, tx, rd); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, itemsJSON, o.Subtotal, o.Discount, o.Total, o.CouponCode, o.CreatedAt,
	); err != nil {
		return errors.Wrapf(err, "create order %q", o.ID)
	}

	if rd != nil {
		if _, err := tx.Exec(ctx, insertRedemptionSQL, o.ID, rd.Code, rd.UserID, o.CreatedAt); err != nil {
			return errors.Wrapf(err, "record redemption of %q", rd.Code)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

func redeem(ctx context.Context, tx pgx.Tx, rd *order.Redemption) error {
	var perUser int64
	if err := tx.QueryRow(ctx, redeemCouponSQL, rd.Code).Scan(&perUser); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.ErrUsageExhausted
		}
		return errors.Wrapf(err, "increment usage of %q", rd.Code)
	}
	if perUser <= 0 {
		return nil
	}

	var used int64
	if err := tx.QueryRow(ctx, countUserRedemptionsSQL, rd.Code, rd.UserID).Scan(&used); err != nil {
		return errors.Wrapf(err, "count redemptions of %q", rd.Code)
	}
	if used >= perUser {
		return order.ErrPerUserLimitReached
	}
	return nil
}
