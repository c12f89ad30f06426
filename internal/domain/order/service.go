package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/product"
)

// ErrUserRequired is returned when a coupon is used without identifying the
// user, since per-user caps cannot be enforced then.
var ErrUserRequired = errors.New("user id required to redeem a coupon")

// Quoter prices a selection. It is satisfied by *checkout.Service.
type Quoter interface {
	Quote(ctx context.Context, sel []checkout.Selection, code string) (*checkout.Quote, error)
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Items      []checkout.Selection
	CouponCode string
	UserID     string
}

// PlaceOrderResult holds the output of a successfully placed order.
type PlaceOrderResult struct {
	Order    *Order
	Products []product.Product
}

// Service encapsulates order placement business logic.
type Service struct {
	quoter Quoter
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(quoter Quoter, orders Repository) *Service {
	return &Service{
		quoter: quoter,
		orders: orders,
		now:    time.Now,
	}
}

// PlaceOrder prices the selection through the same path as the order
// summary, rejects a coupon that no longer qualifies, then persists the
// order together with the coupon redemption.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	code := coupon.NormalizeCode(req.CouponCode)
	if code != "" && req.UserID == "" {
		return nil, ErrUserRequired
	}

	q, err := s.quoter.Quote(ctx, req.Items, code)
	if err != nil {
		return nil, err
	}
	if code != "" && !q.Discount.Applied() {
		return nil, &coupon.RejectionError{Code: code, Reason: q.Discount.Rejection}
	}

	items := make([]OrderItem, len(q.Items))
	for i, li := range q.Items {
		items[i] = OrderItem{
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		}
	}

	o := &Order{
		ID:         uuid.New().String(),
		UserID:     req.UserID,
		Items:      items,
		Subtotal:   q.Subtotal,
		Discount:   q.Discount.DiscountAmount,
		Total:      q.Total,
		CouponCode: code,
		CreatedAt:  s.now().UTC(),
	}

	var r *Redemption
	if q.Coupon != nil {
		r = &Redemption{Code: q.Coupon.Code, UserID: req.UserID}
	}

	if err := s.orders.Create(ctx, o, r); err != nil {
		switch {
		case errors.Is(err, ErrUsageExhausted):
			return nil, &coupon.RejectionError{Code: code, Reason: coupon.ReasonUsageExhausted}
		case errors.Is(err, ErrPerUserLimitReached):
			return nil, &coupon.RejectionError{Code: code, Reason: coupon.ReasonPerUserLimitReached}
		}
		return nil, errors.Wrap(err, "create order")
	}

	zctx.From(ctx).Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("coupon", o.CouponCode),
		zap.Int64("total", o.Total),
	)
	return &PlaceOrderResult{
		Order:    o,
		Products: q.Products,
	}, nil
}
