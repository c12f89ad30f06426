// Package checkout prices cart selections. It is the only place that turns
// repository data into coupon engine inputs, so the coupon panel, the order
// summary and order placement all see the same numbers.
package checkout

import (
	"context"
	"math"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/product"
)

// MaxQuantity bounds the quantity of a single selection entry.
const MaxQuantity = 10_000

// Selection is one requested cart entry.
type Selection struct {
	ProductID string
	Quantity  int64
}

// Quote is a priced selection with an optional coupon.
type Quote struct {
	Code     string
	Coupon   *coupon.Coupon // nil when no code was given or it is unknown
	Items    []coupon.LineItem
	Products []product.Product
	Subtotal int64
	Discount coupon.DiscountResult
	Total    int64
}

// codeFilter is implemented by coupon repositories that can rule out
// unknown codes without a query.
type codeFilter interface {
	MayContain(code string) bool
}

// Service prices selections against the current catalog and coupons.
type Service struct {
	categories catalog.Repository
	products   product.Repository
	coupons    coupon.Repository
	now        func() time.Time

	tracer     trace.Tracer
	quotes     metric.Int64Counter
	rejections metric.Int64Counter
}

// NewService creates a checkout Service.
func NewService(
	categories catalog.Repository,
	products product.Repository,
	coupons coupon.Repository,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*Service, error) {
	meter := mp.Meter("storefront/checkout")
	quotes, err := meter.Int64Counter("storefront.coupon.quotes",
		metric.WithDescription("Coupon quotes computed"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "quotes counter")
	}
	rejections, err := meter.Int64Counter("storefront.coupon.rejections",
		metric.WithDescription("Coupon quotes rejected, by reason"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "rejections counter")
	}
	return &Service{
		categories: categories,
		products:   products,
		coupons:    coupons,
		now:        time.Now,
		tracer:     tp.Tracer("storefront/checkout"),
		quotes:     quotes,
		rejections: rejections,
	}, nil
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// LoadIndex fetches categories and builds the ancestor index. Malformed
// category data is logged and the index is still returned.
func (s *Service) LoadIndex(ctx context.Context) (*catalog.Index, error) {
	nodes, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	idx := catalog.BuildIndex(nodes)
	if faults := idx.Faults(); len(faults) > 0 {
		lg := zctx.From(ctx)
		for _, f := range faults {
			lg.Warn("Malformed category data",
				zap.String("category_id", f.CategoryID),
				zap.String("kind", string(f.Kind)),
				zap.Error(f),
			)
		}
	}
	return idx, nil
}

// LoadSnapshot fetches categories and coupons in parallel.
func (s *Service) LoadSnapshot(ctx context.Context) (*cart.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.LoadSnapshot")
	defer span.End()

	var (
		idx     *catalog.Index
		coupons []coupon.Coupon
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		idx, err = s.LoadIndex(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		coupons, err = s.coupons.List(gctx)
		if err != nil {
			return errors.Wrap(err, "list coupons")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("categories", idx.Len()),
		attribute.Int("coupons", len(coupons)),
	)
	return cart.NewSnapshot(idx, coupons), nil
}

// ResolveSelection validates quantities, fetches products in a single batch
// and builds line items in request order.
func (s *Service) ResolveSelection(ctx context.Context, sel []Selection) ([]coupon.LineItem, []product.Product, error) {
	if len(sel) == 0 {
		return nil, nil, ErrEmptySelection
	}

	ids := make([]string, len(sel))
	for i, item := range sel {
		if item.Quantity <= 0 || item.Quantity > MaxQuantity {
			return nil, nil, &InvalidQuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		ids[i] = item.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	var subtotal int64
	items := make([]coupon.LineItem, len(sel))
	products := make([]product.Product, len(sel))
	for i, item := range sel {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		line, ok := lineTotal(p.Price, item.Quantity)
		if !ok || subtotal > math.MaxInt64-line {
			return nil, nil, ErrTotalOutOfRange
		}
		subtotal += line
		products[i] = p
		items[i] = p.LineItem(item.Quantity)
	}
	return items, products, nil
}

// lineTotal multiplies a non-negative price by a positive quantity,
// reporting false on overflow.
func lineTotal(price, qty int64) (int64, bool) {
	if price < 0 || (price > 0 && qty > math.MaxInt64/price) {
		return 0, false
	}
	return price * qty, true
}

// EligibleCoupons lists the coupons worth showing for the selection, each
// with the discount it would produce.
func (s *Service) EligibleCoupons(ctx context.Context, sel []Selection) ([]coupon.Offer, error) {
	items, _, err := s.ResolveSelection(ctx, sel)
	if err != nil {
		return nil, err
	}
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Eligible(items, s.now()), nil
}

// Quote prices the selection and, when code is not empty, applies the
// coupon. A rejected coupon is reported in Quote.Discount.Rejection with a
// zero discount; it is not an error.
func (s *Service) Quote(ctx context.Context, sel []Selection, code string) (*Quote, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Quote")
	defer span.End()

	items, products, err := s.ResolveSelection(ctx, sel)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		Code:     coupon.NormalizeCode(code),
		Items:    items,
		Products: products,
		Subtotal: coupon.Subtotal(items),
	}
	if q.Code != "" {
		if err := s.applyCode(ctx, q); err != nil {
			span.RecordError(err)
			return nil, err
		}
		s.record(ctx, q)
	}
	q.Total = q.Subtotal - q.Discount.DiscountAmount
	return q, nil
}

// applyCode resolves q.Code against the same snapshot EligibleCoupons uses,
// so an offered coupon always quotes with the offered discount.
func (s *Service) applyCode(ctx context.Context, q *Quote) error {
	if f, ok := s.coupons.(codeFilter); ok && !f.MayContain(q.Code) {
		q.Discount = coupon.DiscountResult{Rejection: coupon.ReasonUnknownCode}
		return nil
	}
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	cp, ok := snap.Lookup(q.Code)
	if !ok {
		q.Discount = coupon.DiscountResult{Rejection: coupon.ReasonUnknownCode}
		return nil
	}
	q.Coupon = cp

	c, reason := cart.New(q.Items).Apply(snap, q.Code, s.now())
	if reason != coupon.ReasonNone {
		q.Discount = coupon.DiscountResult{
			ApplicableSubtotal: coupon.ApplicableSubtotal(q.Items, cp, snap.Index),
			Rejection:          reason,
		}
		return nil
	}
	q.Discount = c.Discount()
	return nil
}

func (s *Service) record(ctx context.Context, q *Quote) {
	s.quotes.Add(ctx, 1)
	if q.Discount.Applied() {
		return
	}
	s.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", string(q.Discount.Rejection)),
	))
	zctx.From(ctx).Debug("Coupon rejected",
		zap.String("code", q.Code),
		zap.String("reason", string(q.Discount.Rejection)),
	)
}
