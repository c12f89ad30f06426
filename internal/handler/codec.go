package handler

import (
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// cartRequest is the body of the cart and order endpoints.
type cartRequest struct {
	Items      []checkout.Selection
	CouponCode string
	UserID     string
}

func decodeCartRequest(w http.ResponseWriter, r *http.Request) (cartRequest, error) {
	var req cartRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return req, errors.Wrap(err, "read body")
	}
	err = jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				var sel checkout.Selection
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "productId":
						sel.ProductID, err = d.Str()
					case "quantity":
						sel.Quantity, err = d.Int64()
					default:
						err = d.Skip()
					}
					return err
				}); err != nil {
					return err
				}
				req.Items = append(req.Items, sel)
				return nil
			})
		case "couponCode":
			return decodeOptStr(d, &req.CouponCode)
		case "userId":
			return decodeOptStr(d, &req.UserID)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return req, errors.Wrap(err, "decode body")
	}
	return req, nil
}

func decodeOptStr(d *jx.Decoder, dst *string) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes {"code","message"} plus "reason" when reason is set.
func writeError(w http.ResponseWriter, status int, msg string, reason coupon.Reason) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(msg)
	if reason != coupon.ReasonNone {
		e.FieldStart("reason")
		e.Str(string(reason))
	}
	e.ObjEnd()
	writeJSON(w, status, &e)
}

func encodeOptStr(e *jx.Encoder, field string, v *string) {
	e.FieldStart(field)
	if v == nil {
		e.Null()
		return
	}
	e.Str(*v)
}

func (h *Handler) encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Int64(p.Price)
	encodeOptStr(e, "categoryId", p.CategoryID)
	e.FieldStart("image")
	e.ObjStart()
	e.FieldStart("thumbnail")
	e.Str(h.imageURL(p.Image.Thumbnail))
	e.FieldStart("mobile")
	e.Str(h.imageURL(p.Image.Mobile))
	e.FieldStart("tablet")
	e.Str(h.imageURL(p.Image.Tablet))
	e.FieldStart("desktop")
	e.Str(h.imageURL(p.Image.Desktop))
	e.ObjEnd()
	e.ObjEnd()
}

func encodeCategory(e *jx.Encoder, n catalog.CategoryNode) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(n.ID)
	e.FieldStart("name")
	e.Str(n.Name)
	encodeOptStr(e, "parentId", n.ParentID)
	e.ObjEnd()
}

// encodeCouponFields writes the coupon terms shown to shoppers.
func encodeCouponFields(e *jx.Encoder, c *coupon.Coupon) {
	e.FieldStart("code")
	e.Str(c.Code)
	e.FieldStart("description")
	e.Str(c.Description)
	e.FieldStart("discountType")
	e.Str(string(c.DiscountType))
	e.FieldStart("discountValue")
	e.Num(jx.Num(c.DiscountValue.String()))
	e.FieldStart("minOrderValue")
	e.Int64(c.MinOrderValue)
	e.FieldStart("expiryDate")
	e.Str(c.ExpiryDate.UTC().Format(time.RFC3339))
	e.FieldStart("scope")
	e.Str(string(c.Scope))
}

// encodeAdminCoupon writes every stored coupon field.
func encodeAdminCoupon(e *jx.Encoder, c *coupon.Coupon) {
	e.ObjStart()
	encodeCouponFields(e, c)
	e.FieldStart("maxUsage")
	if c.MaxUsage == nil {
		e.Null()
	} else {
		e.Int64(*c.MaxUsage)
	}
	e.FieldStart("usageCount")
	e.Int64(c.UsageCount)
	e.FieldStart("maxUsagePerUser")
	e.Int64(c.MaxUsagePerUser)
	e.FieldStart("startDate")
	if c.StartDate == nil {
		e.Null()
	} else {
		e.Str(c.StartDate.UTC().Format(time.RFC3339))
	}
	e.FieldStart("isActive")
	e.Bool(c.IsActive)
	ids := make([]string, 0, len(c.ApplicableIDs))
	for id := range c.ApplicableIDs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	e.FieldStart("applicableIds")
	e.ArrStart()
	for _, id := range ids {
		e.Str(id)
	}
	e.ArrEnd()
	e.ObjEnd()
}

func encodeOffer(e *jx.Encoder, o coupon.Offer) {
	e.ObjStart()
	encodeCouponFields(e, &o.Coupon)
	e.FieldStart("discountAmount")
	e.Int64(o.Discount.DiscountAmount)
	e.FieldStart("applicableSubtotal")
	e.Int64(o.Discount.ApplicableSubtotal)
	e.ObjEnd()
}

func encodeLineItems(e *jx.Encoder, items []coupon.LineItem) {
	e.FieldStart("items")
	e.ArrStart()
	for _, li := range items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(li.ProductID)
		e.FieldStart("quantity")
		e.Int64(li.Quantity)
		e.FieldStart("unitPrice")
		e.Int64(li.UnitPrice)
		e.FieldStart("total")
		e.Int64(li.Total())
		e.ObjEnd()
	}
	e.ArrEnd()
}

func encodeQuote(e *jx.Encoder, q *checkout.Quote) {
	e.ObjStart()
	encodeLineItems(e, q.Items)
	e.FieldStart("subtotal")
	e.Int64(q.Subtotal)
	e.FieldStart("discount")
	e.Int64(q.Discount.DiscountAmount)
	e.FieldStart("total")
	e.Int64(q.Total)
	if q.Code != "" {
		e.FieldStart("coupon")
		e.ObjStart()
		e.FieldStart("code")
		e.Str(q.Code)
		e.FieldStart("applied")
		e.Bool(q.Discount.Applied())
		e.FieldStart("applicableSubtotal")
		e.Int64(q.Discount.ApplicableSubtotal)
		if !q.Discount.Applied() {
			e.FieldStart("reason")
			e.Str(string(q.Discount.Rejection))
			e.FieldStart("message")
			e.Str(q.Discount.Rejection.Message())
		}
		e.ObjEnd()
	}
	e.ObjEnd()
}

func (h *Handler) encodeOrder(e *jx.Encoder, res *order.PlaceOrderResult) {
	o := res.Order
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(it.ProductID)
		e.FieldStart("quantity")
		e.Int64(it.Quantity)
		e.FieldStart("unitPrice")
		e.Int64(it.UnitPrice)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("products")
	e.ArrStart()
	for _, p := range res.Products {
		h.encodeProduct(e, p)
	}
	e.ArrEnd()
	e.FieldStart("subtotal")
	e.Int64(o.Subtotal)
	e.FieldStart("discount")
	e.Int64(o.Discount)
	e.FieldStart("total")
	e.Int64(o.Total)
	if o.CouponCode != "" {
		e.FieldStart("couponCode")
		e.Str(o.CouponCode)
	}
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.Format(time.RFC3339))
	e.ObjEnd()
}
