// Package storefront is a REST client for the storefront API. It implements
// the catalog, product and coupon repositories so tools can price carts
// against a running server with the same engine the server uses.
package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"resty.dev/v3"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/product"
)

var (
	_ catalog.Repository = (*Client)(nil)
	_ product.Repository = (*Client)(nil)
	_ coupon.Repository  = couponRepo{}
)

// Config configures a Client.
type Config struct {
	BaseURL string
	// APIKey is sent in the api_key header. Listing coupons needs the
	// coupons:read scope.
	APIKey  string
	Timeout time.Duration
	Retries int
}

// Client talks to the storefront REST API.
type Client struct {
	http *resty.Client
}

// New creates a Client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		c.SetHeader("api_key", cfg.APIKey)
	}
	return &Client{http: c}
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return "storefront api: " + http.StatusText(e.Status) + ": " + e.Message
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(params).
		Get(path)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	body := resp.Bytes()
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode()}
		_ = jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
			if key == "message" {
				msg, err := d.Str()
				apiErr.Message = msg
				return err
			}
			return d.Skip()
		})
		return nil, apiErr
	}
	return body, nil
}

// ListCategories fetches the raw category forest.
func (c *Client) ListCategories(ctx context.Context) ([]catalog.CategoryNode, error) {
	body, err := c.get(ctx, "/api/categories", nil)
	if err != nil {
		return nil, err
	}
	var out []catalog.CategoryNode
	err = jx.DecodeBytes(body).Arr(func(d *jx.Decoder) error {
		var n catalog.CategoryNode
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				n.ID, err = d.Str()
			case "name":
				n.Name, err = d.Str()
			case "parentId":
				n.ParentID, err = decodeOptStr(d)
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode categories")
	}
	return out, nil
}

// List fetches every product.
func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	body, err := c.get(ctx, "/api/product", nil)
	if err != nil {
		return nil, err
	}
	var out []product.Product
	err = jx.DecodeBytes(body).Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return out, nil
}

// GetByID fetches one product, returning product.ErrNotFound on 404.
func (c *Client) GetByID(ctx context.Context, id string) (*product.Product, error) {
	body, err := c.get(ctx, "/api/product/{productId}", map[string]string{"productId": id})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, product.ErrNotFound
		}
		return nil, err
	}
	p, err := decodeProduct(jx.DecodeBytes(body))
	if err != nil {
		return nil, errors.Wrap(err, "decode product")
	}
	return &p, nil
}

// GetByIDs filters the full listing; missing ids are skipped.
func (c *Client) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	want := coupon.NewIDSet(ids...)
	var out []product.Product
	for _, p := range all {
		if want.Has(p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Coupons fetches every coupon through the admin endpoint.
func (c *Client) Coupons(ctx context.Context) ([]coupon.Coupon, error) {
	body, err := c.get(ctx, "/api/coupons", nil)
	if err != nil {
		return nil, err
	}
	var out []coupon.Coupon
	err = jx.DecodeBytes(body).Arr(func(d *jx.Decoder) error {
		cp, err := decodeCoupon(d)
		if err != nil {
			return err
		}
		out = append(out, cp)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode coupons")
	}
	return out, nil
}

// FindByCode looks the code up in the admin listing.
func (c *Client) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	all, err := c.Coupons(ctx)
	if err != nil {
		return nil, err
	}
	code = coupon.NormalizeCode(code)
	for i := range all {
		if all[i].Code == code {
			return &all[i], nil
		}
	}
	return nil, coupon.ErrNotFound
}

// CouponRepository adapts the client to coupon.Repository, whose List
// collides with the product listing.
func (c *Client) CouponRepository() coupon.Repository { return couponRepo{c} }

type couponRepo struct{ c *Client }

func (r couponRepo) List(ctx context.Context) ([]coupon.Coupon, error) { return r.c.Coupons(ctx) }

func (r couponRepo) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.c.FindByCode(ctx, code)
}

func decodeOptStr(d *jx.Decoder) (*string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeOptTime(d *jx.Decoder) (*time.Time, error) {
	s, err := decodeOptStr(d)
	if err != nil || s == nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "price":
			p.Price, err = d.Int64()
		case "categoryId":
			p.CategoryID, err = decodeOptStr(d)
		case "image":
			err = d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "thumbnail":
					p.Image.Thumbnail, err = d.Str()
				case "mobile":
					p.Image.Mobile, err = d.Str()
				case "tablet":
					p.Image.Tablet, err = d.Str()
				case "desktop":
					p.Image.Desktop, err = d.Str()
				default:
					err = d.Skip()
				}
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return p, err
}

func decodeCoupon(d *jx.Decoder) (coupon.Coupon, error) {
	var c coupon.Coupon
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			c.Code, err = d.Str()
		case "description":
			c.Description, err = d.Str()
		case "discountType":
			var s string
			s, err = d.Str()
			c.DiscountType = coupon.DiscountType(s)
		case "discountValue":
			var n jx.Num
			if n, err = d.Num(); err == nil {
				c.DiscountValue, err = decimal.NewFromString(n.String())
			}
		case "minOrderValue":
			c.MinOrderValue, err = d.Int64()
		case "maxUsage":
			if d.Next() == jx.Null {
				err = d.Null()
				break
			}
			var v int64
			if v, err = d.Int64(); err == nil {
				c.MaxUsage = &v
			}
		case "usageCount":
			c.UsageCount, err = d.Int64()
		case "maxUsagePerUser":
			c.MaxUsagePerUser, err = d.Int64()
		case "startDate":
			c.StartDate, err = decodeOptTime(d)
		case "expiryDate":
			var t *time.Time
			if t, err = decodeOptTime(d); err == nil && t != nil {
				c.ExpiryDate = *t
			}
		case "isActive":
			c.IsActive, err = d.Bool()
		case "scope":
			var s string
			s, err = d.Str()
			c.Scope = coupon.Scope(s)
		case "applicableIds":
			c.ApplicableIDs = coupon.IDSet{}
			err = d.Arr(func(d *jx.Decoder) error {
				id, err := d.Str()
				c.ApplicableIDs[id] = struct{}{}
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return c, err
}
